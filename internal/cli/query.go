package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/ir"
	"github.com/roach88/boutinf/internal/store"
)

// QueryResult is the outcome of one lazy traversal.
type QueryResult struct {
	Name      string         `json:"name"`
	Order     string         `json:"order"`
	Term      string         `json:"term"`
	Traversal string         `json:"traversal"`
	State     string         `json:"state"`
	Numbers   []ir.MsgNumber `json:"numbers"`
	Messages  []ir.Message   `json:"messages,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [query-file]",
		Short: "Pull matching messages lazily",
		Long: `Run queries as lazy traversals over the store.

Results arrive in message-number order. A traversal that outlives its
latency budget stops early with the results pulled so far and logs a
warning; --prof lifts the budget.

Exit codes:
  0 - All traversals completed or expired
  1 - A traversal failed
  2 - Command error (bad query, database not found, etc.)

Examples:
  boutinf query --where '{equal: {author: alice}}'
  boutinf query ./queries.cue --ray memory --order asc
  boutinf query ./unread.yaml --limit 20 --budget 500ms --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args, cmd)
		},
	}

	bindQueryFlags(cmd, opts, true)
	return cmd
}

func runQuery(opts *QueryOptions, args []string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)
	logger := out.Logger()
	ctx := commandContext(cmd)

	docs, err := resolveQueries(cmd, opts, args)
	if err != nil {
		return err
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	results := make([]QueryResult, 0, len(docs))
	failed := 0
	for _, doc := range docs {
		q, err := compileDocument(doc)
		if err != nil {
			return err
		}
		for _, w := range q.Plan.Warnings {
			logger.Warn("query warning", "query", doc.Name, "warning", w)
		}
		r, err := openRay(ctx, st, opts.Ray, q.Order)
		if err != nil {
			return err
		}
		msgs, err := newMessages(r, q, opts, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start traversal", err)
		}

		res := pull(msgs.Iterator(), q, doc.Limit)
		if res.Error != "" {
			failed++
		}
		if err := attachMessages(ctx, st, &res); err != nil {
			return WrapExitError(ExitCommandError, "failed to read messages",
				&LoadError{Code: ErrCodeStore, Message: err.Error()})
		}
		results = append(results, res)
	}

	err = out.Success(results, func(w io.Writer) {
		for _, res := range results {
			writeQueryText(w, res)
		}
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d traversal(s) failed", failed))
	}
	return nil
}

// pull drains it, stopping after limit numbers when limit > 0.
func pull(it *inf.Iterator, q compiled, limit int) QueryResult {
	res := QueryResult{
		Name:      q.Doc.Name,
		Order:     q.Order.String(),
		Term:      q.Plan.Term,
		Traversal: it.ID(),
		Numbers:   []ir.MsgNumber{},
	}
	for limit == 0 || len(res.Numbers) < limit {
		ok, err := it.HasNext()
		if err != nil {
			res.Error = err.Error()
			break
		}
		if !ok {
			break
		}
		n, err := it.Next()
		if err != nil {
			res.Error = err.Error()
			break
		}
		res.Numbers = append(res.Numbers, n)
	}
	res.State = it.State().String()
	return res
}

// attachMessages reads back the messages of res for display.
func attachMessages(ctx context.Context, st *store.Store, res *QueryResult) error {
	for _, n := range res.Numbers {
		m, err := st.ReadMessage(ctx, n)
		if err != nil {
			return err
		}
		res.Messages = append(res.Messages, m)
	}
	return nil
}

func writeQueryText(w io.Writer, res QueryResult) {
	fmt.Fprintf(w, "%s (%s): %s\n", res.Name, res.Order, res.Term)
	for _, m := range res.Messages {
		fmt.Fprintf(w, "  #%d %s: %s\n", m.Number, m.Author, m.Text)
	}
	if res.Error != "" {
		fmt.Fprintf(w, "  failed: %s\n", res.Error)
	}
	fmt.Fprintf(w, "%d message(s), %s\n", len(res.Numbers), res.State)
}
