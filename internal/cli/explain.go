package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/boutinf/internal/compiler"
	"github.com/roach88/boutinf/internal/querysql"
)

// ExplainResult shows how a query is compiled for both evaluators.
type ExplainResult struct {
	Name string `json:"name"`
	compiler.Plan
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain [query-file]",
		Short: "Show how queries compile",
		Long: `Show each stage of query compilation: the source document, its
normalized form and fingerprint, the lazy term, and the equivalent SQL.

No database is opened.

Examples:
  boutinf explain --where '{and: [always, {equal: {author: alice}}]}'
  boutinf explain ./queries.cue --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args, cmd)
		},
	}

	bindQueryFlags(cmd, opts, false)
	return cmd
}

func runExplain(opts *QueryOptions, args []string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	docs, err := resolveQueries(cmd, opts, args)
	if err != nil {
		return err
	}

	sqlc := querysql.NewSQLCompiler()
	results := make([]ExplainResult, 0, len(docs))
	for _, doc := range docs {
		q, err := compileDocument(doc)
		if err != nil {
			return err
		}
		query, params, err := sqlc.Select(q.Normalized, q.Order, doc.Limit)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("query %q", doc.Name), err)
		}
		results = append(results, ExplainResult{Name: doc.Name, Plan: q.Plan, SQL: query, Params: params})
	}

	return out.Success(results, func(w io.Writer) {
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeExplainText(w, r)
		}
	})
}

func writeExplainText(w io.Writer, r ExplainResult) {
	fmt.Fprintf(w, "query:       %s\n", r.Name)
	fmt.Fprintf(w, "source:      %s\n", r.Source)
	fmt.Fprintf(w, "normalized:  %s\n", r.Normalized)
	fmt.Fprintf(w, "fingerprint: %s\n", r.Fingerprint)
	fmt.Fprintf(w, "term:        %s\n", r.Term)
	fmt.Fprintf(w, "sql:         %s\n", r.SQL)
	if len(r.Params) > 0 {
		fmt.Fprintf(w, "params:      %v\n", r.Params)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning:     %s\n", warn)
	}
}
