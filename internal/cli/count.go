package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// CountResult is the number of stored messages a query selects.
type CountResult struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count [query-file]",
		Short: "Count matching messages eagerly",
		Long: `Count the messages each query selects with a single SQL statement.

The count ignores limits and the latency budget.

Examples:
  boutinf count --where '{equal: {seen: false}}'
  boutinf count ./queries.cue --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(opts, args, cmd)
		},
	}

	bindQueryFlags(cmd, opts, false)
	return cmd
}

func runCount(opts *QueryOptions, args []string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)
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

	results := make([]CountResult, 0, len(docs))
	for _, doc := range docs {
		q, err := compileDocument(doc)
		if err != nil {
			return err
		}
		n, err := st.Count(ctx, q.Normalized)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("count %q", doc.Name),
				&LoadError{Code: ErrCodeStore, Message: err.Error()})
		}
		results = append(results, CountResult{Name: doc.Name, Count: n})
	}

	return out.Success(results, func(w io.Writer) {
		for _, r := range results {
			fmt.Fprintf(w, "%s: %d\n", r.Name, r.Count)
		}
	})
}
