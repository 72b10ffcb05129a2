package cli

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/ir"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	QueryOptions
	Consumers int
	Rounds    int
}

// BenchResult summarizes concurrent traversals of one query.
type BenchResult struct {
	Name       string        `json:"name"`
	Term       string        `json:"term"`
	Ray        string        `json:"ray"`
	Consumers  int           `json:"consumers"`
	Rounds     int           `json:"rounds"`
	Results    int           `json:"results"`
	Expired    int           `json:"expired"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	PerPull    time.Duration `json:"per_pull_ns"`
	Consistent bool          `json:"consistent"`
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{QueryOptions: QueryOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "bench [query-file]",
		Short: "Traverse queries from concurrent consumers",
		Long: `Run every query from several goroutines at once, each with its own
iterator over one shared sequence, and report timing.

Traversals that complete must agree with each other; expired ones are
counted separately.

Examples:
  boutinf bench --where always --consumers 8 --rounds 10
  boutinf bench ./queries.cue --ray memory --prof`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(opts, args, cmd)
		},
	}

	bindQueryFlags(cmd, &opts.QueryOptions, true)
	cmd.Flags().IntVar(&opts.Consumers, "consumers", 4, "concurrent iterators per query")
	cmd.Flags().IntVar(&opts.Rounds, "rounds", 1, "traversals per consumer")
	return cmd
}

func runBench(opts *BenchOptions, args []string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)
	logger := out.Logger()
	ctx := commandContext(cmd)

	if opts.Consumers < 1 || opts.Rounds < 1 {
		return NewExitError(ExitCommandError, "--consumers and --rounds must be positive")
	}

	docs, err := resolveQueries(cmd, &opts.QueryOptions, args)
	if err != nil {
		return err
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	results := make([]BenchResult, 0, len(docs))
	for _, doc := range docs {
		q, err := compileDocument(doc)
		if err != nil {
			return err
		}
		r, err := openRay(ctx, st, opts.Ray, q.Order)
		if err != nil {
			return err
		}
		msgs, err := newMessages(r, q, &opts.QueryOptions, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start traversal", err)
		}

		runs := make([]QueryResult, opts.Consumers*opts.Rounds)
		start := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		for c := 0; c < opts.Consumers; c++ {
			g.Go(func() error {
				for round := 0; round < opts.Rounds; round++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					res := pull(msgs.Iterator(), q, doc.Limit)
					if res.Error != "" {
						return fmt.Errorf("traversal %s: %s", res.Traversal, res.Error)
					}
					runs[c*opts.Rounds+round] = res
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("bench %q", doc.Name),
				&LoadError{Code: ErrCodeTraversal, Message: err.Error()})
		}
		elapsed := time.Since(start)

		results = append(results, summarize(doc.Name, q, opts, runs, elapsed))
	}

	err = out.Success(results, func(w io.Writer) {
		for _, r := range results {
			fmt.Fprintf(w, "%s: %s\n", r.Name, r.Term)
			fmt.Fprintf(w, "  %d consumer(s) x %d round(s) on %s ray, %d result(s) each\n",
				r.Consumers, r.Rounds, r.Ray, r.Results)
			fmt.Fprintf(w, "  elapsed %s, %s per pull, %d expired\n", r.Elapsed, r.PerPull, r.Expired)
			if !r.Consistent {
				fmt.Fprintln(w, "  INCONSISTENT: completed traversals disagree")
			}
		}
	})
	if err != nil {
		return err
	}
	for _, r := range results {
		if !r.Consistent {
			return NewExitError(ExitFailure, fmt.Sprintf("bench %q: traversals disagree", r.Name))
		}
	}
	return nil
}

// summarize folds the runs of one query. Completed runs must all return
// the same numbers; expired runs are prefixes and are only counted.
func summarize(name string, q compiled, opts *BenchOptions, runs []QueryResult, elapsed time.Duration) BenchResult {
	res := BenchResult{
		Name:       name,
		Term:       q.Plan.Term,
		Ray:        opts.Ray,
		Consumers:  opts.Consumers,
		Rounds:     opts.Rounds,
		Elapsed:    elapsed,
		Consistent: true,
	}

	var want []ir.MsgNumber
	pulls := 0
	for _, run := range runs {
		pulls += len(run.Numbers)
		if run.State == inf.StateExpired.String() {
			res.Expired++
			continue
		}
		if want == nil {
			want = run.Numbers
			res.Results = len(want)
		} else if !slices.Equal(want, run.Numbers) {
			res.Consistent = false
		}
	}
	if pulls > 0 {
		res.PerPull = elapsed / time.Duration(pulls)
	}
	return res
}
