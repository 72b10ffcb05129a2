package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/boutinf/internal/compiler"
	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/queryir"
	"github.com/roach88/boutinf/internal/ray"
	"github.com/roach88/boutinf/internal/store"
)

// Ray kinds selectable with --ray.
const (
	RaySQL    = "sql"
	RayMemory = "memory"
)

// QueryOptions holds the flags shared by commands that select messages.
type QueryOptions struct {
	*RootOptions
	Where     string
	Order     string
	Limit     int
	Budget    time.Duration
	Profiling bool
	Ray       string
}

// bindQueryFlags registers the query flags on cmd. Traversal flags are
// only added for commands that traverse.
func bindQueryFlags(cmd *cobra.Command, opts *QueryOptions, traversal bool) {
	cmd.Flags().StringVarP(&opts.Where, "where", "w", "", `inline predicate, e.g. '{equal: {author: alice}}'`)
	cmd.Flags().StringVar(&opts.Order, "order", "", "traversal order (desc|asc), overrides the query file")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum results, overrides the query file (0 = unlimited)")
	if !traversal {
		return
	}
	cmd.Flags().DurationVar(&opts.Budget, "budget", inf.DefaultBudget, "latency budget per traversal (0 disables)")
	cmd.Flags().BoolVar(&opts.Profiling, "prof", false, "profiling mode: ignore the latency budget")
	cmd.Flags().StringVar(&opts.Ray, "ray", RaySQL, "ray to traverse (sql|memory)")
}

// resolveQueries returns the documents named by a query file argument or
// by --where. Exactly one of the two must be given. Flag overrides are
// applied to every document.
func resolveQueries(cmd *cobra.Command, opts *QueryOptions, args []string) ([]queryir.Document, error) {
	var docs []queryir.Document
	switch {
	case len(args) == 1 && opts.Where != "":
		return nil, NewExitError(ExitCommandError, "give either a query file or --where, not both")
	case len(args) == 1:
		loaded, err := LoadQueries(args[0])
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load queries", err)
		}
		docs = loaded
	case opts.Where != "":
		p, err := queryir.Unmarshal([]byte(opts.Where))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --where",
				&LoadError{Code: ErrCodeInvalidWhere, Message: err.Error()})
		}
		docs = []queryir.Document{{Name: "where", Where: p}}
	default:
		return nil, NewExitError(ExitCommandError, "a query file or --where is required")
	}

	if cmd.Flags().Changed("order") {
		if _, err := inf.ParseOrder(opts.Order); err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --order", err)
		}
	}
	if opts.Limit < 0 {
		return nil, NewExitError(ExitCommandError, "--limit must not be negative")
	}
	for i := range docs {
		if cmd.Flags().Changed("order") {
			docs[i].Order = opts.Order
		}
		if cmd.Flags().Changed("limit") {
			docs[i].Limit = opts.Limit
		}
	}
	return docs, nil
}

// openStore opens the database named by --db.
func openStore(opts *RootOptions) (*store.Store, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database",
			&LoadError{Code: ErrCodeStore, Message: err.Error()})
	}
	return st, nil
}

// compiled is a query ready to traverse.
type compiled struct {
	Doc        queryir.Document
	Order      inf.Order
	Plan       compiler.Plan
	Normalized queryir.Predicate
	Term       inf.Term
}

func compileDocument(doc queryir.Document) (compiled, error) {
	order, err := inf.ParseOrder(doc.Order)
	if err != nil {
		return compiled{}, err
	}
	plan, term, err := compiler.Explain(doc.Where)
	if err != nil {
		return compiled{}, WrapExitError(ExitCommandError, fmt.Sprintf("query %q", doc.Name),
			&LoadError{Code: ErrCodeInvalidQuery, Message: err.Error()})
	}
	return compiled{
		Doc:        doc,
		Order:      order,
		Plan:       plan,
		Normalized: compiler.Normalize(doc.Where),
		Term:       term,
	}, nil
}

// openRay returns the ray selected by --ray over st.
func openRay(ctx context.Context, st *store.Store, kind string, order inf.Order) (inf.Ray, error) {
	switch kind {
	case RaySQL, "":
		return st.Ray(ctx, order), nil
	case RayMemory:
		m, err := ray.Load(ctx, st, ray.WithOrder(order))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load memory ray",
				&LoadError{Code: ErrCodeStore, Message: err.Error()})
		}
		return m, nil
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --ray %q: must be sql or memory", kind))
	}
}

// newMessages builds the lazy sequence for one compiled query.
func newMessages(r inf.Ray, q compiled, opts *QueryOptions, logger *slog.Logger) (*inf.Messages, error) {
	return inf.NewMessages(r, q.Term,
		inf.WithBudget(opts.Budget),
		inf.WithProfiling(opts.Profiling),
		inf.WithLogger(logger.With("query", q.Doc.Name)),
	)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
