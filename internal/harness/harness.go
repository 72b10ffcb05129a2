package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/boutinf/internal/compiler"
	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/ray"
	"github.com/roach88/boutinf/internal/store"
	"github.com/roach88/boutinf/internal/testutil"
)

// concurrentReaders is how many independent iterators share one
// Messages value during the concurrency check.
const concurrentReaders = 4

// Option configures Run.
type Option func(*runner)

// WithLogger routes traversal logs to l. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) { r.logger = l }
}

type runner struct {
	logger   *slog.Logger
	store    *store.Store
	memories map[inf.Order]*ray.Memory
	budget   time.Duration
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Open an in-memory store and load the fixture
//  2. For each query: compile, evaluate eagerly as the reference
//  3. Traverse lazily over the memory ray and the SQL ray
//  4. Check expectations and agreement with the reference
//  5. Collect concurrently from one shared Messages value
//
// An error is returned only when the scenario cannot be set up; query
// failures are recorded in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	ctx := context.Background()

	r := &runner{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		memories: make(map[inf.Order]*ray.Memory),
		budget:   scenario.Budget,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.budget == 0 {
		r.budget = inf.DefaultBudget
	}

	msgs, err := toMessages(scenario.Messages)
	if err != nil {
		return nil, fmt.Errorf("load fixture: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	r.store = st

	if err := st.AddMessages(ctx, msgs); err != nil {
		return nil, fmt.Errorf("load fixture: %w", err)
	}

	result := NewResult(scenario.Name)
	for _, q := range scenario.Queries {
		qr, errs := r.runQuery(ctx, q)
		result.Queries = append(result.Queries, qr)
		for _, err := range errs {
			result.AddError(err)
		}
	}
	return result, nil
}

func (r *runner) runQuery(ctx context.Context, q Query) (QueryResult, []error) {
	qr := QueryResult{Name: q.Name}
	fail := func(rayKind string, err error) []error {
		return []error{&QueryError{Query: q.Name, Ray: rayKind, Err: err}}
	}

	order, err := inf.ParseOrder(q.Order)
	if err != nil {
		return qr, fail("", err)
	}
	qr.Order = order.String()

	pred, err := q.Predicate()
	if err != nil {
		return qr, fail("", err)
	}
	plan, term, err := compiler.Explain(pred)
	if err != nil {
		return qr, fail("", err)
	}
	qr.Term = plan.Term
	qr.Normalized = plan.Normalized

	qr.Reference, err = r.store.Select(ctx, pred, order, q.Limit)
	if err != nil {
		return qr, fail(RaySQL, fmt.Errorf("reference: %w", err))
	}

	mem, err := r.memory(ctx, order)
	if err != nil {
		return qr, fail(RayMemory, err)
	}

	rays := []struct {
		kind string
		ray  inf.Ray
	}{
		{RayMemory, mem},
		{RaySQL, r.store.Ray(ctx, order)},
	}

	var errs []error
	for _, rr := range rays {
		tr := r.traverse(rr.kind, rr.ray, term, q)
		qr.Traversals = append(qr.Traversals, tr)

		for _, err := range assertTraversal(q.Expect, tr) {
			errs = append(errs, &QueryError{Query: q.Name, Ray: rr.kind, Err: err})
		}
		// An expired traversal is a prefix of the reference, not equal to it.
		if q.ExpireAfter == 0 && tr.Err == "" {
			if err := assertAgreement(qr.Reference, tr); err != nil {
				errs = append(errs, &QueryError{Query: q.Name, Ray: rr.kind, Err: err})
			}
		}
	}

	if q.ExpireAfter == 0 {
		if err := r.checkConcurrent(mem, term, q, qr); err != nil {
			errs = append(errs, &QueryError{Query: q.Name, Ray: RayMemory, Err: err})
		}
	}
	return qr, errs
}

// memory returns the fixture as a memory ray in the given order,
// loaded from the store on first use.
func (r *runner) memory(ctx context.Context, order inf.Order) (*ray.Memory, error) {
	if m, ok := r.memories[order]; ok {
		return m, nil
	}
	m, err := ray.Load(ctx, r.store, ray.WithOrder(order))
	if err != nil {
		return nil, fmt.Errorf("load memory ray: %w", err)
	}
	r.memories[order] = m
	return m, nil
}

// traverse pulls a query lazily from one ray under a manual clock.
func (r *runner) traverse(kind string, rr inf.Ray, term inf.Term, q Query) Traversal {
	tr := Traversal{Ray: kind}

	clock := testutil.NewManualClock()
	msgs, err := inf.NewMessages(rr, term,
		inf.WithBudget(r.budget),
		inf.WithClock(clock),
		inf.WithIDGenerator(inf.NewSequenceGenerator(kind)),
		inf.WithLogger(r.logger),
	)
	if err != nil {
		tr.State = StateFailed
		tr.Err = err.Error()
		return tr
	}

	it := msgs.Iterator()
	tr.ID = it.ID()
	for q.Limit == 0 || len(tr.Numbers) < q.Limit {
		if q.ExpireAfter > 0 && len(tr.Numbers) == q.ExpireAfter {
			clock.Advance(r.budget + time.Millisecond)
		}
		ok, err := it.HasNext()
		if err != nil {
			tr.Err = err.Error()
			break
		}
		if !ok {
			break
		}
		n, err := it.Next()
		if err != nil {
			tr.Err = err.Error()
			break
		}
		tr.Numbers = append(tr.Numbers, n)
	}
	tr.State = it.State().String()
	return tr
}

// checkConcurrent collects the query from several goroutines sharing one
// Messages value; every reader must see the reference result.
func (r *runner) checkConcurrent(mem *ray.Memory, term inf.Term, q Query, qr QueryResult) error {
	msgs, err := inf.NewMessages(mem, term,
		inf.WithProfiling(true),
		inf.WithIDGenerator(inf.NewSequenceGenerator("concurrent")),
		inf.WithLogger(r.logger),
	)
	if err != nil {
		return err
	}

	var g errgroup.Group
	for i := 0; i < concurrentReaders; i++ {
		g.Go(func() error {
			got, err := msgs.Collect(q.Limit)
			if err != nil {
				return err
			}
			return assertAgreement(qr.Reference, Traversal{Numbers: got})
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("concurrent readers: %w", err)
	}
	return nil
}
