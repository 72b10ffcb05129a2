package harness

import (
	"fmt"

	"github.com/roach88/boutinf/internal/ir"
)

// Final iterator states a query may expect.
const (
	StateExhausted = "exhausted"
	StateExpired   = "expired"
	StateFailed    = "failed"
)

// Ray kinds every query is run against.
const (
	RayMemory = "memory"
	RaySQL    = "sql"
)

// Result contains the outcome of running a scenario.
type Result struct {
	// Scenario is the name of the scenario that produced this result.
	Scenario string

	// Pass is true when every query met its expectations and every ray
	// agreed with the reference evaluation.
	Pass bool

	// Errors collects every failure, in query order.
	Errors []error

	// Queries holds one entry per scenario query.
	Queries []QueryResult
}

// QueryResult records one query across all rays.
type QueryResult struct {
	Name       string
	Order      string
	Term       string
	Normalized string
	// Reference is the eager SQL evaluation, honoring the query limit.
	Reference  []ir.MsgNumber
	Traversals []Traversal
}

// Traversal is one lazy run of a query over one ray.
type Traversal struct {
	Ray     string
	ID      string
	Numbers []ir.MsgNumber
	State   string
	Err     string
}

// NewResult creates a passing result for the named scenario.
func NewResult(scenario string) *Result {
	return &Result{Scenario: scenario, Pass: true}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err error) {
	r.Pass = false
	r.Errors = append(r.Errors, err)
}

// QueryError wraps a failure with the query and ray it came from.
type QueryError struct {
	Query string
	Ray   string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Ray == "" {
		return fmt.Sprintf("query %q: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("query %q (%s ray): %v", e.Query, e.Ray, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
