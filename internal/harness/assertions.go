package harness

import (
	"fmt"
	"slices"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/boutinf/internal/ir"
)

// AssertionError describes a failed expectation.
type AssertionError struct {
	Type     string
	Expected any
	Actual   any
	Diff     string
}

func (e *AssertionError) Error() string {
	if e.Diff != "" {
		return fmt.Sprintf("%s mismatch (-expected +actual):\n%s", e.Type, e.Diff)
	}
	return fmt.Sprintf("%s: expected %v, got %v", e.Type, e.Expected, e.Actual)
}

// assertTraversal checks one traversal against the query expectations.
// Every violated expectation is reported.
func assertTraversal(exp Expect, tr Traversal) []error {
	var errs []error

	if exp.Numbers != nil {
		want := toNumbers(exp.Numbers)
		got := tr.Numbers
		if got == nil {
			got = []ir.MsgNumber{}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			errs = append(errs, &AssertionError{Type: "numbers", Expected: want, Actual: got, Diff: diff})
		}
	}

	if exp.Count != nil && *exp.Count != len(tr.Numbers) {
		errs = append(errs, &AssertionError{Type: "count", Expected: *exp.Count, Actual: len(tr.Numbers)})
	}

	for _, n := range exp.Contains {
		if !slices.Contains(tr.Numbers, ir.MsgNumber(n)) {
			errs = append(errs, &AssertionError{Type: "contains", Expected: n, Actual: tr.Numbers})
		}
	}

	for _, n := range exp.Excludes {
		if slices.Contains(tr.Numbers, ir.MsgNumber(n)) {
			errs = append(errs, &AssertionError{Type: "excludes", Expected: n, Actual: tr.Numbers})
		}
	}

	if exp.State != "" && exp.State != tr.State {
		errs = append(errs, &AssertionError{Type: "state", Expected: exp.State, Actual: tr.State})
	}
	return errs
}

// assertAgreement checks that a traversal returned exactly the
// reference evaluation.
func assertAgreement(reference []ir.MsgNumber, tr Traversal) error {
	got := tr.Numbers
	if got == nil {
		got = []ir.MsgNumber{}
	}
	want := reference
	if want == nil {
		want = []ir.MsgNumber{}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		return &AssertionError{Type: "reference", Expected: want, Actual: got, Diff: diff}
	}
	return nil
}

func toNumbers(ns []int64) []ir.MsgNumber {
	out := make([]ir.MsgNumber, len(ns))
	for i, n := range ns {
		out[i] = ir.MsgNumber(n)
	}
	return out
}
