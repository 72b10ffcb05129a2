package queryir

import (
	"errors"
	"fmt"

	"github.com/roach88/boutinf/internal/ir"
)

// MaxDepth bounds predicate nesting. Deeper trees are rejected so that
// compilation and term evaluation stay within a bounded stack.
const MaxDepth = 32

// ValidationResult contains the findings of Validate.
type ValidationResult struct {
	// Errors make the predicate unusable. Compilers refuse it.
	Errors []string

	// Warnings flag predicates that are legal but probably not what the
	// author meant, such as comparing author to an integer.
	Warnings []string
}

// OK reports whether there are no errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Err returns the errors joined, or nil.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = errors.New(e)
	}
	return fmt.Errorf("invalid predicate: %w", errors.Join(errs...))
}

// Validate checks p for structural errors and suspicious comparisons.
//
// Validate is a pure function with no side effects.
func Validate(p Predicate) ValidationResult {
	v := &validator{
		errors:   []string{},
		warnings: []string{},
	}
	v.validate(p, 1)
	return ValidationResult{Errors: v.errors, Warnings: v.warnings}
}

// validator accumulates findings during traversal.
type validator struct {
	errors   []string
	warnings []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validate(p Predicate, depth int) {
	if depth > MaxDepth {
		v.addError("predicate nested deeper than %d levels", MaxDepth)
		return
	}

	switch pred := p.(type) {
	case nil:
		v.addError("nil predicate")
	case Equals:
		v.validateEquals(pred)
	case Number:
		if pred.N < 0 {
			v.addError("number %d: message numbers are not negative", pred.N)
		}
	case And:
		if len(pred.Predicates) == 0 {
			v.addWarning("empty and matches every message; write always")
		}
		for _, sub := range pred.Predicates {
			v.validate(sub, depth+1)
		}
	case Or:
		if len(pred.Predicates) == 0 {
			v.addWarning("empty or matches no message; write never")
		}
		for _, sub := range pred.Predicates {
			v.validate(sub, depth+1)
		}
	case Not:
		v.validate(pred.Predicate, depth+1)
	case Always, Never:
	default:
		v.addError("unknown predicate type %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	if eq.Attr == "" {
		v.addError("equal: empty attribute name")
		return
	}
	if eq.Value == nil {
		v.addError("equal %q: missing value", eq.Attr)
		return
	}
	if _, err := ir.AttrKey(eq.Value); err != nil {
		v.addError("equal %q: %v", eq.Attr, err)
		return
	}

	// Built-ins have fixed types; a mismatched literal can never match.
	var ok bool
	want := ""
	switch eq.Attr {
	case ir.AttrAuthor:
		_, ok = eq.Value.(ir.IRString)
		want = "a string"
	case ir.AttrBout:
		_, ok = eq.Value.(ir.IRInt)
		want = "an integer"
	case ir.AttrSeen:
		_, ok = eq.Value.(ir.IRBool)
		want = "a boolean"
	default:
		return
	}
	if !ok {
		v.addWarning("equal %q: built-in attribute is %s, comparison never matches", eq.Attr, want)
	}
}
