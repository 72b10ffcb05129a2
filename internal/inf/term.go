package inf

import (
	"fmt"
	"strings"

	"github.com/roach88/boutinf/internal/ir"
)

// Term is a node of a predicate expression tree.
//
// This is a sealed interface - only types in this package implement it.
// Variants: MatcherTerm, NumberTerm, AlwaysTerm, NeverTerm (leaves) and
// AndTerm, OrTerm, NotTerm (composites).
//
// A term tree is built once per logical query and may be shared across
// goroutines, but Shift may only be called on a private Copy: composites
// cache child progress between shifts.
type Term interface {
	// Shift returns the first position strictly beyond c where the term
	// holds, or an end cursor.
	Shift(c Cursor) (Cursor, error)

	// Copy returns a term with independent traversal-local state.
	Copy() Term

	fmt.Stringer

	termNode() // Marker method - seals interface to this package
}

// String renders t, tolerating nil.
func String(t Term) string {
	if t == nil {
		return "(nil)"
	}
	return t.String()
}

// MatcherTerm holds where attribute Attr equals Value.
// Stateless: Copy returns the receiver.
type MatcherTerm struct {
	Attr  string
	Value ir.IRValue
}

// Matcher creates a leaf term testing attr == value.
func Matcher(attr string, value ir.IRValue) *MatcherTerm {
	return &MatcherTerm{Attr: attr, Value: value}
}

func (*MatcherTerm) termNode() {}

// Shift jumps through the index straight to the next matching message.
func (t *MatcherTerm) Shift(c Cursor) (Cursor, error) {
	return c.index.NextWith(c, t.Attr, t.Value)
}

func (t *MatcherTerm) Copy() Term { return t }

func (t *MatcherTerm) String() string {
	v, err := ir.AttrKey(t.Value)
	if err != nil {
		v = fmt.Sprintf("%v", t.Value)
	}
	return fmt.Sprintf("(equal %s %s)", t.Attr, v)
}

// NumberTerm holds at exactly one message.
type NumberTerm struct {
	N ir.MsgNumber
}

// Number creates a leaf term matching message n only.
func Number(n ir.MsgNumber) *NumberTerm {
	return &NumberTerm{N: n}
}

func (*NumberTerm) termNode() {}

func (t *NumberTerm) Shift(c Cursor) (Cursor, error) {
	target := c.At(t.N)
	if target.Compare(c) >= 0 {
		return c.Ended(), nil
	}
	ok, err := c.index.Contains(t.N)
	if err != nil {
		return c, err
	}
	if !ok {
		return c.Ended(), nil
	}
	return target, nil
}

func (t *NumberTerm) Copy() Term { return t }

func (t *NumberTerm) String() string { return fmt.Sprintf("(number %d)", t.N) }

// AlwaysTerm holds at every message of the index.
type AlwaysTerm struct{}

// Always returns the term matching every message.
func Always() AlwaysTerm { return AlwaysTerm{} }

func (AlwaysTerm) termNode() {}

func (AlwaysTerm) Shift(c Cursor) (Cursor, error) { return c.index.Next(c) }

func (t AlwaysTerm) Copy() Term { return t }

func (AlwaysTerm) String() string { return "(always)" }

// NeverTerm matches nothing; its first shift reaches the end.
type NeverTerm struct{}

// Never returns the term matching no message.
func Never() NeverTerm { return NeverTerm{} }

func (NeverTerm) termNode() {}

func (NeverTerm) Shift(c Cursor) (Cursor, error) { return c.Ended(), nil }

func (t NeverTerm) Copy() Term { return t }

func (NeverTerm) String() string { return "(never)" }

func renderList(op string, terms []*progress) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(op)
	for _, p := range terms {
		b.WriteString(" ")
		b.WriteString(String(p.term))
	}
	b.WriteString(")")
	return b.String()
}
