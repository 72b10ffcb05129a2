package queryir

import "github.com/roach88/boutinf/internal/ir"

// Predicate represents a message filter.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Equals holds where attribute Attr equals Value.
//
// Built-in attributes (bout, author, seen) compare against the typed
// message fields; any other name compares against custom attributes.
// A message without the attribute never matches.
type Equals struct {
	Attr  string
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// Number holds at exactly the message numbered N.
type Number struct {
	N ir.MsgNumber
}

func (Number) predicateNode() {}

// And holds where all Predicates hold. Empty And always holds.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or holds where any of Predicates holds. Empty Or never holds.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not holds where Predicate does not.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Always holds for every message.
type Always struct{}

func (Always) predicateNode() {}

// Never holds for no message.
type Never struct{}

func (Never) predicateNode() {}

// Document is a named query: a predicate plus traversal preferences.
type Document struct {
	// Name labels the query in output and logs.
	Name string

	// Order is "desc" (default) or "asc".
	Order string

	// Limit caps the number of results; 0 means unlimited.
	Limit int

	// Where selects the messages.
	Where Predicate
}
