// Package queryir provides the predicate representation users write
// message queries in.
//
// A predicate document is YAML or JSON (JSON being a subset of YAML):
//
//	and:
//	  - equal: {author: alice}
//	  - not: {equal: {seen: true}}
//
// Operators:
//
//	equal: {attr: value, ...}   every listed attribute has the value
//	number: n                   the message numbered n
//	and: [p, ...]               all hold (empty: always)
//	or: [p, ...]                any holds (empty: never)
//	not: p                      p does not hold
//	always / never              scalar constants
//
// SEALED INTERFACES:
//
// Predicate is a sealed interface using the marker method pattern. Backends
// (the term compiler and the SQL compiler) switch on it exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case Number:
//	case And:
//	case Or:
//	case Not:
//	case Always:
//	case Never:
//	}
//
// Values are ir.IRValue: strings, integers, booleans, arrays and objects.
// Floats and nulls are rejected at parse time so that every value has one
// canonical encoding.
package queryir
