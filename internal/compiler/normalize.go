package compiler

import (
	"github.com/roach88/boutinf/internal/queryir"
)

// Normalize returns a predicate selecting the same messages as p, in
// simplest form. Normalize is idempotent and never fails on a predicate
// that passed queryir.Validate.
func Normalize(p queryir.Predicate) queryir.Predicate {
	switch pred := p.(type) {
	case queryir.And:
		return normalizeAnd(pred)
	case queryir.Or:
		return normalizeOr(pred)
	case queryir.Not:
		return normalizeNot(pred)
	default:
		return p
	}
}

func normalizeAnd(and queryir.And) queryir.Predicate {
	var kids []queryir.Predicate
	seen := make(map[string]bool)
	var add func(p queryir.Predicate) bool
	add = func(p queryir.Predicate) bool {
		switch n := Normalize(p).(type) {
		case queryir.Always:
		case queryir.Never:
			return false
		case queryir.And:
			for _, k := range n.Predicates {
				if !add(k) {
					return false
				}
			}
		default:
			if key := identity(n); !seen[key] {
				seen[key] = true
				kids = append(kids, n)
			}
		}
		return true
	}
	for _, k := range and.Predicates {
		if !add(k) {
			return queryir.Never{}
		}
	}

	switch len(kids) {
	case 0:
		return queryir.Always{}
	case 1:
		return kids[0]
	default:
		return queryir.And{Predicates: kids}
	}
}

func normalizeOr(or queryir.Or) queryir.Predicate {
	var kids []queryir.Predicate
	seen := make(map[string]bool)
	var add func(p queryir.Predicate) bool
	add = func(p queryir.Predicate) bool {
		switch n := Normalize(p).(type) {
		case queryir.Never:
		case queryir.Always:
			return false
		case queryir.Or:
			for _, k := range n.Predicates {
				if !add(k) {
					return false
				}
			}
		default:
			if key := identity(n); !seen[key] {
				seen[key] = true
				kids = append(kids, n)
			}
		}
		return true
	}
	for _, k := range or.Predicates {
		if !add(k) {
			return queryir.Always{}
		}
	}

	switch len(kids) {
	case 0:
		return queryir.Never{}
	case 1:
		return kids[0]
	default:
		return queryir.Or{Predicates: kids}
	}
}

func normalizeNot(not queryir.Not) queryir.Predicate {
	switch inner := Normalize(not.Predicate).(type) {
	case queryir.Not:
		return inner.Predicate
	case queryir.Always:
		return queryir.Never{}
	case queryir.Never:
		return queryir.Always{}
	default:
		return queryir.Not{Predicate: inner}
	}
}

// identity is the canonical document of p, used to drop duplicates.
func identity(p queryir.Predicate) string {
	data, err := queryir.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}
