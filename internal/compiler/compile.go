package compiler

import (
	"fmt"

	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/queryir"
)

// Compile validates, normalizes and lowers p into a term tree.
func Compile(p queryir.Predicate) (inf.Term, error) {
	if err := queryir.Validate(p).Err(); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return Lower(Normalize(p))
}

// Lower maps p node by node onto inf terms without simplifying.
func Lower(p queryir.Predicate) (inf.Term, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return inf.Matcher(pred.Attr, pred.Value), nil
	case queryir.Number:
		return inf.Number(pred.N), nil
	case queryir.And:
		kids, err := lowerAll(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return inf.And(kids...), nil
	case queryir.Or:
		kids, err := lowerAll(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return inf.Or(kids...), nil
	case queryir.Not:
		kid, err := Lower(pred.Predicate)
		if err != nil {
			return nil, err
		}
		return inf.Not(kid), nil
	case queryir.Always:
		return inf.Always(), nil
	case queryir.Never:
		return inf.Never(), nil
	default:
		return nil, fmt.Errorf("lower: unsupported predicate %T", p)
	}
}

func lowerAll(ps []queryir.Predicate) ([]inf.Term, error) {
	out := make([]inf.Term, 0, len(ps))
	for _, p := range ps {
		t, err := Lower(p)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Plan describes how a predicate will be evaluated.
type Plan struct {
	Fingerprint string   `json:"fingerprint"`
	Source      string   `json:"source"`
	Normalized  string   `json:"normalized"`
	Term        string   `json:"term"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Explain compiles p and reports each stage.
func Explain(p queryir.Predicate) (Plan, inf.Term, error) {
	r := queryir.Validate(p)
	if err := r.Err(); err != nil {
		return Plan{}, nil, fmt.Errorf("explain: %w", err)
	}
	src, err := queryir.Marshal(p)
	if err != nil {
		return Plan{}, nil, err
	}
	norm := Normalize(p)
	normalized, err := queryir.Marshal(norm)
	if err != nil {
		return Plan{}, nil, err
	}
	fp, err := queryir.Fingerprint(norm)
	if err != nil {
		return Plan{}, nil, err
	}
	term, err := Lower(norm)
	if err != nil {
		return Plan{}, nil, err
	}
	return Plan{
		Fingerprint: fp,
		Source:      string(src),
		Normalized:  string(normalized),
		Term:        term.String(),
		Warnings:    r.Warnings,
	}, term, nil
}
