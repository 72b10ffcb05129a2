package queryir

import (
	"fmt"

	"github.com/roach88/boutinf/internal/ir"
)

// ToValue converts p to its document form as an IRValue.
// Unmarshal(Marshal(p)) yields a predicate equal to p.
func ToValue(p Predicate) (ir.IRValue, error) {
	switch pred := p.(type) {
	case Equals:
		if pred.Value == nil {
			return nil, fmt.Errorf("equal %q: missing value", pred.Attr)
		}
		return ir.IRObject{OpEqual: ir.IRObject{pred.Attr: pred.Value}}, nil
	case Number:
		return ir.IRObject{OpNumber: ir.IRInt(pred.N)}, nil
	case And:
		list, err := toList(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return ir.IRObject{OpAnd: list}, nil
	case Or:
		list, err := toList(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return ir.IRObject{OpOr: list}, nil
	case Not:
		inner, err := ToValue(pred.Predicate)
		if err != nil {
			return nil, err
		}
		return ir.IRObject{OpNot: inner}, nil
	case Always:
		return ir.IRString(OpAlways), nil
	case Never:
		return ir.IRString(OpNever), nil
	case nil:
		return nil, fmt.Errorf("nil predicate")
	default:
		return nil, fmt.Errorf("unknown predicate type %T", p)
	}
}

func toList(ps []Predicate) (ir.IRArray, error) {
	out := make(ir.IRArray, 0, len(ps))
	for _, p := range ps {
		v, err := ToValue(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Marshal renders p as canonical JSON (RFC 8785 key order, no whitespace).
func Marshal(p Predicate) ([]byte, error) {
	v, err := ToValue(p)
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(v)
}

// Fingerprint returns the content hash of p's canonical document.
func Fingerprint(p Predicate) (string, error) {
	v, err := ToValue(p)
	if err != nil {
		return "", err
	}
	return ir.QueryFingerprint(v)
}
