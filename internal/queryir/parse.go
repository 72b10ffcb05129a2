package queryir

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/boutinf/internal/ir"
)

// Operator keys of a predicate document.
const (
	OpEqual  = "equal"
	OpNumber = "number"
	OpAnd    = "and"
	OpOr     = "or"
	OpNot    = "not"
	OpAlways = "always"
	OpNever  = "never"
)

// ErrEmptyDocument is returned when the input holds no YAML document.
var ErrEmptyDocument = errors.New("empty query document")

// ParseError locates a malformed predicate in its source document.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return "query: " + e.Message
	}
	return fmt.Sprintf("query:%d:%d: %s", e.Line, e.Column, e.Message)
}

func parseErr(n *yaml.Node, format string, args ...any) error {
	return &ParseError{Line: n.Line, Column: n.Column, Message: fmt.Sprintf(format, args...)}
}

// Unmarshal parses a predicate document from YAML or JSON.
func Unmarshal(data []byte) (Predicate, error) {
	root, err := decodeRoot(data)
	if err != nil {
		return nil, err
	}
	return FromNode(root)
}

// UnmarshalDocument parses a named query document:
//
//	name: alice-unread
//	order: desc
//	limit: 10
//	where: {equal: {author: alice}}
func UnmarshalDocument(data []byte) (Document, error) {
	root, err := decodeRoot(data)
	if err != nil {
		return Document{}, err
	}
	if root.Kind != yaml.MappingNode {
		return Document{}, parseErr(root, "query document must be a mapping")
	}

	var doc Document
	for i := 0; i < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "name":
			if err := val.Decode(&doc.Name); err != nil {
				return Document{}, parseErr(val, "name: %v", err)
			}
		case "order":
			if err := val.Decode(&doc.Order); err != nil {
				return Document{}, parseErr(val, "order: %v", err)
			}
			if doc.Order != "" && doc.Order != "asc" && doc.Order != "desc" {
				return Document{}, parseErr(val, "order must be asc or desc, got %q", doc.Order)
			}
		case "limit":
			if err := val.Decode(&doc.Limit); err != nil {
				return Document{}, parseErr(val, "limit: %v", err)
			}
			if doc.Limit < 0 {
				return Document{}, parseErr(val, "limit must not be negative")
			}
		case "where":
			p, err := FromNode(val)
			if err != nil {
				return Document{}, err
			}
			doc.Where = p
		default:
			return Document{}, parseErr(key, "unknown query field %q", key.Value)
		}
	}
	if doc.Where == nil {
		return Document{}, parseErr(root, "query document has no where clause")
	}
	return doc, nil
}

func decodeRoot(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyDocument
	}
	return doc.Content[0], nil
}

// MaxNodes bounds the number of YAML nodes a single predicate may expand
// to once aliases are resolved.
const MaxNodes = 4096

// FromNode converts a decoded YAML node into a predicate. Scenario files
// embed predicates and hand their nodes over here.
//
// Aliases are followed, but nesting is capped at MaxDepth and the expanded
// size at MaxNodes, so self-referencing anchors fail with a ParseError.
func FromNode(n *yaml.Node) (Predicate, error) {
	if n == nil {
		return nil, &ParseError{Message: "missing predicate"}
	}
	var p nodeParser
	return p.predicate(n, 1)
}

// nodeParser walks one predicate document and counts visited nodes.
type nodeParser struct {
	nodes int
}

func (p *nodeParser) enter(n *yaml.Node, depth int) error {
	if depth > MaxDepth {
		return parseErr(n, "predicate nested deeper than %d levels", MaxDepth)
	}
	p.nodes++
	if p.nodes > MaxNodes {
		return parseErr(n, "predicate expands to more than %d nodes", MaxNodes)
	}
	return nil
}

func (p *nodeParser) predicate(n *yaml.Node, depth int) (Predicate, error) {
	if err := p.enter(n, depth); err != nil {
		return nil, err
	}
	if n.Kind == yaml.AliasNode {
		return p.predicate(n.Alias, depth)
	}

	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Value {
		case OpAlways:
			return Always{}, nil
		case OpNever:
			return Never{}, nil
		}
		return nil, parseErr(n, "unknown predicate %q", n.Value)
	case yaml.MappingNode:
	default:
		return nil, parseErr(n, "predicate must be a mapping or always/never")
	}

	if len(n.Content) != 2 {
		return nil, parseErr(n, "predicate must have exactly one operator, got %d", len(n.Content)/2)
	}
	op, arg := n.Content[0], n.Content[1]
	if arg.Kind == yaml.AliasNode {
		if err := p.enter(arg, depth); err != nil {
			return nil, err
		}
		arg = arg.Alias
	}

	switch op.Value {
	case OpEqual:
		return p.equal(arg, depth)
	case OpNumber:
		var num int64
		if arg.Kind != yaml.ScalarNode || arg.ShortTag() != "!!int" {
			return nil, parseErr(arg, "number takes an integer")
		}
		if err := arg.Decode(&num); err != nil {
			return nil, parseErr(arg, "number: %v", err)
		}
		return Number{N: ir.MsgNumber(num)}, nil
	case OpAnd:
		ps, err := p.list(op.Value, arg, depth)
		if err != nil {
			return nil, err
		}
		return And{Predicates: ps}, nil
	case OpOr:
		ps, err := p.list(op.Value, arg, depth)
		if err != nil {
			return nil, err
		}
		return Or{Predicates: ps}, nil
	case OpNot:
		child, err := p.predicate(arg, depth+1)
		if err != nil {
			return nil, err
		}
		return Not{Predicate: child}, nil
	case OpAlways, OpNever:
		var on bool
		if err := arg.Decode(&on); err != nil || !on {
			return nil, parseErr(arg, "%s takes no argument other than true", op.Value)
		}
		if op.Value == OpAlways {
			return Always{}, nil
		}
		return Never{}, nil
	default:
		return nil, parseErr(op, "unknown operator %q", op.Value)
	}
}

// equal accepts one or more attr: value pairs. Several pairs are a
// conjunction, ordered by attribute name.
func (p *nodeParser) equal(n *yaml.Node, depth int) (Predicate, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) == 0 {
		return nil, parseErr(n, "equal takes a mapping of attribute to value")
	}
	var eqs []Predicate
	seen := make(map[string]bool)
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Value == "" {
			return nil, parseErr(key, "empty attribute name")
		}
		if seen[key.Value] {
			return nil, parseErr(key, "duplicate attribute %q", key.Value)
		}
		seen[key.Value] = true
		v, err := p.value(val, depth+1)
		if err != nil {
			return nil, err
		}
		eqs = append(eqs, Equals{Attr: key.Value, Value: v})
	}
	if len(eqs) == 1 {
		return eqs[0], nil
	}
	slices.SortFunc(eqs, func(a, b Predicate) int {
		return cmp.Compare(a.(Equals).Attr, b.(Equals).Attr)
	})
	return And{Predicates: eqs}, nil
}

func (p *nodeParser) list(op string, n *yaml.Node, depth int) ([]Predicate, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, parseErr(n, "%s takes a list of predicates", op)
	}
	out := make([]Predicate, 0, len(n.Content))
	for _, c := range n.Content {
		child, err := p.predicate(c, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// value converts a YAML value to an IRValue using the resolved tag, so
// `seen: true` is a boolean and `author: "true"` a string.
func (p *nodeParser) value(n *yaml.Node, depth int) (ir.IRValue, error) {
	if err := p.enter(n, depth); err != nil {
		return nil, err
	}
	if n.Kind == yaml.AliasNode {
		return p.value(n.Alias, depth)
	}
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!str":
			return ir.IRString(n.Value), nil
		case "!!int":
			var v int64
			if err := n.Decode(&v); err != nil {
				return nil, parseErr(n, "integer out of range: %s", n.Value)
			}
			return ir.IRInt(v), nil
		case "!!bool":
			var v bool
			if err := n.Decode(&v); err != nil {
				return nil, parseErr(n, "invalid boolean: %s", n.Value)
			}
			return ir.IRBool(v), nil
		case "!!float":
			return nil, parseErr(n, "floats are not supported: %s", n.Value)
		case "!!null":
			return nil, parseErr(n, "null values are not supported")
		default:
			return nil, parseErr(n, "unsupported value tag %s", n.ShortTag())
		}
	case yaml.SequenceNode:
		arr := make(ir.IRArray, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := p.value(c, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := make(ir.IRObject, len(n.Content)/2)
		for i := 0; i < len(n.Content); i += 2 {
			v, err := p.value(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			obj[n.Content[i].Value] = v
		}
		return obj, nil
	default:
		return nil, parseErr(n, "unsupported value")
	}
}
