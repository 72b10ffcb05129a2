package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/boutinf/internal/ir"
)

func TestValidate_OK(t *testing.T) {
	r := Validate(And{Predicates: []Predicate{
		Equals{Attr: "author", Value: ir.IRString("alice")},
		Not{Predicate: Number{N: 3}},
		Always{},
	}})
	assert.True(t, r.OK())
	assert.Empty(t, r.Warnings)
	assert.NoError(t, r.Err())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    Predicate
		want string
	}{
		{"nil", nil, "nil predicate"},
		{"nil in not", Not{}, "nil predicate"},
		{"empty attr", Equals{Value: ir.IRInt(1)}, "empty attribute name"},
		{"no value", Equals{Attr: "a"}, "missing value"},
		{"negative number", Number{N: -1}, "not negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.p)
			assert.False(t, r.OK())
			assert.ErrorContains(t, r.Err(), tt.want)
		})
	}
}

func TestValidate_Depth(t *testing.T) {
	var p Predicate = Always{}
	for range MaxDepth - 1 {
		p = Not{Predicate: p}
	}
	assert.True(t, Validate(p).OK())

	p = Not{Predicate: p}
	r := Validate(p)
	assert.False(t, r.OK())
	assert.Contains(t, r.Errors[0], "deeper than 32")
}

func TestValidate_Warnings(t *testing.T) {
	r := Validate(Or{Predicates: []Predicate{
		And{},
		Or{},
		Equals{Attr: "author", Value: ir.IRInt(1)},
		Equals{Attr: "bout", Value: ir.IRString("1")},
		Equals{Attr: "seen", Value: ir.IRString("yes")},
		Equals{Attr: "label", Value: ir.IRInt(1)},
	}})
	assert.True(t, r.OK())
	assert.Len(t, r.Warnings, 5)
	assert.Contains(t, r.Warnings[0], "empty and")
	assert.Contains(t, r.Warnings[2], "never matches")
}
