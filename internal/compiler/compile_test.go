package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/ir"
	"github.com/roach88/boutinf/internal/queryir"
	"github.com/roach88/boutinf/internal/ray"
	"github.com/roach88/boutinf/internal/testutil"
)

func mustParse(t *testing.T, doc string) queryir.Predicate {
	t.Helper()
	p, err := queryir.Unmarshal([]byte(doc))
	require.NoError(t, err)
	return p
}

func TestCompile_Lowering(t *testing.T) {
	p := mustParse(t, `
and:
  - equal: {author: alice}
  - not: {equal: {seen: true}}
  - or: [{number: 4}, {equal: {label: urgent}}]
`)
	term, err := Compile(p)
	require.NoError(t, err)
	assert.Equal(t,
		`(and (equal author "alice") (not (equal seen true)) (or (number 4) (equal label "urgent")))`,
		term.String())
}

func TestCompile_Normalizes(t *testing.T) {
	term, err := Compile(mustParse(t, `and: [always, {not: {not: {number: 2}}}]`))
	require.NoError(t, err)
	assert.Equal(t, "(number 2)", term.String())
}

func TestCompile_RejectsInvalid(t *testing.T) {
	_, err := Compile(queryir.Not{})
	assert.ErrorContains(t, err, "nil predicate")

	_, err = Compile(queryir.Number{N: -4})
	assert.Error(t, err)
}

func TestCompile_AgainstRay(t *testing.T) {
	r, err := ray.FromMessages(testutil.Board())
	require.NoError(t, err)

	tests := []struct {
		doc  string
		want []ir.MsgNumber
	}{
		{`equal: {author: alice}`, testutil.Numbers(4, 2)},
		{`not: {equal: {author: alice}}`, testutil.Numbers(5, 3, 1)},
		{`equal: {author: alice, seen: false}`, testutil.Numbers(4)},
		{`or: [{equal: {label: urgent}}, {equal: {bout: 2}}]`, testutil.Numbers(5, 4, 3)},
		{`never`, testutil.Numbers()},
		{`{and: []}`, testutil.Numbers(5, 4, 3, 2, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			term, err := Compile(mustParse(t, tt.doc))
			require.NoError(t, err)
			msgs, err := inf.NewMessages(r, term)
			require.NoError(t, err)
			got, err := msgs.Collect(0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExplain(t *testing.T) {
	p := mustParse(t, `or: [never, {equal: {author: bob}}, {equal: {author: bob}}]`)

	plan, term, err := Explain(p)
	require.NoError(t, err)
	assert.Equal(t, `{"or":["never",{"equal":{"author":"bob"}},{"equal":{"author":"bob"}}]}`, plan.Source)
	assert.Equal(t, `{"equal":{"author":"bob"}}`, plan.Normalized)
	assert.Equal(t, `(equal author "bob")`, plan.Term)
	assert.Equal(t, plan.Term, term.String())
	assert.Len(t, plan.Fingerprint, 64)
	assert.Empty(t, plan.Warnings)

	same, _, err := Explain(mustParse(t, `equal: {author: bob}`))
	require.NoError(t, err)
	assert.Equal(t, plan.Fingerprint, same.Fingerprint, "fingerprint is taken after normalization")
}

func TestExplain_Warnings(t *testing.T) {
	plan, _, err := Explain(mustParse(t, `equal: {bout: "2"}`))
	require.NoError(t, err)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "never matches")
}
