package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boutinf/internal/ir"
)

func TestMarshal_Canonical(t *testing.T) {
	p := And{Predicates: []Predicate{
		Equals{Attr: "author", Value: ir.IRString("alice")},
		Not{Predicate: Equals{Attr: "seen", Value: ir.IRBool(true)}},
		Or{Predicates: []Predicate{Number{N: 4}, Never{}}},
	}}

	data, err := Marshal(p)
	require.NoError(t, err)
	assert.Equal(t,
		`{"and":[{"equal":{"author":"alice"}},{"not":{"equal":{"seen":true}}},{"or":[{"number":4},"never"]}]}`,
		string(data))
}

func TestMarshal_RoundTrip(t *testing.T) {
	docs := []string{
		`always`,
		`{"equal":{"label":["a","b"]}}`,
		`{"not":{"or":[{"number":1},{"equal":{"bout":2}}]}}`,
		`{"and":[]}`,
	}
	for _, doc := range docs {
		p, err := Unmarshal([]byte(doc))
		require.NoError(t, err, doc)
		data, err := Marshal(p)
		require.NoError(t, err, doc)
		back, err := Unmarshal(data)
		require.NoError(t, err, doc)
		assert.Equal(t, p, back, doc)
	}
}

func TestMarshal_Errors(t *testing.T) {
	_, err := Marshal(nil)
	assert.Error(t, err)

	_, err = Marshal(Not{Predicate: Equals{Attr: "x"}})
	assert.ErrorContains(t, err, "missing value")
}

func TestFingerprint(t *testing.T) {
	a, err := Unmarshal([]byte("equal:\n  author: alice"))
	require.NoError(t, err)
	b, err := Unmarshal([]byte(`{"equal": {"author": "alice"}}`))
	require.NoError(t, err)
	c, err := Unmarshal([]byte(`{"equal": {"author": "bob"}}`))
	require.NoError(t, err)

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	fc, err := Fingerprint(c)
	require.NoError(t, err)

	assert.Equal(t, fa, fb, "same query, different syntax")
	assert.NotEqual(t, fa, fc)
	assert.Len(t, fa, 64)
}
