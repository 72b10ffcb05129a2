package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boutinf/internal/ir"
	"github.com/roach88/boutinf/internal/queryir"
)

func TestCompileQueryBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		query: unread: {
			order: "asc"
			limit: 5
			where: and: [
				{equal: author: "alice"},
				{not: equal: seen: true},
			]
		}
	`)
	require.NoError(t, v.Err())

	doc, err := CompileQuery(v.LookupPath(cue.ParsePath("query.unread")))
	require.NoError(t, err)

	assert.Equal(t, "unread", doc.Name)
	assert.Equal(t, "asc", doc.Order)
	assert.Equal(t, 5, doc.Limit)
	assert.Equal(t, queryir.And{Predicates: []queryir.Predicate{
		queryir.Equals{Attr: "author", Value: ir.IRString("alice")},
		queryir.Not{Predicate: queryir.Equals{Attr: "seen", Value: ir.IRBool(true)}},
	}}, doc.Where)
}

func TestCompileQueryExplicitName(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		query: q1: {
			name: "everything"
			where: "always"
		}
	`)
	require.NoError(t, v.Err())

	doc, err := CompileQuery(v.LookupPath(cue.ParsePath("query.q1")))
	require.NoError(t, err)
	assert.Equal(t, "everything", doc.Name)
	assert.Equal(t, queryir.Always{}, doc.Where)
}

func TestCompileQueryUsesCUEReferences(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		#author: "bob"
		query: byBob: where: equal: author: #author
	`)
	require.NoError(t, v.Err())

	doc, err := CompileQuery(v.LookupPath(cue.ParsePath("query.byBob")))
	require.NoError(t, err)
	assert.Equal(t, queryir.Equals{Attr: "author", Value: ir.IRString("bob")}, doc.Where)
}

func TestCompileQueryMissingWhere(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`query: bad: { limit: 3 }`)
	require.NoError(t, v.Err())

	_, err := CompileQuery(v.LookupPath(cue.ParsePath("query.bad")))
	require.Error(t, err)
	compileErr, ok := err.(*CompileError)
	require.True(t, ok, "error should be *CompileError")
	assert.Equal(t, "where", compileErr.Field)
}

func TestCompileQueryRejectsFloat(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`query: bad: where: equal: score: 1.5`)
	require.NoError(t, v.Err())

	_, err := CompileQuery(v.LookupPath(cue.ParsePath("query.bad")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float")
}

func TestCompileQueryIncomplete(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`query: bad: where: equal: author: string`)
	require.NoError(t, v.Err())

	_, err := CompileQuery(v.LookupPath(cue.ParsePath("query.bad")))
	require.Error(t, err)
}

func TestCompileQueries(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		query: {
			first: where: number: 1
			second: where: "never"
		}
	`)
	require.NoError(t, v.Err())

	docs, err := CompileQueries(v)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "first", docs[0].Name)
	assert.Equal(t, queryir.Number{N: 1}, docs[0].Where)
	assert.Equal(t, "second", docs[1].Name)
}

func TestCompileQueriesMissingStruct(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`other: 1`)
	require.NoError(t, v.Err())

	_, err := CompileQueries(v)
	assert.ErrorContains(t, err, "no query struct")
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{
		Field:   "where",
		Message: "where is required",
	}
	assert.Equal(t, "where: where is required", err.Error())
}
