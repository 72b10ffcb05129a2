package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boutinf/internal/ir"
	"github.com/roach88/boutinf/internal/queryir"
)

const minimalScenario = `
name: minimal
description: "One message, one query"
messages:
  - {number: 7, author: alice}
queries:
  - name: alice
    where: {equal: {author: alice}}
    expect:
      numbers: [7]
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "minimal", scenario.Name)
	assert.Equal(t, time.Duration(0), scenario.Budget)
	require.Len(t, scenario.Messages, 1)
	assert.Equal(t, int64(7), scenario.Messages[0].Number)
	require.Len(t, scenario.Queries, 1)
	assert.Equal(t, []int64{7}, scenario.Queries[0].Expect.Numbers)

	pred, err := scenario.Queries[0].Predicate()
	require.NoError(t, err)
	assert.Equal(t, queryir.Equals{Attr: "author", Value: ir.IRString("alice")}, pred)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Budget(t *testing.T) {
	scenario, err := ParseScenario([]byte("budget: 250ms\n" + minimalScenario))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, scenario.Budget)
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "query: typo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nqueries: [{name: q, where: always}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nqueries: [{name: q, where: always}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no queries",
			content: "name: n\ndescription: d\n",
			wantErr: "queries list is required",
		},
		{
			name:    "unnamed query",
			content: "name: n\ndescription: d\nqueries: [{where: always}]\n",
			wantErr: "name is required",
		},
		{
			name:    "duplicate query",
			content: "name: n\ndescription: d\nqueries: [{name: q, where: always}, {name: q, where: never}]\n",
			wantErr: "duplicate name",
		},
		{
			name:    "bad order",
			content: "name: n\ndescription: d\nqueries: [{name: q, order: sideways, where: always}]\n",
			wantErr: "invalid order",
		},
		{
			name:    "missing where",
			content: "name: n\ndescription: d\nqueries: [{name: q}]\n",
			wantErr: "where is required",
		},
		{
			name:    "bad predicate",
			content: "name: n\ndescription: d\nqueries: [{name: q, where: {near: 1}}]\n",
			wantErr: "unknown operator",
		},
		{
			name:    "negative limit",
			content: "name: n\ndescription: d\nqueries: [{name: q, where: always, limit: -1}]\n",
			wantErr: "must not be negative",
		},
		{
			name:    "unknown state",
			content: "name: n\ndescription: d\nqueries: [{name: q, where: always, expect: {state: done}}]\n",
			wantErr: "unknown expected state",
		},
		{
			name:    "float attribute",
			content: "name: n\ndescription: d\nmessages: [{number: 1, author: a, attrs: {score: 1.5}}]\nqueries: [{name: q, where: always}]\n",
			wantErr: "floats are forbidden",
		},
		{
			name:    "message without author",
			content: "name: n\ndescription: d\nmessages: [{number: 1}]\nqueries: [{name: q, where: always}]\n",
			wantErr: "author is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
