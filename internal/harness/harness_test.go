package harness

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boutinf/internal/testutil"
)

func mustParse(t *testing.T, content string) *Scenario {
	t.Helper()
	scenario, err := ParseScenario([]byte(content))
	require.NoError(t, err)
	return scenario
}

func TestRun_Minimal(t *testing.T) {
	result, err := Run(mustParse(t, minimalScenario))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "minimal", result.Scenario)
	require.Len(t, result.Queries, 1)

	q := result.Queries[0]
	assert.Equal(t, `(equal author "alice")`, q.Term)
	assert.Equal(t, "desc", q.Order)
	assert.Equal(t, testutil.Numbers(7), q.Reference)
	require.Len(t, q.Traversals, 2)
	for _, tr := range q.Traversals {
		assert.Equal(t, testutil.Numbers(7), tr.Numbers, tr.Ray)
		assert.Equal(t, StateExhausted, tr.State, tr.Ray)
	}
	assert.Equal(t, RayMemory, q.Traversals[0].Ray)
	assert.Equal(t, RaySQL, q.Traversals[1].Ray)
}

func TestRun_FailedExpectation(t *testing.T) {
	scenario := mustParse(t, `
name: wrong
description: "Expects the wrong numbers"
messages:
  - {number: 1, author: alice}
  - {number: 2, author: bob}
queries:
  - name: alice
    where: {equal: {author: alice}}
    expect:
      numbers: [2]
`)
	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	// One failure per ray; both rays still agree with the reference.
	require.Len(t, result.Errors, 2)

	var qe *QueryError
	require.True(t, errors.As(result.Errors[0], &qe))
	assert.Equal(t, "alice", qe.Query)
	assert.Equal(t, RayMemory, qe.Ray)

	var ae *AssertionError
	require.True(t, errors.As(result.Errors[1], &ae))
	assert.Equal(t, "numbers", ae.Type)
}

func TestRun_Expiry(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	scenario := mustParse(t, `
name: slow
description: "Expires after one result"
messages:
  - {number: 1, author: alice}
  - {number: 2, author: alice}
  - {number: 3, author: alice}
queries:
  - name: all
    where: always
    expire_after: 1
    expect:
      numbers: [3]
      state: expired
`)
	result, err := Run(scenario, WithLogger(logger))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, testutil.Numbers(3, 2, 1), result.Queries[0].Reference)
	assert.Contains(t, logs.String(), "slow iterator")
	assert.Contains(t, logs.String(), "traversal=memory-1")
	assert.Contains(t, logs.String(), "traversal=sql-1")
}

func TestRun_Limit(t *testing.T) {
	scenario := mustParse(t, `
name: limited
description: "Stops after the limit"
messages:
  - {number: 1, author: alice}
  - {number: 2, author: alice}
  - {number: 3, author: alice}
queries:
  - name: oldest
    order: asc
    where: {equal: {author: alice}}
    limit: 2
    expect:
      numbers: [1, 2]
`)
	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, testutil.Numbers(1, 2), result.Queries[0].Reference)
}

func TestRun_EmptyFixture(t *testing.T) {
	scenario := mustParse(t, `
name: empty
description: "No messages at all"
queries:
  - name: anything
    where: always
    expect:
      count: 0
      state: exhausted
`)
	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_DuplicateFixtureNumber(t *testing.T) {
	scenario := mustParse(t, minimalScenario)
	scenario.Messages = append(scenario.Messages, scenario.Messages[0])

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate number")
}
