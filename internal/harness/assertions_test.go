package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boutinf/internal/testutil"
)

func intPtr(n int) *int { return &n }

func TestAssertTraversal_Pass(t *testing.T) {
	tr := Traversal{Ray: RayMemory, Numbers: testutil.Numbers(4, 2), State: StateExhausted}
	exp := Expect{
		Numbers:  []int64{4, 2},
		Count:    intPtr(2),
		Contains: []int64{2},
		Excludes: []int64{1, 3},
		State:    StateExhausted,
	}
	assert.Empty(t, assertTraversal(exp, tr))
}

func TestAssertTraversal_ReportsEveryFailure(t *testing.T) {
	tr := Traversal{Ray: RaySQL, Numbers: testutil.Numbers(5), State: StateExpired}
	exp := Expect{
		Numbers:  []int64{4, 2},
		Count:    intPtr(2),
		Contains: []int64{4},
		Excludes: []int64{5},
		State:    StateExhausted,
	}

	errs := assertTraversal(exp, tr)
	require.Len(t, errs, 5)

	var types []string
	for _, err := range errs {
		var ae *AssertionError
		require.True(t, errors.As(err, &ae))
		types = append(types, ae.Type)
	}
	assert.Equal(t, []string{"numbers", "count", "contains", "excludes", "state"}, types)
	assert.Contains(t, errs[0].Error(), "numbers mismatch")
	assert.Equal(t, "state: expected exhausted, got expired", errs[4].Error())
}

func TestAssertTraversal_EmptyNumbers(t *testing.T) {
	exp := Expect{Numbers: []int64{}}
	assert.Empty(t, assertTraversal(exp, Traversal{}))
}

func TestAssertAgreement(t *testing.T) {
	assert.NoError(t, assertAgreement(nil, Traversal{}))
	assert.NoError(t, assertAgreement(testutil.Numbers(3, 1), Traversal{Numbers: testutil.Numbers(3, 1)}))

	err := assertAgreement(testutil.Numbers(3, 1), Traversal{Numbers: testutil.Numbers(3)})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "reference", ae.Type)
}
