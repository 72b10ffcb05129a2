package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/ir"
	"github.com/roach88/boutinf/internal/queryir"
	"github.com/roach88/boutinf/internal/testutil"
)

func TestReadMessage_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadMessage(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadMessage_NoCustomAttrs(t *testing.T) {
	s := seedStore(t, testutil.Board())

	got, err := s.ReadMessage(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got.Attrs)
	assert.Equal(t, "bob", got.Author)
}

func TestScan_AscendingWithAttrs(t *testing.T) {
	s := seedStore(t, testutil.Board())

	var nums []ir.MsgNumber
	var labelled []ir.MsgNumber
	err := s.Scan(context.Background(), func(m ir.Message) error {
		nums = append(nums, m.Number)
		if _, ok := m.Attrs["label"]; ok {
			labelled = append(labelled, m.Number)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, testutil.Numbers(1, 2, 3, 4, 5), nums)
	assert.Equal(t, testutil.Numbers(4, 5), labelled)
}

func TestScan_CallbackMayUseStore(t *testing.T) {
	s := seedStore(t, testutil.Board())
	ctx := context.Background()

	err := s.Scan(ctx, func(m ir.Message) error {
		_, err := s.ReadMessage(ctx, m.Number)
		return err
	})
	assert.NoError(t, err)
}

func TestScan_StopsOnError(t *testing.T) {
	s := seedStore(t, testutil.Board())
	stop := errors.New("stop")

	calls := 0
	err := s.Scan(context.Background(), func(ir.Message) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestCountAndSelect(t *testing.T) {
	s := seedStore(t, testutil.Board())
	ctx := context.Background()

	alice := queryir.Equals{Attr: "author", Value: ir.IRString("alice")}

	n, err := s.Count(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Select(ctx, alice, inf.Descending, 0)
	require.NoError(t, err)
	assert.Equal(t, testutil.Numbers(4, 2), got)

	got, err = s.Select(ctx, queryir.Not{Predicate: alice}, inf.Ascending, 2)
	require.NoError(t, err)
	assert.Equal(t, testutil.Numbers(1, 3), got)

	got, err = s.Select(ctx, queryir.Never{}, inf.Descending, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSelect_CustomAttrTypes(t *testing.T) {
	s := seedStore(t, []ir.Message{
		testutil.Msg(1, "a", ir.O("prio", ir.IRInt(1))),
		testutil.Msg(2, "a", ir.O("prio", ir.IRString("1"))),
		testutil.Msg(3, "a", ir.O("prio", ir.IRInt(1))),
	})

	got, err := s.Select(context.Background(),
		queryir.Equals{Attr: "prio", Value: ir.IRInt(1)}, inf.Descending, 0)
	require.NoError(t, err)
	assert.Equal(t, testutil.Numbers(3, 1), got, "integer 1 and string \"1\" differ")
}

func TestCount_InvalidPredicate(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Count(context.Background(), nil)
	assert.Error(t, err)
}
