package inf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boutinf/internal/testutil"
)

func TestCursorCompare_Descending(t *testing.T) {
	idx := newSliceIndex(Descending, testutil.Board())
	top := NewCursor(idx)

	assert.Equal(t, 1, top.Compare(top.At(5)))
	assert.Equal(t, 1, top.At(5).Compare(top.At(4)), "5 is visited before 4")
	assert.Equal(t, -1, top.At(1).Compare(top.At(2)))
	assert.Equal(t, 0, top.At(3).Compare(top.At(3)))
	assert.Equal(t, 1, top.At(1).Compare(top.Ended()))
	assert.Equal(t, 0, top.Ended().Compare(top.Ended()))
}

func TestCursorCompare_Ascending(t *testing.T) {
	idx := newSliceIndex(Ascending, testutil.Board())
	top := NewCursor(idx)

	assert.Equal(t, 1, top.At(1).Compare(top.At(2)), "1 is visited before 2")
	assert.Equal(t, -1, top.At(5).Compare(top.At(4)))
	assert.Equal(t, 1, top.Compare(top.At(1)))
}

func TestCursorShift_EndIsSticky(t *testing.T) {
	idx := newSliceIndex(Descending, testutil.Board())
	end := NewCursor(idx).Ended()

	next, err := end.Shift(Always())
	require.NoError(t, err)
	assert.True(t, next.End())
}

func TestCursorShift_Guards(t *testing.T) {
	_, err := Cursor{}.Shift(Always())
	assert.Error(t, err, "unbound cursor")

	idx := newSliceIndex(Descending, testutil.Board())
	_, err = NewCursor(idx).Shift(nil)
	assert.Error(t, err, "nil term")
}

func TestCursorMsg(t *testing.T) {
	idx := newSliceIndex(Descending, testutil.Board())
	top := NewCursor(idx)

	_, err := top.Msg()
	assert.ErrorIs(t, err, ErrNoMessage)

	_, err = top.Ended().Msg()
	assert.ErrorIs(t, err, ErrNoMessage)

	msg, err := top.At(4).Msg()
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.Author)
}

func TestCursorString(t *testing.T) {
	idx := newSliceIndex(Descending, nil)
	top := NewCursor(idx)

	assert.Equal(t, "top", top.String())
	assert.Equal(t, "#7", top.At(7).String())
	assert.Equal(t, "end", top.Ended().String())
}

func TestJustBefore(t *testing.T) {
	desc := NewCursor(newSliceIndex(Descending, nil))
	asc := NewCursor(newSliceIndex(Ascending, nil))

	assert.Equal(t, "#6", justBefore(desc.At(5)).String())
	assert.Equal(t, "#4", justBefore(asc.At(5)).String())
	assert.True(t, justBefore(desc.At(math.MaxInt64)).Top())
	assert.True(t, justBefore(asc.At(math.MinInt64)).Top())

	p := desc.At(5)
	assert.Equal(t, 1, justBefore(p).Compare(p), "strictly before p")
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, Descending, o)

	o, err = ParseOrder("asc")
	require.NoError(t, err)
	assert.Equal(t, Ascending, o)
	assert.Equal(t, "asc", o.String())

	_, err = ParseOrder("sideways")
	assert.Error(t, err)
}
