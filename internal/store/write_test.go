package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/ir"
	"github.com/roach88/boutinf/internal/testutil"
)

func TestAddMessage_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	msg := testutil.Msg(42, "alice",
		ir.O("label", ir.IRString("urgent")),
		ir.O("talks.with", ir.IRArray{ir.IRString("bob"), ir.IRString("carol")}),
		ir.O("big", ir.IRInt(1<<62)),
	)
	msg.Seen = true
	require.NoError(t, s.AddMessage(ctx, msg))

	got, err := s.ReadMessage(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, msg.Number, got.Number)
	assert.Equal(t, msg.Author, got.Author)
	assert.Equal(t, msg.Text, got.Text)
	assert.True(t, msg.Date.Equal(got.Date))
	assert.True(t, got.Seen)
	assert.Equal(t, msg.Attrs, got.Attrs)
}

func TestAddMessage_Duplicate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddMessage(ctx, testutil.Msg(1, "alice")))
	err := s.AddMessage(ctx, testutil.Msg(1, "bob"))
	assert.ErrorIs(t, err, ErrMessageExists)

	got, err := s.ReadMessage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Author, "first write wins")
}

func TestAddMessages_Atomic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	batch := []ir.Message{testutil.Msg(1, "alice"), testutil.Msg(2, "bob"), testutil.Msg(1, "carol")}
	err := s.AddMessages(ctx, batch)
	assert.ErrorIs(t, err, ErrMessageExists)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "failed batch leaves nothing behind")
}

func TestAddMessage_Invalid(t *testing.T) {
	s := createTestStore(t)

	err := s.AddMessage(context.Background(), testutil.Msg(-1, "alice"))
	assert.Error(t, err)
}

func TestAddMessage_StoresBuiltinsAsAttrs(t *testing.T) {
	s := seedStore(t, testutil.Board())

	var value string
	err := s.DB().QueryRow(
		`SELECT value FROM attrs WHERE number = 3 AND name = 'bout'`,
	).Scan(&value)
	require.NoError(t, err)
	assert.Equal(t, "2", value)

	err = s.DB().QueryRow(
		`SELECT value FROM attrs WHERE number = 4 AND name = 'author'`,
	).Scan(&value)
	require.NoError(t, err)
	assert.Equal(t, `"alice"`, value)
}

func TestMarkSeen(t *testing.T) {
	s := seedStore(t, testutil.Board())
	ctx := context.Background()

	require.NoError(t, s.MarkSeen(ctx, 5, true))

	got, err := s.ReadMessage(ctx, 5)
	require.NoError(t, err)
	assert.True(t, got.Seen)

	r := s.Ray(ctx, inf.Descending)
	c, err := r.NextWith(r.Cursor(), ir.AttrSeen, ir.IRBool(true))
	require.NoError(t, err)
	assert.Equal(t, "#5", c.String(), "seen attribute follows the flag")

	err = s.MarkSeen(ctx, 99, true)
	assert.ErrorIs(t, err, ErrNotFound)
}
