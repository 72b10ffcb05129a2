package inf

import (
	"cmp"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/boutinf/internal/ir"
)

// Order is the direction a ray traverses message numbers in.
type Order int

const (
	// Descending visits the highest message number first.
	Descending Order = iota
	// Ascending visits the lowest message number first.
	Ascending
)

// String returns "desc" or "asc".
func (o Order) String() string {
	if o == Ascending {
		return "asc"
	}
	return "desc"
}

// ParseOrder parses "desc" or "asc" (empty means desc).
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "desc", "descending":
		return Descending, nil
	case "asc", "ascending":
		return Ascending, nil
	default:
		return Descending, fmt.Errorf("invalid order %q: must be asc or desc", s)
	}
}

// Index is the storage contract a ray exposes to terms.
//
// Positions handed to Next and NextWith may name numbers that are not in
// the index (composite terms probe "just before" a candidate). An index
// must answer such probes as if the number sat between its neighbours.
type Index interface {
	// Order returns the traversal direction of every cursor over this index.
	Order() Order

	// Next returns the first message strictly beyond from, or an end cursor.
	Next(from Cursor) (Cursor, error)

	// NextWith returns the first message strictly beyond from whose attribute
	// attr equals value, or an end cursor. Implementations should jump
	// straight to the answer rather than scan.
	NextWith(from Cursor, attr string, value ir.IRValue) (Cursor, error)

	// Contains reports whether message n exists.
	Contains(n ir.MsgNumber) (bool, error)

	// Msg loads message n.
	Msg(n ir.MsgNumber) (ir.Message, error)
}

// Ray is the index boundary: the only collaborator that knows where
// messages physically live.
type Ray interface {
	// Cursor returns a fresh before-first cursor.
	Cursor() Cursor
}

// IndexRay adapts an Index into a Ray.
type IndexRay struct {
	Index Index
}

// Cursor returns a before-first cursor over r.Index.
func (r IndexRay) Cursor() Cursor { return NewCursor(r.Index) }

type position uint8

const (
	posTop position = iota
	posAt
	posEnd
)

// Cursor is a position in the traversal order of one index.
//
// Cursors are immutable values: Shift returns a new cursor and leaves the
// receiver untouched, so a cursor may be kept as a bookmark.
type Cursor struct {
	index Index
	pos   position
	num   ir.MsgNumber
}

// NewCursor returns the before-first cursor of idx.
func NewCursor(idx Index) Cursor {
	return Cursor{index: idx, pos: posTop}
}

// At returns a cursor over the same index positioned at message n.
// Index implementations use it to answer Next and NextWith.
func (c Cursor) At(n ir.MsgNumber) Cursor {
	return Cursor{index: c.index, pos: posAt, num: n}
}

// Ended returns the end cursor of the same index.
func (c Cursor) Ended() Cursor {
	return Cursor{index: c.index, pos: posEnd}
}

// Index returns the index the cursor is bound to.
func (c Cursor) Index() Index { return c.index }

// Top reports whether the cursor is before the first position.
func (c Cursor) Top() bool { return c.pos == posTop }

// End reports whether the cursor is past the last position.
func (c Cursor) End() bool { return c.pos == posEnd }

// Number returns the message number at the cursor.
// Only meaningful when neither Top nor End.
func (c Cursor) Number() ir.MsgNumber { return c.num }

// Shift moves to the next position strictly beyond c where term holds.
// Shifting an end cursor returns it unchanged.
func (c Cursor) Shift(term Term) (Cursor, error) {
	if c.index == nil {
		return c, errors.New("cursor is not bound to an index")
	}
	if term == nil {
		return c, errors.New("cannot shift by nil term")
	}
	if c.End() {
		return c, nil
	}
	return term.Shift(c)
}

// Msg dereferences the message at the cursor.
// Returns ErrNoMessage before the first position and at the end.
func (c Cursor) Msg() (ir.Message, error) {
	if c.pos != posAt {
		return ir.Message{}, fmt.Errorf("%w: %s", ErrNoMessage, c)
	}
	return c.index.Msg(c.num)
}

// Compare orders cursors of one index: before-first > positions > end.
// Among positions, the one visited earlier compares greater, so a shift
// must always produce a cursor that compares less than its origin.
func (c Cursor) Compare(other Cursor) int {
	if c.pos != other.pos {
		return cmp.Compare(rank(c.pos), rank(other.pos))
	}
	if c.pos != posAt {
		return 0
	}
	if c.order() == Ascending {
		return cmp.Compare(other.num, c.num)
	}
	return cmp.Compare(c.num, other.num)
}

// String renders the cursor for logs: "top", "#42" or "end".
func (c Cursor) String() string {
	switch c.pos {
	case posTop:
		return "top"
	case posEnd:
		return "end"
	default:
		return fmt.Sprintf("#%d", c.num)
	}
}

func (c Cursor) order() Order {
	if c.index == nil {
		return Descending
	}
	return c.index.Order()
}

func rank(p position) int {
	switch p {
	case posTop:
		return 2
	case posAt:
		return 1
	default:
		return 0
	}
}

// justBefore returns the position immediately preceding p in traversal
// order, so that shifting from it lands on p itself when p matches.
// p must be a message position.
func justBefore(p Cursor) Cursor {
	if p.order() == Ascending {
		if p.num == math.MinInt64 {
			return NewCursor(p.index)
		}
		return p.At(p.num - 1)
	}
	if p.num == math.MaxInt64 {
		return NewCursor(p.index)
	}
	return p.At(p.num + 1)
}
