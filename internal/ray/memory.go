package ray

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/ir"
)

// ErrUnknownMessage is returned by Msg for numbers the ray does not hold.
var ErrUnknownMessage = errors.New("unknown message")

// Source streams messages into a ray. *store.Store satisfies it.
type Source interface {
	Scan(ctx context.Context, fn func(ir.Message) error) error
}

// Option configures a Memory ray.
type Option func(*Memory)

// WithOrder sets the traversal order. Default is inf.Descending.
func WithOrder(o inf.Order) Option {
	return func(m *Memory) { m.order = o }
}

// Memory is a roaring-bitmap ray over messages held in memory.
//
// Thread-safety: reads share a RWMutex with Add, so a live ray may keep
// growing while traversals run. A leaf term observes whatever was added
// before each individual shift. Composite terms cache each child's next
// match, so a message added between the traversal position and a cached
// match may be skipped by an And, Or or Not already under way.
type Memory struct {
	mu       sync.RWMutex
	order    inf.Order
	all      *roaring.Bitmap
	postings map[string]*roaring.Bitmap
	msgs     map[uint32]ir.Message
}

// New creates an empty ray.
func New(opts ...Option) *Memory {
	m := &Memory{
		order:    inf.Descending,
		all:      roaring.New(),
		postings: make(map[string]*roaring.Bitmap),
		msgs:     make(map[uint32]ir.Message),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FromMessages builds a ray holding msgs.
func FromMessages(msgs []ir.Message, opts ...Option) (*Memory, error) {
	m := New(opts...)
	for _, msg := range msgs {
		if err := m.Add(msg); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Load builds a ray from every message src yields.
func Load(ctx context.Context, src Source, opts ...Option) (*Memory, error) {
	m := New(opts...)
	if err := src.Scan(ctx, m.Add); err != nil {
		return nil, fmt.Errorf("load ray: %w", err)
	}
	return m, nil
}

// Add indexes msg. Numbers must be unique and fit in 32 bits.
func (m *Memory) Add(msg ir.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if msg.Number > math.MaxUint32 {
		return fmt.Errorf("message number %d exceeds the 32-bit range", msg.Number)
	}
	n := uint32(msg.Number)

	keys := make([]string, 0, len(msg.Attrs)+3)
	for attr, v := range msg.Attributes() {
		enc, err := ir.AttrKey(v)
		if err != nil {
			return fmt.Errorf("message %d: attribute %q: %w", msg.Number, attr, err)
		}
		keys = append(keys, postingKey(attr, enc))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.all.Contains(n) {
		return fmt.Errorf("message %d already exists", msg.Number)
	}
	m.all.Add(n)
	m.msgs[n] = msg
	for _, k := range keys {
		bm, ok := m.postings[k]
		if !ok {
			bm = roaring.New()
			m.postings[k] = bm
		}
		bm.Add(n)
	}
	return nil
}

// Len returns the number of messages held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int(m.all.GetCardinality())
}

// Postings returns how many messages carry attr == value.
func (m *Memory) Postings(attr string, value ir.IRValue) (uint64, error) {
	enc, err := ir.AttrKey(value)
	if err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	bm, ok := m.postings[postingKey(attr, enc)]
	if !ok {
		return 0, nil
	}
	return bm.GetCardinality(), nil
}

// Cursor returns a before-first cursor. Implements inf.Ray.
func (m *Memory) Cursor() inf.Cursor { return inf.NewCursor(m) }

// Order implements inf.Index.
func (m *Memory) Order() inf.Order { return m.order }

// Next implements inf.Index.
func (m *Memory) Next(from inf.Cursor) (inf.Cursor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seek(m.all, from), nil
}

// NextWith implements inf.Index with a single Rank/Select jump on the
// posting bitmap of (attr, value).
func (m *Memory) NextWith(from inf.Cursor, attr string, value ir.IRValue) (inf.Cursor, error) {
	enc, err := ir.AttrKey(value)
	if err != nil {
		return from, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	bm, ok := m.postings[postingKey(attr, enc)]
	if !ok {
		return from.Ended(), nil
	}
	return m.seek(bm, from), nil
}

// Contains implements inf.Index.
func (m *Memory) Contains(n ir.MsgNumber) (bool, error) {
	if n < 0 || n > math.MaxUint32 {
		return false, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.all.Contains(uint32(n)), nil
}

// Msg implements inf.Index.
func (m *Memory) Msg(n ir.MsgNumber) (ir.Message, error) {
	if n >= 0 && n <= math.MaxUint32 {
		m.mu.RLock()
		msg, ok := m.msgs[uint32(n)]
		m.mu.RUnlock()
		if ok {
			return msg, nil
		}
	}
	return ir.Message{}, fmt.Errorf("%w: %d", ErrUnknownMessage, n)
}

// seek returns the first member of bm strictly beyond from. Positions
// outside the 32-bit range are legal probes and clamp to the edges.
func (m *Memory) seek(bm *roaring.Bitmap, from inf.Cursor) inf.Cursor {
	if from.End() || bm.IsEmpty() {
		return from.Ended()
	}
	if m.order == inf.Ascending {
		return seekUp(bm, from)
	}
	return seekDown(bm, from)
}

func seekDown(bm *roaring.Bitmap, from inf.Cursor) inf.Cursor {
	if from.Top() || from.Number() > math.MaxUint32 {
		return from.At(ir.MsgNumber(bm.Maximum()))
	}
	n := from.Number()
	if n <= 0 {
		return from.Ended()
	}
	r := bm.Rank(uint32(n - 1))
	if r == 0 {
		return from.Ended()
	}
	v, err := bm.Select(uint32(r - 1))
	if err != nil {
		return from.Ended()
	}
	return from.At(ir.MsgNumber(v))
}

func seekUp(bm *roaring.Bitmap, from inf.Cursor) inf.Cursor {
	if from.Top() || from.Number() < 0 {
		return from.At(ir.MsgNumber(bm.Minimum()))
	}
	n := from.Number()
	if n >= math.MaxUint32 {
		return from.Ended()
	}
	r := bm.Rank(uint32(n))
	if r >= bm.GetCardinality() {
		return from.Ended()
	}
	v, err := bm.Select(uint32(r))
	if err != nil {
		return from.Ended()
	}
	return from.At(ir.MsgNumber(v))
}

func postingKey(attr, enc string) string {
	return attr + "\x00" + enc
}
