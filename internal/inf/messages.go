package inf

import (
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/roach88/boutinf/internal/ir"
)

// Messages is a lazy, re-iterable list of message numbers matching one
// term over one ray.
//
// Messages holds no traversal state. Every call to Iterator (or All, or
// Collect) starts an independent traversal with its own term copy, its own
// cursor and its own latency budget, so one Messages value may be shared
// freely between goroutines.
type Messages struct {
	ray  Ray
	term Term
	cfg  Config
}

// NewMessages creates the lazy list for (ray, term).
func NewMessages(ray Ray, term Term, opts ...Option) (*Messages, error) {
	if ray == nil {
		return nil, errors.New("ray is required")
	}
	if term == nil {
		return nil, errors.New("term is required")
	}
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Messages{ray: ray, term: term, cfg: cfg.withDefaults()}, nil
}

// Term returns the shared term tree.
func (m *Messages) Term() Term { return m.term }

// Config returns the effective configuration.
func (m *Messages) Config() Config { return m.cfg }

// Iterator starts a new traversal.
func (m *Messages) Iterator() *Iterator {
	return &Iterator{
		id:     m.cfg.IDs.Generate(),
		term:   m.term.Copy(),
		cursor: m.ray.Cursor(),
		cfg:    m.cfg,
		start:  m.cfg.Clock.Now(),
	}
}

// All returns a single-use sequence over a new traversal. A pull error is
// yielded once as the last element.
func (m *Messages) All() iter.Seq2[ir.MsgNumber, error] {
	return func(yield func(ir.MsgNumber, error) bool) {
		it := m.Iterator()
		for {
			ok, err := it.HasNext()
			if err != nil {
				yield(0, err)
				return
			}
			if !ok {
				return
			}
			n, err := it.Next()
			if !yield(n, err) || err != nil {
				return
			}
		}
	}
}

// Collect runs a new traversal and returns up to limit numbers
// (limit <= 0 means no limit).
func (m *Messages) Collect(limit int) ([]ir.MsgNumber, error) {
	out := []ir.MsgNumber{}
	for n, err := range m.All() {
		if err != nil {
			return out, err
		}
		out = append(out, n)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// State is the lifecycle state of an Iterator.
type State int

const (
	// StateFresh: created, no shift performed yet.
	StateFresh State = iota
	// StateReady: a matching position is known and not yet consumed.
	StateReady
	// StateAdvancing: a shift is underway.
	StateAdvancing
	// StateConsumed: the current position was returned by Next; a shift is owed.
	StateConsumed
	// StateExhausted: no more positions. Terminal.
	StateExhausted
	// StateExpired: the latency budget ran out. Terminal.
	StateExpired
	// StateFailed: a shift or dereference failed. Terminal.
	StateFailed
)

var stateNames = map[State]string{
	StateFresh:     "fresh",
	StateReady:     "ready",
	StateAdvancing: "advancing",
	StateConsumed:  "consumed",
	StateExhausted: "exhausted",
	StateExpired:   "expired",
	StateFailed:    "failed",
}

// String returns the lowercase state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Iterator is one consumer's traversal.
//
// The legal call sequence is HasNext (true) then Next, repeated until
// HasNext reports false. HasNext may be called any number of times; it
// shifts only when the previous position was consumed.
//
// Thread-safety: all methods serialize on a mutex owned by this iterator.
type Iterator struct {
	mu     sync.Mutex
	id     string
	term   Term
	cursor Cursor
	state  State
	cfg    Config
	start  time.Time
	err    error
}

// ID returns the traversal id used in logs and errors.
func (it *Iterator) ID() string { return it.id }

// State returns the current lifecycle state.
func (it *Iterator) State() State {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.state
}

// HasNext reports whether Next will return a number.
//
// It returns false once the traversal is exhausted or has outlived its
// budget; the two are indistinguishable here and an expiry is only
// visible as a warning in the log. A non-nil error means the traversal
// failed and cannot be resumed; the same error is returned on every later
// call.
func (it *Iterator) HasNext() (bool, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	switch it.state {
	case StateFailed:
		return false, it.err
	case StateExhausted, StateExpired:
		return false, nil
	case StateFresh, StateConsumed:
		if err := it.advance(); err != nil {
			return false, err
		}
	}

	if it.expired() {
		it.state = StateExpired
		it.cfg.logger().Warn("slow iterator, truncating results",
			"traversal", it.id,
			"term", String(it.term),
			"cursor", it.cursor.String(),
			"elapsed", it.elapsed(),
			"budget", it.cfg.Budget,
		)
		return false, nil
	}
	if it.cursor.End() {
		it.state = StateExhausted
		return false, nil
	}
	it.state = StateReady
	return true, nil
}

// Next returns the number at the current position.
//
// Returns ErrNoSuchElement, without touching any state, unless the most
// recent HasNext reported true.
func (it *Iterator) Next() (ir.MsgNumber, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.state == StateFailed {
		return 0, it.err
	}
	if it.state != StateReady {
		return 0, fmt.Errorf("%w: iterator is %s", ErrNoSuchElement, it.state)
	}

	msg, err := it.cursor.Msg()
	if err != nil {
		return 0, it.fail(newDereferenceError(it.cursor, err))
	}
	it.state = StateConsumed

	it.cfg.logger().Debug("next message",
		"traversal", it.id,
		"number", msg.Number,
		"term", String(it.term),
		"elapsed", it.elapsed(),
	)
	return msg.Number, nil
}

// advance shifts the cursor once and enforces the progress invariant.
func (it *Iterator) advance() error {
	it.state = StateAdvancing
	next, err := it.cursor.Shift(it.term)
	if err != nil {
		if IsWrongWayError(err) {
			return it.fail(err)
		}
		return it.fail(newShiftError(it.cursor, it.term, err))
	}
	if next.Compare(it.cursor) >= 0 {
		return it.fail(NewWrongWayError(it.cursor, next, it.term))
	}
	it.cursor = next
	return nil
}

func (it *Iterator) fail(err error) error {
	var re *RuntimeError
	if errors.As(err, &re) && re.Traversal == "" {
		re.Traversal = it.id
	}
	it.state = StateFailed
	it.err = err
	it.cfg.logger().Error("traversal failed",
		"traversal", it.id,
		"term", String(it.term),
		"error", err,
	)
	return err
}

func (it *Iterator) expired() bool {
	return it.cfg.bounded() && it.elapsed() > it.cfg.Budget
}

func (it *Iterator) elapsed() time.Duration {
	return it.cfg.Clock.Now().Sub(it.start)
}
