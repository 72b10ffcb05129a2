package inf

import (
	"errors"
	"slices"
	"sync/atomic"

	"github.com/roach88/boutinf/internal/ir"
)

// sliceIndex is a linear-scan Index used to test terms in isolation from
// any real storage.
type sliceIndex struct {
	order Order
	nums  []ir.MsgNumber
	msgs  map[ir.MsgNumber]ir.Message
	calls atomic.Int64
	fail  error
}

func newSliceIndex(order Order, msgs []ir.Message) *sliceIndex {
	idx := &sliceIndex{order: order, msgs: make(map[ir.MsgNumber]ir.Message, len(msgs))}
	for _, m := range msgs {
		idx.nums = append(idx.nums, m.Number)
		idx.msgs[m.Number] = m
	}
	slices.Sort(idx.nums)
	if order == Descending {
		slices.Reverse(idx.nums)
	}
	return idx
}

func (s *sliceIndex) Order() Order { return s.order }

func (s *sliceIndex) Next(from Cursor) (Cursor, error) {
	return s.scan(from, func(ir.Message) bool { return true })
}

func (s *sliceIndex) NextWith(from Cursor, attr string, value ir.IRValue) (Cursor, error) {
	want, err := ir.AttrKey(value)
	if err != nil {
		return from, err
	}
	return s.scan(from, func(m ir.Message) bool {
		v, ok := m.Attributes()[attr]
		return ok && ir.MustAttrKey(v) == want
	})
}

func (s *sliceIndex) Contains(n ir.MsgNumber) (bool, error) {
	_, ok := s.msgs[n]
	return ok, nil
}

func (s *sliceIndex) Msg(n ir.MsgNumber) (ir.Message, error) {
	m, ok := s.msgs[n]
	if !ok {
		return ir.Message{}, errors.New("no such message")
	}
	return m, nil
}

func (s *sliceIndex) scan(from Cursor, match func(ir.Message) bool) (Cursor, error) {
	s.calls.Add(1)
	if s.fail != nil {
		return from, s.fail
	}
	for _, n := range s.nums {
		at := from.At(n)
		if at.Compare(from) < 0 && match(s.msgs[n]) {
			return at, nil
		}
	}
	return from.Ended(), nil
}

func (s *sliceIndex) ray() IndexRay { return IndexRay{Index: s} }
