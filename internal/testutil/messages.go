package testutil

import (
	"time"

	"github.com/roach88/boutinf/internal/ir"
)

// Msg builds a message with a deterministic date derived from its number.
func Msg(number int64, author string, attrs ...ir.IRPair) ir.Message {
	m := ir.Message{
		Number: ir.MsgNumber(number),
		Bout:   1,
		Author: author,
		Text:   "message " + author,
		Date:   Epoch.Add(time.Duration(number) * time.Minute),
	}
	if len(attrs) > 0 {
		m.Attrs = ir.NewIRObject(attrs...)
	}
	return m
}

// Board returns the five-message board used throughout the tests:
// messages 1..5, where alice wrote 4 and 2 and bob wrote the rest.
// Message 3 is in bout 2 and messages 1 and 2 are seen.
func Board() []ir.Message {
	msgs := []ir.Message{
		Msg(1, "bob"),
		Msg(2, "alice"),
		Msg(3, "bob"),
		Msg(4, "alice", ir.O("label", ir.IRString("urgent"))),
		Msg(5, "bob", ir.O("label", ir.IRString("urgent"))),
	}
	msgs[0].Seen = true
	msgs[1].Seen = true
	msgs[2].Bout = 2
	return msgs
}

// Wide returns n messages numbered 1..n with authors cycling through
// alice, bob and carol, and label "even" on even numbers.
func Wide(n int) []ir.Message {
	authors := []string{"alice", "bob", "carol"}
	msgs := make([]ir.Message, 0, n)
	for i := 1; i <= n; i++ {
		m := Msg(int64(i), authors[i%len(authors)])
		if i%2 == 0 {
			m.Attrs = ir.IRObject{"label": ir.IRString("even")}
		}
		m.Bout = int64(i % 7)
		msgs = append(msgs, m)
	}
	return msgs
}

// Numbers converts plain ints to message numbers for assertions.
func Numbers(ns ...int64) []ir.MsgNumber {
	out := make([]ir.MsgNumber, len(ns))
	for i, n := range ns {
		out[i] = ir.MsgNumber(n)
	}
	return out
}
