package ir

import (
	"fmt"
	"time"
)

// MsgNumber uniquely names a message across the whole system.
// No two messages share a number.
type MsgNumber int64

// Built-in attribute names every message carries.
const (
	AttrBout   = "bout"
	AttrAuthor = "author"
	AttrSeen   = "seen"
)

// Message is the minimal dereferenced view of a stored message.
//
// Attrs holds custom attributes (e.g. "talks.with", "label"). The built-in
// attributes are derived from the typed fields by Attributes and take
// precedence over any custom attribute with the same name.
type Message struct {
	Number MsgNumber `json:"number" yaml:"number"`
	Bout   int64     `json:"bout" yaml:"bout"`
	Author string    `json:"author" yaml:"author"`
	Text   string    `json:"text" yaml:"text"`
	Date   time.Time `json:"date" yaml:"date"`
	Seen   bool      `json:"seen" yaml:"seen"`
	Attrs  IRObject  `json:"attrs,omitempty" yaml:"-"`
}

// Attributes returns every attribute of the message, built-ins included.
// The returned object is freshly allocated.
func (m Message) Attributes() IRObject {
	out := make(IRObject, len(m.Attrs)+3)
	for k, v := range m.Attrs {
		out[k] = v
	}
	out[AttrBout] = IRInt(m.Bout)
	out[AttrAuthor] = IRString(m.Author)
	out[AttrSeen] = IRBool(m.Seen)
	return out
}

// Validate checks the invariants a message must satisfy before indexing.
func (m Message) Validate() error {
	if m.Number < 0 {
		return fmt.Errorf("message number must not be negative: %d", m.Number)
	}
	for k, v := range m.Attrs {
		if k == "" {
			return fmt.Errorf("message %d: empty attribute name", m.Number)
		}
		if v == nil {
			return fmt.Errorf("message %d: attribute %q has no value", m.Number, k)
		}
		if _, err := AttrKey(v); err != nil {
			return fmt.Errorf("message %d: attribute %q: %w", m.Number, k, err)
		}
	}
	return nil
}
