package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/boutinf/internal/ir"
	"github.com/roach88/boutinf/internal/testutil"
)

// FixtureMessage is the YAML form of a message.
//
// A missing date defaults to testutil.Epoch plus one minute per message
// number, so fixtures stay short and still sort by date.
type FixtureMessage struct {
	Number int64          `yaml:"number"`
	Bout   int64          `yaml:"bout,omitempty"`
	Author string         `yaml:"author"`
	Text   string         `yaml:"text,omitempty"`
	Date   time.Time      `yaml:"date,omitempty"`
	Seen   bool           `yaml:"seen,omitempty"`
	Attrs  map[string]any `yaml:"attrs,omitempty"`
}

// Message converts the fixture entry into a validated message.
func (f FixtureMessage) Message() (ir.Message, error) {
	m := ir.Message{
		Number: ir.MsgNumber(f.Number),
		Bout:   f.Bout,
		Author: f.Author,
		Text:   f.Text,
		Date:   f.Date,
		Seen:   f.Seen,
	}
	if m.Date.IsZero() {
		m.Date = testutil.Epoch.Add(time.Duration(f.Number) * time.Minute)
	}
	if m.Author == "" {
		return ir.Message{}, fmt.Errorf("message %d: author is required", f.Number)
	}
	if len(f.Attrs) > 0 {
		m.Attrs = make(ir.IRObject, len(f.Attrs))
		for k, raw := range f.Attrs {
			v, err := ir.FromAny(raw)
			if err != nil {
				return ir.Message{}, fmt.Errorf("message %d: attribute %q: %w", f.Number, k, err)
			}
			m.Attrs[k] = v
		}
	}
	if err := m.Validate(); err != nil {
		return ir.Message{}, err
	}
	return m, nil
}

// Fixture is a standalone message file:
//
//	messages:
//	  - {number: 1, author: bob}
type Fixture struct {
	Messages []FixtureMessage `yaml:"messages"`
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) ([]ir.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture parses fixture YAML (or JSON) into messages.
func ParseFixture(data []byte) ([]ir.Message, error) {
	var fx Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return toMessages(fx.Messages)
}

func toMessages(fs []FixtureMessage) ([]ir.Message, error) {
	msgs := make([]ir.Message, 0, len(fs))
	seen := make(map[int64]bool, len(fs))
	for _, f := range fs {
		if seen[f.Number] {
			return nil, fmt.Errorf("message %d: duplicate number", f.Number)
		}
		seen[f.Number] = true
		m, err := f.Message()
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
