package store

import (
	"fmt"
	"time"

	"github.com/roach88/boutinf/internal/ir"
)

// attrRow is one attrs table row.
type attrRow struct {
	name  string
	value string
}

// marshalAttrs lists every attribute of m, built-ins included, with values
// in canonical JSON per RFC 8785.
func marshalAttrs(m ir.Message) ([]attrRow, error) {
	attrs := m.Attributes()
	rows := make([]attrRow, 0, len(attrs))
	for _, name := range attrs.SortedKeys() {
		key, err := ir.AttrKey(attrs[name])
		if err != nil {
			return nil, fmt.Errorf("marshal attribute %q: %w", name, err)
		}
		rows = append(rows, attrRow{name: name, value: key})
	}
	return rows, nil
}

// unmarshalAttr parses a stored canonical value.
// ir.UnmarshalIRValue decodes numbers via json.Number, so integers beyond
// 2^53 survive the round trip.
func unmarshalAttr(value string) (ir.IRValue, error) {
	v, err := ir.UnmarshalIRValue([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("unmarshal attribute value %q: %w", value, err)
	}
	return v, nil
}

// marshalDate stores dates as UTC RFC 3339 text so that they sort and
// compare as strings.
func marshalDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func unmarshalDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unmarshal date: %w", err)
	}
	return t, nil
}

func isBuiltin(name string) bool {
	switch name {
	case ir.AttrBout, ir.AttrAuthor, ir.AttrSeen:
		return true
	default:
		return false
	}
}
