package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestUnmarshalIRValue(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    IRValue
		wantErr bool
	}{
		{name: "string", input: `"alice"`, want: IRString("alice")},
		{name: "int", input: `42`, want: IRInt(42)},
		{name: "bool", input: `true`, want: IRBool(true)},
		{name: "array", input: `[1,"x"]`, want: IRArray{IRInt(1), IRString("x")}},
		{name: "object", input: `{"k":false}`, want: IRObject{"k": IRBool(false)}},
		{name: "float rejected", input: `1.5`, wantErr: true},
		{name: "exponent rejected", input: `1e3`, wantErr: true},
		{name: "null rejected", input: `null`, wantErr: true},
		{name: "nested null rejected", input: `{"k":null}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalIRValue([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAny_YAMLShapes(t *testing.T) {
	v, err := FromAny(map[string]any{"n": 3, "list": []any{"a", true}})
	require.NoError(t, err)
	assert.Equal(t, IRObject{"n": IRInt(3), "list": IRArray{IRString("a"), IRBool(true)}}, v)

	_, err = FromAny(2.5)
	assert.Error(t, err)

	_, err = FromAny(uint64(1 << 63))
	assert.Error(t, err)
}

func TestIRObjectJSONRoundTripKeepsOrder(t *testing.T) {
	obj := IRObject{"z": IRInt(1), "a": IRString("<b>")}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<b>","z":1}`, string(data))

	var back IRObject
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, obj, back)
}
