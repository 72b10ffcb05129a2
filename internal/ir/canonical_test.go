package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input IRValue
		want  string
	}{
		{name: "string", input: IRString("hello"), want: `"hello"`},
		{name: "no html escaping", input: IRString("<a&b>"), want: `"<a&b>"`},
		{name: "int", input: IRInt(-7), want: `-7`},
		{name: "bool", input: IRBool(false), want: `false`},
		{name: "sorted object", input: IRObject{"b": IRInt(2), "a": IRInt(1)}, want: `{"a":1,"b":2}`},
		{name: "array", input: IRArray{IRInt(1), IRString("x")}, want: `[1,"x"]`},
		{name: "line separator stays literal", input: IRString("a\u2028b"), want: "\"a\u2028b\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_RejectsNil(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(IRArray{nil})
	assert.Error(t, err)
}

func TestAttrKey_NFCNormalization(t *testing.T) {
	precomposed := IRString("Jos\u00e9")
	combining := IRString("Jose\u0301")

	assert.Equal(t, MustAttrKey(precomposed), MustAttrKey(combining))
}

func TestAttrKey_TypesDoNotCollide(t *testing.T) {
	assert.NotEqual(t, MustAttrKey(IRInt(1)), MustAttrKey(IRString("1")))
	assert.NotEqual(t, MustAttrKey(IRBool(true)), MustAttrKey(IRString("true")))
}

func TestQueryFingerprint(t *testing.T) {
	a, err := QueryFingerprint(IRObject{"equal": IRObject{"author": IRString("alice")}})
	require.NoError(t, err)
	b, err := QueryFingerprint(IRObject{"equal": IRObject{"author": IRString("alice")}})
	require.NoError(t, err)
	c, err := QueryFingerprint(IRObject{"equal": IRObject{"author": IRString("bob")}})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
