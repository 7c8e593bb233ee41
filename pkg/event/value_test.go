package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareEqual_NullIsNeverEqual(t *testing.T) {
	cases := []struct {
		name     string
		a, b     Value
		expected bool
	}{
		{"null vs null", Null(), Null(), false},
		{"null vs int", Null(), Int(1), false},
		{"int vs int equal", Int(3), Int(3), true},
		{"int vs long widen", Int(3), Long(3), true},
		{"string mismatch", String("a"), String("b"), false},
		{"string match", String("a"), String("a"), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, CompareEqual(c.a, c.b))
		})
	}
}

func TestValue_StructEqual_NullEqualsNull(t *testing.T) {
	require.True(t, Null().StructEqual(Null()))
	require.False(t, Null().StructEqual(Int(0)))
}

func TestValue_AsFloat64(t *testing.T) {
	f, ok := Double(1.5).AsFloat64()
	require.True(t, ok)
	require.Equal(t, 1.5, f)

	_, ok = String("x").AsFloat64()
	require.False(t, ok)
}

func TestValue_HashKey_DistinguishesKind(t *testing.T) {
	a := Int(0).HashKey()
	b := Long(0).HashKey()
	assert.NotEqual(t, a, b)
}
