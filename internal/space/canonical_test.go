package space

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"empty object", Object{}, "{}"},
		{"simple object", Object{"a": Int(1)}, `{"a":1}`},
		{"float", Float(0.1), "0.1"},
		{"integral float", Float(3), "3"},
		{"negative zero", Float(math.Copysign(0, -1)), "0"},
		{"small float", Float(1e-7), "1e-7"},
		{"fixed boundary", Float(1e-6), "0.000001"},
		{"large float", Float(1e21), "1e+21"},
		{"float slice", []float64{1, 2.5}, "[1,2.5]"},
		{"native map", map[string]any{"b": 2.5, "a": "x"}, `{"a":"x","b":2.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := Object{
		"zebra": Int(1),
		"alpha": Int(2),
		"beta":  Int(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000 - UTF-16 order differs from UTF-8
	obj := Object{
		"\uE000":     Int(1),
		"\U00010000": Int(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)

	// UTF-16 order: 0xD800 < 0xE000, so U+10000 comes first
	expected := "{\"\U00010000\":2,\"\uE000\":1}"
	assert.Equal(t, expected, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(String("<a&b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by u2028 text stays escaped
	result, err = MarshalCanonical(String(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// e + combining acute accent normalizes to the precomposed form
	decomposed, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	composed, err := MarshalCanonical(String("\u00e9"))
	require.NoError(t, err)
	assert.Equal(t, string(composed), string(decomposed))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"nil", nil},
		{"nan", math.NaN()},
		{"inf", Float(math.Inf(1))},
		{"nil value in object", Object{"a": nil}},
		{"unsupported", struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestConfigIDStable(t *testing.T) {
	a := Object{"x": Float(0.5), "kernel": String("rbf")}
	b := Object{"kernel": String("rbf"), "x": Float(0.5)}

	assert.Equal(t, MustConfigID(a), MustConfigID(b))
	assert.Len(t, MustConfigID(a), 64)

	c := Object{"kernel": String("rbf"), "x": Float(0.25)}
	assert.NotEqual(t, MustConfigID(a), MustConfigID(c))
}

func TestConfigIDDomainSeparated(t *testing.T) {
	obj := Object{"x": Int(1)}
	canonical, err := MarshalCanonical(obj)
	require.NoError(t, err)

	assert.Equal(t, hashWithDomain(DomainConfiguration, canonical), MustConfigID(obj))
	assert.NotEqual(t, hashWithDomain("other/v1", canonical), MustConfigID(obj))
}
