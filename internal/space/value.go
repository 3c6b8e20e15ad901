package space

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the scalar types a hyperparameter can take.
// Only String, Int, Float and Bool implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// String is a categorical or constant string value.
type String string

func (String) value() {}

// Int is an integer hyperparameter value.
type Int int64

func (Int) value() {}

// Float is a real-valued hyperparameter value.
// NaN and infinities are not representable in a configuration.
type Float float64

func (Float) value() {}

// Bool is a boolean constant value.
type Bool bool

func (Bool) value() {}

// Object maps hyperparameter names to their values.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 which produces a different order for
// characters outside the BMP.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// If all compared units are equal, shorter string comes first
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// Native converts a Value to the plain Go value used in dictionaries:
// string, int64, float64 or bool.
func Native(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// FromNative converts a plain Go value into a Value without any
// hyperparameter-specific coercion. JSON numbers become Float unless they
// are json.Number integers.
func FromNative(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case float32:
		return checkFloat(float64(val))
	case float64:
		return checkFloat(val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return checkFloat(f)
	case nil:
		return nil, fmt.Errorf("null is not a valid hyperparameter value")
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

func checkFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float %v is not a valid hyperparameter value", f)
	}
	return Float(f), nil
}
