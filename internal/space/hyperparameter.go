package space

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
)

// Kind names a hyperparameter type.
type Kind string

// Supported hyperparameter kinds.
const (
	KindFloat       Kind = "float"
	KindInt         Kind = "int"
	KindCategorical Kind = "categorical"
	KindConstant    Kind = "constant"
)

// Definition problems reported by Check.
var (
	ErrUnknownKind       = errors.New("unknown hyperparameter type")
	ErrInvertedBounds    = errors.New("lower bound exceeds upper bound")
	ErrLogBounds         = errors.New("log scale requires a positive lower bound")
	ErrDefaultOutOfRange = errors.New("default outside bounds")
	ErrNoChoices         = errors.New("categorical requires at least one choice")
	ErrDuplicateChoice   = errors.New("duplicate choice")
	ErrDefaultNotChoice  = errors.New("default is not one of the choices")
	ErrMissingValue      = errors.New("constant requires a value")
)

// Definition declares one hyperparameter of a search space.
// The same struct is decoded from CUE (via the compiler) and from YAML
// scenario files.
type Definition struct {
	Name    string   `yaml:"-" json:"name"`
	Type    Kind     `yaml:"type" json:"type"`
	Lower   float64  `yaml:"lower,omitempty" json:"lower,omitempty"`
	Upper   float64  `yaml:"upper,omitempty" json:"upper,omitempty"`
	Log     bool     `yaml:"log,omitempty" json:"log,omitempty"`
	Default any      `yaml:"default,omitempty" json:"default,omitempty"`
	Choices []string `yaml:"choices,omitempty" json:"choices,omitempty"`
	Value   any      `yaml:"value,omitempty" json:"value,omitempty"`
}

// Check returns every problem with the definition. An empty result means
// the definition is usable.
func (d Definition) Check() []error {
	var errs []error
	fail := func(sentinel error, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %w: %s", d.Name, sentinel, fmt.Sprintf(format, args...)))
	}

	switch d.Type {
	case KindFloat, KindInt:
		if d.Lower > d.Upper {
			fail(ErrInvertedBounds, "lower=%v upper=%v", d.Lower, d.Upper)
		}
		if d.Log && d.Lower <= 0 {
			fail(ErrLogBounds, "lower=%v", d.Lower)
		}
		if d.Type == KindInt && (d.Lower != math.Trunc(d.Lower) || d.Upper != math.Trunc(d.Upper)) {
			fail(ErrInvertedBounds, "int bounds must be integral, got lower=%v upper=%v", d.Lower, d.Upper)
		}
		if d.Default != nil {
			f, ok := toFloat(d.Default)
			if !ok || f < d.Lower || f > d.Upper {
				fail(ErrDefaultOutOfRange, "default=%v bounds=[%v, %v]", d.Default, d.Lower, d.Upper)
			}
		}
	case KindCategorical:
		if len(d.Choices) == 0 {
			fail(ErrNoChoices, "choices empty")
		}
		seen := make(map[string]bool, len(d.Choices))
		for _, c := range d.Choices {
			if seen[c] {
				fail(ErrDuplicateChoice, "%q", c)
			}
			seen[c] = true
		}
		if d.Default != nil {
			s, ok := d.Default.(string)
			if !ok || !seen[s] {
				fail(ErrDefaultNotChoice, "default=%v", d.Default)
			}
		}
	case KindConstant:
		if d.Value == nil {
			fail(ErrMissingValue, "value unset")
		} else if _, err := FromNative(d.Value); err != nil {
			fail(ErrMissingValue, "%v", err)
		}
	default:
		fail(ErrUnknownKind, "%q", d.Type)
	}

	return errs
}

// Coerce converts a dictionary value into the typed Value for this
// hyperparameter, checking bounds and choices.
func (d Definition) Coerce(v any) (Value, error) {
	switch d.Type {
	case KindFloat:
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%s: expected number, got %T", d.Name, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%s: non-finite value %v", d.Name, f)
		}
		if f < d.Lower || f > d.Upper {
			return nil, fmt.Errorf("%s: value %v outside [%v, %v]", d.Name, f, d.Lower, d.Upper)
		}
		return Float(f), nil

	case KindInt:
		f, ok := toFloat(v)
		if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%s: expected integer, got %v", d.Name, v)
		}
		if f < d.Lower || f > d.Upper {
			return nil, fmt.Errorf("%s: value %v outside [%v, %v]", d.Name, f, d.Lower, d.Upper)
		}
		return Int(int64(f)), nil

	case KindCategorical:
		s, ok := v.(string)
		if !ok {
			if str, isStr := v.(String); isStr {
				s, ok = string(str), true
			}
		}
		if !ok {
			return nil, fmt.Errorf("%s: expected string choice, got %T", d.Name, v)
		}
		if !slices.Contains(d.Choices, s) {
			return nil, fmt.Errorf("%s: %q is not one of %v", d.Name, s, d.Choices)
		}
		return String(s), nil

	case KindConstant:
		want, err := FromNative(d.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		got, err := FromNative(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		if !sameValue(want, got) {
			return nil, fmt.Errorf("%s: constant is %v, got %v", d.Name, Native(want), Native(got))
		}
		return want, nil

	default:
		return nil, fmt.Errorf("%s: %w %q", d.Name, ErrUnknownKind, d.Type)
	}
}

// DefaultValue returns the declared default, or the conventional one:
// the midpoint of the range (geometric for log scale), the first choice,
// or the constant itself.
func (d Definition) DefaultValue() (Value, error) {
	if d.Default != nil {
		return d.Coerce(d.Default)
	}

	switch d.Type {
	case KindFloat, KindInt:
		mid := (d.Lower + d.Upper) / 2
		if d.Log {
			mid = math.Exp((math.Log(d.Lower) + math.Log(d.Upper)) / 2)
		}
		if d.Type == KindInt {
			mid = math.Round(mid)
		}
		return d.Coerce(mid)
	case KindCategorical:
		if len(d.Choices) == 0 {
			return nil, fmt.Errorf("%s: %w", d.Name, ErrNoChoices)
		}
		return String(d.Choices[0]), nil
	case KindConstant:
		return d.Coerce(d.Value)
	default:
		return nil, fmt.Errorf("%s: %w %q", d.Name, ErrUnknownKind, d.Type)
	}
}

// sameValue compares two values, treating Int and Float as numerically
// comparable since JSON decoding does not preserve the distinction.
func sameValue(a, b Value) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case Float:
		return float64(n), true
	case Int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
