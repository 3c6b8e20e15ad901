package space

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidConfiguration is returned when a dictionary does not describe
// a point of the space.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Space is an immutable set of named hyperparameter definitions.
type Space struct {
	names []string
	defs  map[string]Definition
}

// New builds a space from definitions. Names must be unique and non-empty
// and every definition must pass Check.
func New(defs ...Definition) (*Space, error) {
	s := &Space{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("hyperparameter name is required")
		}
		if _, exists := s.defs[d.Name]; exists {
			return nil, fmt.Errorf("duplicate hyperparameter %q", d.Name)
		}
		if errs := d.Check(); len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		s.defs[d.Name] = d
		s.names = append(s.names, d.Name)
	}
	slices.SortFunc(s.names, compareKeysRFC8785)
	return s, nil
}

// FromMap builds a space from a name-keyed map, filling each definition's
// Name from its key. Used for YAML-declared spaces.
func FromMap(defs map[string]Definition) (*Space, error) {
	list := make([]Definition, 0, len(defs))
	for name, d := range defs {
		d.Name = name
		list = append(list, d)
	}
	return New(list...)
}

// Names returns hyperparameter names in canonical order.
func (s *Space) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of hyperparameters.
func (s *Space) Len() int {
	return len(s.names)
}

// Definition returns the definition for name.
func (s *Space) Definition(name string) (Definition, bool) {
	d, ok := s.defs[name]
	return d, ok
}

// FromDictionary rehydrates a configuration from its dictionary form.
// Every hyperparameter must be present and no unknown keys are allowed.
// Numbers decoded from JSON as float64 are accepted for int hyperparameters
// when integral.
func (s *Space) FromDictionary(dict map[string]any) (*Configuration, error) {
	values := make(Object, len(s.names))
	for _, name := range s.names {
		raw, ok := dict[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing hyperparameter %q", ErrInvalidConfiguration, name)
		}
		v, err := s.defs[name].Coerce(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
		values[name] = v
	}
	for key := range dict {
		if _, ok := s.defs[key]; !ok {
			return nil, fmt.Errorf("%w: unknown hyperparameter %q", ErrInvalidConfiguration, key)
		}
	}
	return s.newConfiguration(values)
}

// Default returns the configuration made of every hyperparameter's default.
func (s *Space) Default() (*Configuration, error) {
	values := make(Object, len(s.names))
	for _, name := range s.names {
		v, err := s.defs[name].DefaultValue()
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	return s.newConfiguration(values)
}

func (s *Space) newConfiguration(values Object) (*Configuration, error) {
	key, err := ConfigID(values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return &Configuration{space: s, values: values, key: key}, nil
}

// Configuration is one point of a Space. It is immutable; identity is the
// content hash of its canonical values, so two configurations built from
// equal dictionaries are equal.
type Configuration struct {
	space  *Space
	values Object
	key    string
}

// Key returns the content-addressed identity of the configuration.
func (c *Configuration) Key() string {
	return c.key
}

// Space returns the space the configuration belongs to.
func (c *Configuration) Space() *Space {
	return c.space
}

// Get returns the value of a hyperparameter.
func (c *Configuration) Get(name string) (Value, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Values returns a copy of the typed values.
func (c *Configuration) Values() Object {
	out := make(Object, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Dictionary returns the plain-Go dictionary form of the configuration,
// suitable for JSON encoding and for FromDictionary.
func (c *Configuration) Dictionary() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = Native(v)
	}
	return out
}

// Equal reports whether two configurations have the same values.
func (c *Configuration) Equal(other *Configuration) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.key == other.key
}

// MarshalJSON encodes the configuration as its canonical dictionary.
func (c *Configuration) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(c.values)
}

// String renders the configuration as name=value pairs in canonical order.
func (c *Configuration) String() string {
	var b strings.Builder
	b.WriteString("Configuration{")
	for i, name := range c.values.SortedKeys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(formatValue(c.values[name]))
	}
	b.WriteByte('}')
	return b.String()
}

func formatValue(v Value) string {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	default:
		b, _ := json.Marshal(Native(v))
		return string(b)
	}
}
