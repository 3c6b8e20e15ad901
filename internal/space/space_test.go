package space

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSpace(t *testing.T) *Space {
	t.Helper()
	s, err := New(
		Definition{Name: "learning_rate", Type: KindFloat, Lower: 1e-4, Upper: 1, Log: true, Default: 0.01},
		Definition{Name: "n_estimators", Type: KindInt, Lower: 10, Upper: 500},
		Definition{Name: "criterion", Type: KindCategorical, Choices: []string{"gini", "entropy"}},
		Definition{Name: "seed", Type: KindConstant, Value: 42},
	)
	require.NoError(t, err)
	return s
}

func TestNewSortsNames(t *testing.T) {
	s := newTestSpace(t)
	assert.Equal(t, []string{"criterion", "learning_rate", "n_estimators", "seed"}, s.Names())
	assert.Equal(t, 4, s.Len())

	d, ok := s.Definition("n_estimators")
	require.True(t, ok)
	assert.Equal(t, KindInt, d.Type)
}

func TestNewRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		def      Definition
		sentinel error
	}{
		{"unknown type", Definition{Name: "x", Type: "vector"}, ErrUnknownKind},
		{"inverted", Definition{Name: "x", Type: KindFloat, Lower: 2, Upper: 1}, ErrInvertedBounds},
		{"log non-positive", Definition{Name: "x", Type: KindFloat, Lower: 0, Upper: 1, Log: true}, ErrLogBounds},
		{"default out of range", Definition{Name: "x", Type: KindInt, Lower: 0, Upper: 5, Default: 9}, ErrDefaultOutOfRange},
		{"no choices", Definition{Name: "x", Type: KindCategorical}, ErrNoChoices},
		{"duplicate choice", Definition{Name: "x", Type: KindCategorical, Choices: []string{"a", "a"}}, ErrDuplicateChoice},
		{"default not a choice", Definition{Name: "x", Type: KindCategorical, Choices: []string{"a"}, Default: "b"}, ErrDefaultNotChoice},
		{"constant without value", Definition{Name: "x", Type: KindConstant}, ErrMissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.def)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(
		Definition{Name: "x", Type: KindFloat, Lower: 0, Upper: 1},
		Definition{Name: "x", Type: KindFloat, Lower: 0, Upper: 1},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestFromDictionary(t *testing.T) {
	s := newTestSpace(t)

	c, err := s.FromDictionary(map[string]any{
		"learning_rate": 0.1,
		"n_estimators":  float64(100), // JSON numbers decode as float64
		"criterion":     "gini",
		"seed":          float64(42),
	})
	require.NoError(t, err)

	v, ok := c.Get("n_estimators")
	require.True(t, ok)
	assert.Equal(t, Int(100), v)

	v, ok = c.Get("learning_rate")
	require.True(t, ok)
	assert.Equal(t, Float(0.1), v)

	assert.Equal(t, map[string]any{
		"learning_rate": 0.1,
		"n_estimators":  int64(100),
		"criterion":     "gini",
		"seed":          int64(42),
	}, c.Dictionary())
	assert.Same(t, s, c.Space())
}

func TestFromDictionaryErrors(t *testing.T) {
	s := newTestSpace(t)
	valid := func() map[string]any {
		return map[string]any{"learning_rate": 0.1, "n_estimators": 10, "criterion": "gini", "seed": 42}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing", func(d map[string]any) { delete(d, "criterion") }},
		{"unknown", func(d map[string]any) { d["momentum"] = 0.9 }},
		{"float out of range", func(d map[string]any) { d["learning_rate"] = 2.0 }},
		{"int not integral", func(d map[string]any) { d["n_estimators"] = 10.5 }},
		{"bad choice", func(d map[string]any) { d["criterion"] = "mse" }},
		{"wrong constant", func(d map[string]any) { d["seed"] = 7 }},
		{"wrong kind", func(d map[string]any) { d["learning_rate"] = "fast" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(d)
			_, err := s.FromDictionary(d)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestConfigurationIdentityByValue(t *testing.T) {
	s := newTestSpace(t)

	a, err := s.FromDictionary(map[string]any{"learning_rate": 0.1, "n_estimators": 10, "criterion": "gini", "seed": 42})
	require.NoError(t, err)
	b, err := s.FromDictionary(map[string]any{"seed": 42.0, "criterion": "gini", "n_estimators": 10.0, "learning_rate": 0.1})
	require.NoError(t, err)
	c, err := s.FromDictionary(map[string]any{"learning_rate": 0.2, "n_estimators": 10, "criterion": "gini", "seed": 42})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestConfigurationRoundTripsThroughJSON(t *testing.T) {
	s := newTestSpace(t)
	a, err := s.FromDictionary(map[string]any{"learning_rate": 0.001, "n_estimators": 250, "criterion": "entropy", "seed": 42})
	require.NoError(t, err)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `{"criterion":"entropy","learning_rate":0.001,"n_estimators":250,"seed":42}`, string(data))

	var dict map[string]any
	require.NoError(t, json.Unmarshal(data, &dict))
	b, err := s.FromDictionary(dict)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestConfigurationString(t *testing.T) {
	s := newTestSpace(t)
	c, err := s.FromDictionary(map[string]any{"learning_rate": 0.5, "n_estimators": 10, "criterion": "gini", "seed": 42})
	require.NoError(t, err)

	assert.Equal(t, "Configuration{criterion=gini, learning_rate=0.5, n_estimators=10, seed=42}", c.String())
}

func TestDefault(t *testing.T) {
	s := newTestSpace(t)
	c, err := s.Default()
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"learning_rate": 0.01,
		"n_estimators":  int64(255),
		"criterion":     "gini",
		"seed":          int64(42),
	}, c.Dictionary())
}

func TestFromMapFillsNames(t *testing.T) {
	s, err := FromMap(map[string]Definition{
		"b": {Type: KindFloat, Lower: 0, Upper: 1},
		"a": {Type: KindCategorical, Choices: []string{"x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.Names())

	d, ok := s.Definition("b")
	require.True(t, ok)
	assert.Equal(t, "b", d.Name)
}
