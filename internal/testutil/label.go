package testutil

import (
	"fmt"

	"github.com/roach88/evalledger/internal/history"
)

// Label is a configuration identified by a single name. Tests use it where
// a full search space would only add noise.
type Label string

// Key returns the label itself.
func (l Label) Key() string {
	return string(l)
}

// Dictionary returns {"name": label}.
func (l Label) Dictionary() map[string]any {
	return map[string]any{"name": string(l)}
}

func (l Label) String() string {
	return "Label(" + string(l) + ")"
}

// DecodeLabel is the DecodeFunc for Label.
func DecodeLabel(dict map[string]any) (history.Configuration, error) {
	if len(dict) != 1 {
		return nil, fmt.Errorf("label: expected one key, got %d", len(dict))
	}
	name, ok := dict["name"].(string)
	if !ok {
		return nil, fmt.Errorf("label: name must be a string, got %T", dict["name"])
	}
	return Label(name), nil
}

// Labels returns the labels in order, as configurations.
func Labels(names ...string) []history.Configuration {
	out := make([]history.Configuration, len(names))
	for i, n := range names {
		out[i] = Label(n)
	}
	return out
}
