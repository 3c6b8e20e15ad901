package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/evalledger/internal/space"
)

// marshalConfig converts a configuration dictionary to canonical JSON TEXT.
// Canonical form keeps the stored text byte-identical to what the
// config_id was hashed from.
func marshalConfig(dict map[string]any) (string, error) {
	data, err := space.MarshalCanonical(dict)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

// marshalVector converts a float slice to canonical JSON TEXT.
func marshalVector(v []float64) (string, error) {
	if v == nil {
		v = []float64{}
	}
	data, err := space.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal vector: %w", err)
	}
	return string(data), nil
}

func marshalNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("marshal names: %w", err)
	}
	return string(data), nil
}

func unmarshalConfig(data string) (map[string]any, error) {
	var dict map[string]any
	if err := json.Unmarshal([]byte(data), &dict); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if dict == nil {
		dict = map[string]any{}
	}
	return dict, nil
}

func unmarshalVector(data string) ([]float64, error) {
	var v []float64
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("unmarshal vector: %w", err)
	}
	if v == nil {
		v = []float64{}
	}
	return v, nil
}

func unmarshalNames(data string) ([]string, error) {
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}
	return names, nil
}
