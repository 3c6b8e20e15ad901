package history

import "slices"

// Configuration is the ledger's view of a point in the search space.
// Key must be equal for two configurations exactly when they are equal by
// value; the ledger never mutates a configuration.
type Configuration interface {
	Key() string
	Dictionary() map[string]any
	String() string
}

// DecodeFunc rebuilds a Configuration from its dictionary form. It is the
// configuration space's "from dictionary" operation.
type DecodeFunc func(map[string]any) (Configuration, error)

// Decoder adapts a concrete from-dictionary function, such as
// (*space.Space).FromDictionary, to a DecodeFunc.
func Decoder[C Configuration](from func(map[string]any) (C, error)) DecodeFunc {
	return func(dict map[string]any) (Configuration, error) {
		c, err := from(dict)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Record is one accepted single-objective evaluation.
type Record struct {
	Config Configuration
	Perf   Perf
}

// MORecord is one accepted multi-objective evaluation.
type MORecord struct {
	Config     Configuration
	Objectives []float64
}

// recordStore is an insertion-ordered map from configuration key to
// performance.
type recordStore[P any] struct {
	index   map[string]int
	configs []Configuration
	perfs   []P
}

func newRecordStore[P any]() recordStore[P] {
	return recordStore[P]{index: make(map[string]int)}
}

func (s *recordStore[P]) contains(c Configuration) bool {
	_, ok := s.index[c.Key()]
	return ok
}

// insert appends the pair unless the configuration is already present.
func (s *recordStore[P]) insert(c Configuration, p P) bool {
	key := c.Key()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.configs)
	s.configs = append(s.configs, c)
	s.perfs = append(s.perfs, p)
	return true
}

func (s *recordStore[P]) get(c Configuration) (P, bool) {
	i, ok := s.index[c.Key()]
	if !ok {
		var zero P
		return zero, false
	}
	return s.perfs[i], true
}

func (s *recordStore[P]) len() int {
	return len(s.configs)
}

func (s *recordStore[P]) allConfigs() []Configuration {
	return slices.Clone(s.configs)
}
