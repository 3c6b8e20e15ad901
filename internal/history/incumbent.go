package history

import "math"

// tracker keeps the best scalar seen so far and every entry tied at it.
//
// A strictly better value always leaves a single entry; an equal value is
// appended to the existing list. NaN is never kept.
type tracker[E any] struct {
	set     bool
	value   float64
	entries []E
}

// offer updates the tracker and reports whether the entry was kept.
func (t *tracker[E]) offer(v float64, e E) bool {
	if math.IsNaN(v) {
		return false
	}
	if !t.set {
		t.set = true
		t.value = v
		t.entries = []E{e}
		return true
	}
	if v < t.value {
		t.entries = nil
	}
	if v <= t.value {
		t.entries = append(t.entries, e)
		t.value = v
		return true
	}
	return false
}

func (t *tracker[E]) snapshot() []E {
	out := make([]E, len(t.entries))
	copy(out, t.entries)
	return out
}

// Incumbent is a configuration tied at the best single-objective cost.
type Incumbent struct {
	Config Configuration
	Perf   Perf
}

// ObjectiveIncumbent is a configuration tied at the best value of one
// objective, together with its full objective vector.
type ObjectiveIncumbent struct {
	Config     Configuration
	Value      float64
	Objectives []float64
}
