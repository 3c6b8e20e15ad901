package history

import "fmt"

// Status is the outcome of one objective evaluation.
type Status int

// Evaluation outcomes.
const (
	StatusSuccess Status = iota
	StatusFailed
	StatusTimeout
	StatusMemoryOut
	StatusCrashed
)

var statusNames = [...]string{
	StatusSuccess:   "success",
	StatusFailed:    "failed",
	StatusTimeout:   "timeout",
	StatusMemoryOut: "memory_out",
	StatusCrashed:   "crashed",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

// Perf is the measured performance of a single-objective evaluation.
// Only Cost takes part in incumbent comparison; lower is better.
type Perf struct {
	Cost           float64
	Time           float64
	Status         Status
	AdditionalInfo map[string]any
}

// Cost is shorthand for a successful Perf with only a cost.
func Cost(c float64) Perf {
	return Perf{Cost: c}
}
