package history

import "errors"

var (
	// ErrNotFound is returned when querying a configuration that was never
	// accepted.
	ErrNotFound = errors.New("configuration not found")

	// ErrObjectiveMismatch is returned when a performance vector or
	// reference point does not have the run's number of objectives.
	ErrObjectiveMismatch = errors.New("objective count mismatch")

	// ErrNoReferencePoint is returned when a hypervolume is requested
	// without a reference point.
	ErrNoReferencePoint = errors.New("no reference point configured")
)
