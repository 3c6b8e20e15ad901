package history

import (
	"log/slog"
	"slices"

	"github.com/roach88/evalledger/internal/hypervolume"
)

// HypervolumeCalculator computes the hypervolume of a set of objective
// vectors relative to a reference point. It is never called with an empty
// set.
type HypervolumeCalculator interface {
	Compute(ref []float64, points [][]float64) float64
}

// Event describes the outcome of one Add call.
type Event struct {
	TaskID     string
	Config     Configuration
	Objectives []float64

	// Elapsed and Status come from Perf; multi-objective runs leave them
	// zero.
	Elapsed float64
	Status  Status

	// Accepted is false for a duplicate configuration; the remaining
	// fields then describe the unchanged ledger.
	Accepted        bool
	Count           int
	IncumbentValues []float64

	// FrontSize is the Pareto front size, or the number of tied incumbents
	// for a single-objective run.
	FrontSize int

	// Hypervolume is set only when a reference point is configured.
	Hypervolume    float64
	HasHypervolume bool
}

// Observer is notified after every Add, accepted or not.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

type options struct {
	logger    *slog.Logger
	observers []Observer
	ref       []float64
	hv        HypervolumeCalculator
}

// Option configures a Container or MOContainer.
type Option func(*options)

// WithLogger sets the logger owned by the container.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers an observer notified after every Add. Observers
// are called in registration order.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// WithReferencePoint enables the hypervolume series of an MOContainer.
// An empty ref leaves the reference point unset. Ignored by the
// single-objective Container.
func WithReferencePoint(ref []float64) Option {
	return func(o *options) {
		if len(ref) == 0 {
			o.ref = nil
			return
		}
		o.ref = slices.Clone(ref)
	}
}

// WithHypervolume replaces the default exact hypervolume calculator.
func WithHypervolume(calc HypervolumeCalculator) Option {
	return func(o *options) { o.hv = calc }
}

func buildOptions(taskID, component string, opts []Option) options {
	o := options{hv: hypervolume.New()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.logger = o.logger.With("component", component, "task_id", taskID)
	return o
}
