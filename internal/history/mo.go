package history

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/roach88/evalledger/internal/hypervolume"
)

// MOContainer is the multi-objective evaluation ledger.
//
// The number of objectives is fixed by the first accepted Add.
type MOContainer struct {
	taskID        string
	numObjectives int
	records       recordStore[[]float64]
	count         int
	front         paretoFront
	objIncumbents []tracker[ObjectiveIncumbent]
	ref           []float64
	hv            HypervolumeCalculator
	hvSeries      []float64
	logger        *slog.Logger
	observers     []Observer
}

// NewMOContainer creates an empty multi-objective ledger. An empty taskID
// is replaced by a fresh UUIDv7. Use WithReferencePoint to record the
// hypervolume series.
func NewMOContainer(taskID string, opts ...Option) *MOContainer {
	if taskID == "" {
		taskID = NewTaskID()
	}
	o := buildOptions(taskID, "history.mo", opts)
	return &MOContainer{
		taskID:    taskID,
		records:   newRecordStore[[]float64](),
		ref:       o.ref,
		hv:        o.hv,
		logger:    o.logger,
		observers: o.observers,
	}
}

// TaskID returns the run identifier.
func (c *MOContainer) TaskID() string {
	return c.taskID
}

// Add records one evaluation and reports whether it was accepted.
//
// It returns ErrObjectiveMismatch, without changing anything, when perf
// does not have the run's number of objectives (or, on the first call,
// does not match the reference point). A configuration already present is
// a logged no-op.
func (c *MOContainer) Add(cfg Configuration, perf []float64) (bool, error) {
	if err := c.checkObjectives(perf); err != nil {
		return false, err
	}
	if c.numObjectives == 0 {
		c.numObjectives = len(perf)
		// One tracker per objective, each with its own entry list
		c.objIncumbents = make([]tracker[ObjectiveIncumbent], len(perf))
	}

	perf = slices.Clone(perf)
	if !c.records.insert(cfg, perf) {
		c.logger.Warn("repeated configuration detected", "config", cfg.String())
		c.notify(cfg, perf, false)
		return false, nil
	}
	c.count++

	c.updatePareto(cfg, perf)
	c.updateObjectiveIncumbents(cfg, perf)

	if c.ref != nil {
		hv := c.currentHypervolume(c.ref)
		c.hvSeries = append(c.hvSeries, hv)
	}

	c.notify(cfg, perf, true)
	return true, nil
}

// Replay adds records in order, stopping at the first error.
func (c *MOContainer) Replay(records []MORecord) error {
	for i, r := range records {
		if _, err := c.Add(r.Config, r.Objectives); err != nil {
			return fmt.Errorf("replay record %d: %w", i, err)
		}
	}
	return nil
}

func (c *MOContainer) checkObjectives(perf []float64) error {
	if len(perf) == 0 {
		return fmt.Errorf("%w: empty performance vector", ErrObjectiveMismatch)
	}
	if c.numObjectives == 0 {
		if c.ref != nil {
			if err := hypervolume.Validate(c.ref, len(perf)); err != nil {
				return fmt.Errorf("%w: %v", ErrObjectiveMismatch, err)
			}
		}
		return nil
	}
	if len(perf) != c.numObjectives {
		return fmt.Errorf("%w: expected %d objectives, got %d",
			ErrObjectiveMismatch, c.numObjectives, len(perf))
	}
	return nil
}

func (c *MOContainer) updatePareto(cfg Configuration, perf []float64) {
	if slices.ContainsFunc(perf, math.IsNaN) {
		c.logger.Warn("objective vector has NaN, not a pareto candidate", "config", cfg.String(), "perf", perf)
		return
	}
	out := c.front.scan(perf)
	if out.rejected {
		c.logger.Debug("pareto candidate dominated",
			"config", cfg.String(),
			"perf", perf,
			"by", c.front.members[out.blocker].Config.String(),
		)
		return
	}

	removed := c.front.apply(MORecord{Config: cfg, Objectives: perf}, out)
	c.logger.Info("update pareto", "config", cfg.String(), "perf", perf)
	for _, r := range removed {
		c.logger.Info("remove from pareto", "config", r.Config.String(), "perf", r.Objectives)
	}
}

func (c *MOContainer) updateObjectiveIncumbents(cfg Configuration, perf []float64) {
	for i := range c.objIncumbents {
		c.objIncumbents[i].offer(perf[i], ObjectiveIncumbent{
			Config:     cfg,
			Value:      perf[i],
			Objectives: perf,
		})
	}
}

func (c *MOContainer) currentHypervolume(ref []float64) float64 {
	if len(c.front.members) == 0 {
		return 0
	}
	return c.hv.Compute(ref, c.front.objectives())
}

func (c *MOContainer) notify(cfg Configuration, perf []float64, accepted bool) {
	if len(c.observers) == 0 {
		return
	}
	ev := Event{
		TaskID:          c.taskID,
		Config:          cfg,
		Objectives:      slices.Clone(perf),
		Accepted:        accepted,
		Count:           c.count,
		IncumbentValues: c.ObjectiveIncumbentValues(),
		FrontSize:       len(c.front.members),
	}
	if n := len(c.hvSeries); n > 0 {
		ev.Hypervolume = c.hvSeries[n-1]
		ev.HasHypervolume = true
	}
	for _, obs := range c.observers {
		obs.Observe(ev)
	}
}

// NumObjectives returns the number of objectives, or 0 before the first
// accepted Add.
func (c *MOContainer) NumObjectives() int {
	return c.numObjectives
}

// Objectives returns the vector recorded for cfg.
func (c *MOContainer) Objectives(cfg Configuration) ([]float64, error) {
	p, ok := c.records.get(cfg)
	if !ok {
		return nil, fmt.Errorf("objectives of %s: %w", cfg.String(), ErrNotFound)
	}
	return slices.Clone(p), nil
}

// Contains reports whether cfg has been accepted.
func (c *MOContainer) Contains(cfg Configuration) bool {
	return c.records.contains(cfg)
}

// Configs returns every accepted configuration in insertion order.
func (c *MOContainer) Configs() []Configuration {
	return c.records.allConfigs()
}

// Perfs returns every accepted objective vector in insertion order.
func (c *MOContainer) Perfs() [][]float64 {
	out := make([][]float64, len(c.records.perfs))
	for i, p := range c.records.perfs {
		out[i] = slices.Clone(p)
	}
	return out
}

// Records returns every accepted pair in insertion order.
func (c *MOContainer) Records() []MORecord {
	out := make([]MORecord, c.records.len())
	for i, cfg := range c.records.configs {
		out[i] = MORecord{Config: cfg, Objectives: slices.Clone(c.records.perfs[i])}
	}
	return out
}

// Count returns the number of accepted insertions.
func (c *MOContainer) Count() int {
	return c.count
}

// Empty reports whether nothing has been accepted.
func (c *MOContainer) Empty() bool {
	return c.count == 0
}

// Pareto returns the current front in insertion order.
func (c *MOContainer) Pareto() []MORecord {
	out := make([]MORecord, len(c.front.members))
	for i, m := range c.front.members {
		out[i] = MORecord{Config: m.Config, Objectives: slices.Clone(m.Objectives)}
	}
	return out
}

// Incumbents returns the Pareto front; every member is an incumbent of the
// multi-objective run.
func (c *MOContainer) Incumbents() []MORecord {
	return c.Pareto()
}

// ParetoSet returns the configurations on the front.
func (c *MOContainer) ParetoSet() []Configuration {
	out := make([]Configuration, len(c.front.members))
	for i, m := range c.front.members {
		out[i] = m.Config
	}
	return out
}

// ParetoFront returns the objective vectors on the front.
func (c *MOContainer) ParetoFront() [][]float64 {
	out := make([][]float64, len(c.front.members))
	for i, m := range c.front.members {
		out[i] = slices.Clone(m.Objectives)
	}
	return out
}

// ObjectiveIncumbents returns, per objective, the configurations tied at
// that objective's best value.
func (c *MOContainer) ObjectiveIncumbents() [][]ObjectiveIncumbent {
	out := make([][]ObjectiveIncumbent, len(c.objIncumbents))
	for i := range c.objIncumbents {
		entries := c.objIncumbents[i].snapshot()
		for j := range entries {
			entries[j].Objectives = slices.Clone(entries[j].Objectives)
		}
		out[i] = entries
	}
	return out
}

// ObjectiveIncumbentValues returns the best value of each objective. An
// objective that has not received a value yet (only NaN so far) reports NaN.
func (c *MOContainer) ObjectiveIncumbentValues() []float64 {
	if len(c.objIncumbents) == 0 {
		return nil
	}
	out := make([]float64, len(c.objIncumbents))
	for i := range c.objIncumbents {
		out[i] = math.NaN()
		if c.objIncumbents[i].set {
			out[i] = c.objIncumbents[i].value
		}
	}
	return out
}

// ReferencePoint returns the configured reference point, or nil.
func (c *MOContainer) ReferencePoint() []float64 {
	return slices.Clone(c.ref)
}

// HypervolumeSeries returns one hypervolume per accepted insertion. Empty
// unless a reference point is configured.
func (c *MOContainer) HypervolumeSeries() []float64 {
	return slices.Clone(c.hvSeries)
}

// ComputeHypervolume returns the hypervolume of the current front. A nil
// ref falls back to the configured reference point.
func (c *MOContainer) ComputeHypervolume(ref []float64) (float64, error) {
	if ref == nil {
		ref = c.ref
	}
	if ref == nil {
		return 0, ErrNoReferencePoint
	}
	if c.numObjectives != 0 {
		if err := hypervolume.Validate(ref, c.numObjectives); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrObjectiveMismatch, err)
		}
	}
	return c.currentHypervolume(ref), nil
}

func (c *MOContainer) String() string {
	return fmt.Sprintf("MOContainer(task_id=%s, records=%d, objectives=%d, pareto=%d)",
		c.taskID, c.count, c.numObjectives, len(c.front.members))
}
