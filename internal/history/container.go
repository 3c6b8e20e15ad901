package history

import (
	"fmt"
	"log/slog"
)

// Container is the single-objective evaluation ledger.
type Container struct {
	taskID    string
	records   recordStore[Perf]
	count     int
	incumbent tracker[Incumbent]
	logger    *slog.Logger
	observers []Observer
}

// NewContainer creates an empty ledger. An empty taskID is replaced by a
// fresh UUIDv7.
func NewContainer(taskID string, opts ...Option) *Container {
	if taskID == "" {
		taskID = NewTaskID()
	}
	o := buildOptions(taskID, "history", opts)
	return &Container{
		taskID:    taskID,
		records:   newRecordStore[Perf](),
		logger:    o.logger,
		observers: o.observers,
	}
}

// TaskID returns the run identifier.
func (c *Container) TaskID() string {
	return c.taskID
}

// Add records one evaluation and reports whether it was accepted.
// A configuration already present is left untouched and a warning is
// logged; this is not an update.
func (c *Container) Add(cfg Configuration, perf Perf) bool {
	if !c.records.insert(cfg, perf) {
		c.logger.Warn("repeated configuration detected", "config", cfg.String())
		c.notify(cfg, perf, false)
		return false
	}
	c.count++

	if c.incumbent.offer(perf.Cost, Incumbent{Config: cfg, Perf: perf}) {
		c.logger.Debug("incumbent updated",
			"config", cfg.String(),
			"cost", perf.Cost,
			"ties", len(c.incumbent.entries),
		)
	}

	c.notify(cfg, perf, true)
	return true
}

// Replay adds records in order, as if each had been passed to Add.
func (c *Container) Replay(records []Record) {
	for _, r := range records {
		c.Add(r.Config, r.Perf)
	}
}

func (c *Container) notify(cfg Configuration, perf Perf, accepted bool) {
	if len(c.observers) == 0 {
		return
	}
	ev := Event{
		TaskID:     c.taskID,
		Config:     cfg,
		Objectives: []float64{perf.Cost},
		Elapsed:    perf.Time,
		Status:     perf.Status,
		Accepted:   accepted,
		Count:      c.count,
		FrontSize:  len(c.incumbent.entries),
	}
	if v, ok := c.IncumbentValue(); ok {
		ev.IncumbentValues = []float64{v}
	}
	for _, obs := range c.observers {
		obs.Observe(ev)
	}
}

// Perf returns the performance recorded for cfg.
func (c *Container) Perf(cfg Configuration) (Perf, error) {
	p, ok := c.records.get(cfg)
	if !ok {
		return Perf{}, fmt.Errorf("perf of %s: %w", cfg.String(), ErrNotFound)
	}
	return p, nil
}

// Contains reports whether cfg has been accepted.
func (c *Container) Contains(cfg Configuration) bool {
	return c.records.contains(cfg)
}

// Configs returns every accepted configuration in insertion order.
func (c *Container) Configs() []Configuration {
	return c.records.allConfigs()
}

// Perfs returns every accepted performance in insertion order.
func (c *Container) Perfs() []Perf {
	out := make([]Perf, len(c.records.perfs))
	copy(out, c.records.perfs)
	return out
}

// Records returns every accepted pair in insertion order.
func (c *Container) Records() []Record {
	out := make([]Record, c.records.len())
	for i, cfg := range c.records.configs {
		out[i] = Record{Config: cfg, Perf: c.records.perfs[i]}
	}
	return out
}

// Count returns the number of accepted insertions.
func (c *Container) Count() int {
	return c.count
}

// Empty reports whether nothing has been accepted.
func (c *Container) Empty() bool {
	return c.count == 0
}

// IncumbentValue returns the best cost so far; ok is false when empty.
func (c *Container) IncumbentValue() (value float64, ok bool) {
	return c.incumbent.value, c.incumbent.set
}

// Incumbents returns the configurations tied at the best cost, in the
// order they were inserted.
func (c *Container) Incumbents() []Incumbent {
	return c.incumbent.snapshot()
}

func (c *Container) reset() {
	c.records = newRecordStore[Perf]()
	c.count = 0
	c.incumbent = tracker[Incumbent]{}
}

func (c *Container) String() string {
	value, ok := c.IncumbentValue()
	if !ok {
		return fmt.Sprintf("Container(task_id=%s, records=0)", c.taskID)
	}
	return fmt.Sprintf("Container(task_id=%s, records=%d, incumbent_value=%g, incumbents=%d)",
		c.taskID, c.count, value, len(c.incumbent.entries))
}
