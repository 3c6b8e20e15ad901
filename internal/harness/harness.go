package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/evalledger/internal/history"
	"github.com/roach88/evalledger/internal/space"
	"github.com/roach88/evalledger/internal/store"
	"github.com/roach88/evalledger/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios against a fresh ledger with a deterministic clock.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	logger *slog.Logger
	space  *space.Space

	// labels maps configuration keys to the first label that used them.
	labels  map[string]string
	current string
	result  *Result
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with
// the journal recorder attached to the ledger so every accepted insertion
// is also written through the store.
//
// Execution flow:
// 1. Create fresh in-memory database and register the task
// 2. Build the ledger (single- or multi-objective)
// 3. Add every evaluation, tracing each outcome
// 4. Capture the final state and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		labels: make(map[string]string),
		result: NewResult(),
	}
	if len(scenario.Space) > 0 {
		h.space, err = space.FromMap(scenario.Space)
		if err != nil {
			return nil, fmt.Errorf("failed to build space: %w", err)
		}
	}

	ctx := context.Background()
	taskID := scenario.TaskID
	if taskID == "" {
		taskID = DefaultTaskID
	}
	if _, err := st.CreateTask(ctx, store.Task{
		ID:             taskID,
		Objectives:     objectiveNames(scenario),
		ReferencePoint: scenario.ReferencePoint,
	}); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	recorder := store.NewRecorder(ctx, st, h.logger)
	opts := []history.Option{
		history.WithLogger(h.logger),
		history.WithObserver(recorder),
		history.WithObserver(history.ObserverFunc(h.trace)),
	}

	if scenario.MultiObjective() {
		if scenario.ReferencePoint != nil {
			opts = append(opts, history.WithReferencePoint(scenario.ReferencePoint))
		}
		err = h.runMulti(history.NewMOContainer(taskID, opts...), scenario.Evaluations)
	} else {
		err = h.runSingle(history.NewContainer(taskID, opts...), scenario.Evaluations)
	}
	if err != nil {
		return nil, err
	}
	if err := recorder.Err(); err != nil {
		return nil, fmt.Errorf("failed to journal evaluations: %w", err)
	}

	journaled, err := st.CountEvaluations(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to count journal: %w", err)
	}
	h.result.State.Journaled = journaled

	for _, errMsg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(errMsg)
	}

	return h.result, nil
}

func (h *Harness) runSingle(c *history.Container, steps []EvaluationStep) error {
	for i, step := range steps {
		cfg, err := h.configuration(step)
		if err != nil {
			return fmt.Errorf("evaluations[%d]: %w", i, err)
		}
		perf := history.Perf{Cost: *step.Cost, Time: step.Time}
		if step.Status != "" {
			if perf.Status, err = history.ParseStatus(step.Status); err != nil {
				return fmt.Errorf("evaluations[%d]: %w", i, err)
			}
		}
		c.Add(cfg, perf)
	}

	state := &h.result.State
	state.Count = c.Count()
	if v, ok := c.IncumbentValue(); ok {
		state.IncumbentValue = &v
	}
	state.Incumbents = []string{}
	for _, inc := range c.Incumbents() {
		state.Incumbents = append(state.Incumbents, h.label(inc.Config))
	}
	return nil
}

func (h *Harness) runMulti(c *history.MOContainer, steps []EvaluationStep) error {
	for i, step := range steps {
		cfg, err := h.configuration(step)
		if err != nil {
			return fmt.Errorf("evaluations[%d]: %w", i, err)
		}
		if _, err := c.Add(cfg, step.Objectives); err != nil {
			h.result.Trace = append(h.result.Trace, TraceEvent{
				Seq:             h.clock.Next(),
				Label:           step.Label,
				Objectives:      step.Objectives,
				Count:           c.Count(),
				IncumbentValues: c.ObjectiveIncumbentValues(),
				FrontSize:       len(c.Pareto()),
				Error:           err.Error(),
			})
		}
	}

	state := &h.result.State
	state.Count = c.Count()
	state.IncumbentValues = c.ObjectiveIncumbentValues()
	state.Pareto = h.moLabels(c.Pareto())
	state.Incumbents = state.Pareto
	state.ObjectiveIncumbents = make([][]string, len(c.ObjectiveIncumbents()))
	for i, entries := range c.ObjectiveIncumbents() {
		names := make([]string, len(entries))
		for j, e := range entries {
			names[j] = h.label(e.Config)
		}
		state.ObjectiveIncumbents[i] = names
	}
	state.Hypervolume = c.HypervolumeSeries()
	return nil
}

// configuration resolves a step to the ledger's configuration value and
// remembers its label.
func (h *Harness) configuration(step EvaluationStep) (history.Configuration, error) {
	var cfg history.Configuration = testutil.Label(step.Label)
	if h.space != nil {
		c, err := h.space.FromDictionary(step.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if _, seen := h.labels[cfg.Key()]; !seen {
		h.labels[cfg.Key()] = step.Label
	}
	h.current = step.Label
	return cfg, nil
}

func (h *Harness) label(cfg history.Configuration) string {
	if name, ok := h.labels[cfg.Key()]; ok {
		return name
	}
	return cfg.String()
}

func (h *Harness) moLabels(records []history.MORecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = h.label(r.Config)
	}
	return out
}

// trace is the ledger observer that builds Result.Trace. Events carry the
// label of the step being added, which for a duplicate may differ from the
// label the configuration was first recorded under.
func (h *Harness) trace(ev history.Event) {
	te := TraceEvent{
		Seq:             h.clock.Next(),
		Label:           h.current,
		Objectives:      ev.Objectives,
		Accepted:        ev.Accepted,
		Count:           ev.Count,
		IncumbentValues: ev.IncumbentValues,
		FrontSize:       ev.FrontSize,
	}
	if ev.HasHypervolume {
		hv := ev.Hypervolume
		te.Hypervolume = &hv
	}
	h.result.Trace = append(h.result.Trace, te)
}

func objectiveNames(s *Scenario) []string {
	if !s.MultiObjective() {
		return []string{"cost"}
	}
	names := make([]string, len(s.Evaluations[0].Objectives))
	for i := range names {
		names[i] = fmt.Sprintf("f%d", i+1)
	}
	return names
}
