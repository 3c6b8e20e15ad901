package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/evalledger/internal/history"
)

// Recorder mirrors accepted ledger insertions into the journal. It
// implements history.Observer; the ledger's Count after an accepted Add is
// used as the seq.
//
// Write failures are logged and the first one is kept for Err, since an
// observer cannot fail the insertion it observes.
type Recorder struct {
	ctx    context.Context
	store  *Store
	logger *slog.Logger
	err    error
}

// NewRecorder returns a Recorder writing through s.
func NewRecorder(ctx context.Context, s *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{ctx: ctx, store: s, logger: logger.With("component", "journal")}
}

// Observe journals ev when it was accepted.
func (r *Recorder) Observe(ev history.Event) {
	if !ev.Accepted {
		return
	}
	inserted, err := r.store.WriteEvaluation(r.ctx, Evaluation{
		TaskID:     ev.TaskID,
		Seq:        int64(ev.Count),
		ConfigID:   ev.Config.Key(),
		Config:     ev.Config.Dictionary(),
		Objectives: ev.Objectives,
		Elapsed:    ev.Elapsed,
		Status:     ev.Status.String(),
	})
	if err != nil {
		r.logger.Error("failed to journal evaluation", "task_id", ev.TaskID, "config", ev.Config.String(), "error", err)
		if r.err == nil {
			r.err = err
		}
		return
	}
	if !inserted {
		r.logger.Debug("evaluation already journaled", "task_id", ev.TaskID, "config", ev.Config.String())
	}
}

// Err returns the first write failure, if any.
func (r *Recorder) Err() error {
	return r.err
}

// LoadRecords reads a single-objective task back as ledger records, in
// journal order, rehydrating configurations through decode.
func (s *Store) LoadRecords(ctx context.Context, taskID string, decode history.DecodeFunc) ([]history.Record, error) {
	evaluations, err := s.ReadEvaluations(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	records := make([]history.Record, 0, len(evaluations))
	for _, ev := range evaluations {
		if len(ev.Objectives) != 1 {
			return nil, fmt.Errorf("load records: evaluation %d: %w: expected 1 objective, got %d",
				ev.Seq, history.ErrObjectiveMismatch, len(ev.Objectives))
		}
		cfg, err := decode(ev.Config)
		if err != nil {
			return nil, fmt.Errorf("load records: evaluation %d: %w", ev.Seq, err)
		}
		status, err := history.ParseStatus(ev.Status)
		if err != nil {
			return nil, fmt.Errorf("load records: evaluation %d: %w", ev.Seq, err)
		}
		records = append(records, history.Record{
			Config: cfg,
			Perf:   history.Perf{Cost: ev.Objectives[0], Time: ev.Elapsed, Status: status},
		})
	}
	return records, nil
}

// LoadMORecords reads a multi-objective task back as ledger records, in
// journal order, rehydrating configurations through decode.
func (s *Store) LoadMORecords(ctx context.Context, taskID string, decode history.DecodeFunc) ([]history.MORecord, error) {
	evaluations, err := s.ReadEvaluations(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	records := make([]history.MORecord, 0, len(evaluations))
	for _, ev := range evaluations {
		cfg, err := decode(ev.Config)
		if err != nil {
			return nil, fmt.Errorf("load records: evaluation %d: %w", ev.Seq, err)
		}
		records = append(records, history.MORecord{Config: cfg, Objectives: ev.Objectives})
	}
	return records, nil
}
