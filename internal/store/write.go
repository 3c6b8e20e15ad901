package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateTask registers a run. Uses ON CONFLICT(id) DO NOTHING, so
// re-creating an existing task keeps its original objectives; inserted
// reports whether a row was written.
func (s *Store) CreateTask(ctx context.Context, task Task) (inserted bool, err error) {
	objectives, err := marshalNames(task.Objectives)
	if err != nil {
		return false, fmt.Errorf("create task: %w", err)
	}

	var ref sql.NullString
	if task.ReferencePoint != nil {
		text, err := marshalVector(task.ReferencePoint)
		if err != nil {
			return false, fmt.Errorf("create task: %w", err)
		}
		ref = sql.NullString{String: text, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, objectives, reference_point, created_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, task.ID, objectives, ref, task.CreatedSeq)
	if err != nil {
		return false, fmt.Errorf("create task: %w", err)
	}
	return rowsInserted(result, "create task")
}

// WriteEvaluation appends an evaluation to the journal.
//
// Uses ON CONFLICT DO NOTHING for idempotency: a second evaluation of the
// same configuration in the same task, or a reused seq, is silently
// ignored and inserted is false. The task must exist (foreign key).
func (s *Store) WriteEvaluation(ctx context.Context, ev Evaluation) (inserted bool, err error) {
	config, err := marshalConfig(ev.Config)
	if err != nil {
		return false, fmt.Errorf("write evaluation: %w", err)
	}
	objectives, err := marshalVector(ev.Objectives)
	if err != nil {
		return false, fmt.Errorf("write evaluation: %w", err)
	}
	status := ev.Status
	if status == "" {
		status = "success"
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations
		(task_id, seq, config_id, config, objectives, elapsed, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		ev.TaskID,
		ev.Seq,
		ev.ConfigID,
		config,
		objectives,
		ev.Elapsed,
		status,
	)
	if err != nil {
		return false, fmt.Errorf("write evaluation: %w", err)
	}
	return rowsInserted(result, "write evaluation")
}

func rowsInserted(result sql.Result, op string) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n > 0, nil
}
