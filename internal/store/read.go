package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReadTask returns a task by ID, or ErrTaskNotFound.
func (s *Store) ReadTask(ctx context.Context, id string) (Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, objectives, reference_point, created_seq
		FROM tasks
		WHERE id = ?
	`, id)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, fmt.Errorf("read task %s: %w", id, ErrTaskNotFound)
	}
	if err != nil {
		return Task{}, fmt.Errorf("read task %s: %w", id, err)
	}
	return task, nil
}

// ListTasks returns every task ordered by creation, then ID.
// Returns an empty slice (not nil) when there are none.
func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, objectives, reference_point, created_seq
		FROM tasks
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// ReadEvaluations returns a task's evaluations in journal order:
// ORDER BY seq ASC, config_id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the task has no evaluations.
func (s *Store) ReadEvaluations(ctx context.Context, taskID string) ([]Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, seq, config_id, config, objectives, elapsed, status
		FROM evaluations
		WHERE task_id = ?
		ORDER BY seq ASC, config_id COLLATE BINARY ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evaluations := []Evaluation{}
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evaluations, nil
}

// CountEvaluations returns the number of journaled evaluations of a task.
func (s *Store) CountEvaluations(ctx context.Context, taskID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM evaluations WHERE task_id = ?`, taskID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count evaluations: %w", err)
	}
	return n, nil
}

// LastSeq returns the highest seq journaled for a task, 0 if none.
func (s *Store) LastSeq(ctx context.Context, taskID string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM evaluations WHERE task_id = ?`, taskID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (Task, error) {
	var (
		task       Task
		objectives string
		ref        sql.NullString
	)
	if err := row.Scan(&task.ID, &objectives, &ref, &task.CreatedSeq); err != nil {
		return Task{}, err
	}

	names, err := unmarshalNames(objectives)
	if err != nil {
		return Task{}, fmt.Errorf("task %s: %w", task.ID, err)
	}
	task.Objectives = names

	if ref.Valid {
		task.ReferencePoint, err = unmarshalVector(ref.String)
		if err != nil {
			return Task{}, fmt.Errorf("task %s: %w", task.ID, err)
		}
	}
	return task, nil
}

func scanEvaluation(rows *sql.Rows) (Evaluation, error) {
	var (
		ev                 Evaluation
		config, objectives string
	)
	if err := rows.Scan(&ev.TaskID, &ev.Seq, &ev.ConfigID, &config, &objectives, &ev.Elapsed, &ev.Status); err != nil {
		return Evaluation{}, fmt.Errorf("scan evaluation: %w", err)
	}

	var err error
	if ev.Config, err = unmarshalConfig(config); err != nil {
		return Evaluation{}, fmt.Errorf("evaluation %d: %w", ev.Seq, err)
	}
	if ev.Objectives, err = unmarshalVector(objectives); err != nil {
		return Evaluation{}, fmt.Errorf("evaluation %d: %w", ev.Seq, err)
	}
	return ev, nil
}
