package store

import "errors"

// ErrTaskNotFound is returned when reading a task that was never created.
var ErrTaskNotFound = errors.New("task not found")

// Task is one optimization run.
type Task struct {
	ID             string
	Objectives     []string
	ReferencePoint []float64 // nil when unset
	CreatedSeq     int64
}

// MultiObjective reports whether the task records objective vectors.
func (t Task) MultiObjective() bool {
	return len(t.Objectives) > 1
}

// Evaluation is one journaled insertion.
type Evaluation struct {
	TaskID     string
	Seq        int64
	ConfigID   string
	Config     map[string]any
	Objectives []float64
	Elapsed    float64
	Status     string
}
