package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/evalledger/internal/testutil"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestTask registers a task with the given objectives.
func createTestTask(t *testing.T, s *Store, id string, objectives ...string) {
	t.Helper()
	if len(objectives) == 0 {
		objectives = []string{"cost"}
	}
	if _, err := s.CreateTask(context.Background(), Task{ID: id, Objectives: objectives}); err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
}

// createTestEvaluation creates an evaluation of a label configuration.
func createTestEvaluation(taskID, label string, seq int64, objectives ...float64) Evaluation {
	cfg := testutil.Label(label)
	return Evaluation{
		TaskID:     taskID,
		Seq:        seq,
		ConfigID:   cfg.Key(),
		Config:     cfg.Dictionary(),
		Objectives: objectives,
	}
}
