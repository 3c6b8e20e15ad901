package store

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/evalledger/internal/history"
	"github.com/roach88/evalledger/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRecorder_MirrorsAcceptedInsertions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestTask(t, s, "t1")

	rec := NewRecorder(ctx, s, quietLogger())
	c := history.NewContainer("t1", history.WithLogger(quietLogger()), history.WithObserver(rec))

	c.Add(testutil.Label("A"), history.Perf{Cost: 5, Time: 0.5, Status: history.StatusTimeout})
	c.Add(testutil.Label("B"), history.Cost(3))
	c.Add(testutil.Label("A"), history.Cost(1))
	require.NoError(t, rec.Err())

	evaluations, err := s.ReadEvaluations(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, evaluations, 2)
	assert.Equal(t, int64(1), evaluations[0].Seq)
	assert.Equal(t, "timeout", evaluations[0].Status)
	assert.Equal(t, 0.5, evaluations[0].Elapsed)
	assert.Equal(t, int64(2), evaluations[1].Seq)
	assert.Equal(t, []float64{3}, evaluations[1].Objectives)
}

func TestRecorder_KeepsFirstError(t *testing.T) {
	s := createTestStore(t)

	// No task row: every write violates the foreign key
	rec := NewRecorder(context.Background(), s, quietLogger())
	c := history.NewContainer("unregistered", history.WithLogger(quietLogger()), history.WithObserver(rec))

	assert.True(t, c.Add(testutil.Label("A"), history.Cost(1)))
	assert.Error(t, rec.Err())
}

func TestLoadRecords_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestTask(t, s, "t1")

	src := history.NewContainer("t1", history.WithLogger(quietLogger()), history.WithObserver(NewRecorder(ctx, s, quietLogger())))
	src.Add(testutil.Label("A"), history.Cost(5))
	src.Add(testutil.Label("B"), history.Cost(3))
	src.Add(testutil.Label("C"), history.Cost(3))

	records, err := s.LoadRecords(ctx, "t1", testutil.DecodeLabel)
	require.NoError(t, err)

	dst := history.NewContainer("t1", history.WithLogger(quietLogger()))
	dst.Replay(records)
	assert.Equal(t, src.Records(), dst.Records())
	assert.Equal(t, src.Incumbents(), dst.Incumbents())
}

func TestLoadRecords_RejectsVectors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestTask(t, s, "t1", "f1", "f2")

	_, err := s.WriteEvaluation(ctx, createTestEvaluation("t1", "A", 1, 1, 2))
	require.NoError(t, err)

	_, err = s.LoadRecords(ctx, "t1", testutil.DecodeLabel)
	assert.ErrorIs(t, err, history.ErrObjectiveMismatch)
}

func TestLoadMORecords_RebuildsFront(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestTask(t, s, "t1", "f1", "f2")

	src := history.NewMOContainer("t1", history.WithLogger(quietLogger()), history.WithObserver(NewRecorder(ctx, s, quietLogger())))
	for _, p := range []struct {
		name string
		obj  []float64
	}{
		{"P1", []float64{1, 5}},
		{"P2", []float64{5, 1}},
		{"P3", []float64{3, 3}},
		{"P4", []float64{4, 4}},
	} {
		_, err := src.Add(testutil.Label(p.name), p.obj)
		require.NoError(t, err)
	}

	records, err := s.LoadMORecords(ctx, "t1", testutil.DecodeLabel)
	require.NoError(t, err)
	require.Len(t, records, 4)

	dst := history.NewMOContainer("t1", history.WithLogger(quietLogger()))
	require.NoError(t, dst.Replay(records))
	assert.Equal(t, src.ParetoFront(), dst.ParetoFront())
}
