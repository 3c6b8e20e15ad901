package metrics

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/evalledger/internal/history"
	ledgertest "github.com/roach88/evalledger/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestLedgerMetrics_SingleObjective(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)
	c := history.NewContainer("t1", history.WithLogger(quietLogger()), history.WithObserver(m))

	c.Add(ledgertest.Label("A"), history.Cost(5))
	c.Add(ledgertest.Label("B"), history.Cost(3))
	c.Add(ledgertest.Label("C"), history.Cost(3))
	c.Add(ledgertest.Label("A"), history.Cost(1))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("t1", OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("t1", OutcomeDuplicate)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.IncumbentValue.WithLabelValues("t1", "0")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ParetoFrontSize.WithLabelValues("t1")))
	assert.Equal(t, 0, testutil.CollectAndCount(m.Hypervolume))
}

func TestLedgerMetrics_MultiObjective(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)
	c := history.NewMOContainer("t2",
		history.WithLogger(quietLogger()),
		history.WithReferencePoint([]float64{6, 6}),
		history.WithObserver(m),
	)

	_, err := c.Add(ledgertest.Label("A"), []float64{3, 3})
	require.NoError(t, err)
	_, err = c.Add(ledgertest.Label("B"), []float64{1, 5})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.IncumbentValue.WithLabelValues("t2", "0")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.IncumbentValue.WithLabelValues("t2", "1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ParetoFrontSize.WithLabelValues("t2")))
	assert.Equal(t, 11.0, testutil.ToFloat64(m.Hypervolume.WithLabelValues("t2")))
}

func TestLedgerMetrics_SkipsObjectiveWithoutValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)
	c := history.NewMOContainer("t1", history.WithLogger(quietLogger()), history.WithObserver(m))

	_, err := c.Add(ledgertest.Label("N"), []float64{math.NaN(), 3})
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CollectAndCount(m.IncumbentValue))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.IncumbentValue.WithLabelValues("t1", "1")))

	_, err = c.Add(ledgertest.Label("A"), []float64{2, 4})
	require.NoError(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(m.IncumbentValue))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IncumbentValue.WithLabelValues("t1", "0")))
}

func TestLedgerMetrics_Forget(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)
	m.Observe(history.Event{TaskID: "t1", Accepted: true, IncumbentValues: []float64{1}, FrontSize: 1})
	m.Observe(history.Event{TaskID: "t2", Accepted: true, IncumbentValues: []float64{2}, FrontSize: 1})

	m.Forget("t1")

	assert.Equal(t, 1, testutil.CollectAndCount(m.EvaluationsTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.IncumbentValue))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IncumbentValue.WithLabelValues("t2", "0")))
}

func TestNewLedgerMetrics_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewLedgerMetrics(reg)

	assert.Panics(t, func() { NewLedgerMetrics(reg) })
}

func TestSamples(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)
	m.Observe(history.Event{TaskID: "t1", Accepted: true, IncumbentValues: []float64{0.5}, FrontSize: 1})

	samples, err := Samples(reg)
	require.NoError(t, err)

	assert.Equal(t, []Sample{
		{Name: "evalledger_evaluations_total", Labels: map[string]string{"outcome": "accepted", "task_id": "t1"}, Value: 1},
		{Name: "evalledger_incumbent_value", Labels: map[string]string{"objective": "0", "task_id": "t1"}, Value: 0.5},
		{Name: "evalledger_pareto_front_size", Labels: map[string]string{"task_id": "t1"}, Value: 1},
	}, samples)
	assert.Equal(t, `evalledger_incumbent_value{objective="0",task_id="t1"} 0.5`, samples[1].String())
}

func TestSamples_Empty(t *testing.T) {
	samples, err := Samples(prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, samples)
	assert.NotNil(t, samples)
}
