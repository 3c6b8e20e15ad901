// Package metrics exports ledger progress as Prometheus metrics.
package metrics

import (
	"math"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/evalledger/internal/history"
)

// Outcome label values of evalledger_evaluations_total.
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
)

// LedgerMetrics holds the ledger's Prometheus metrics. It implements
// history.Observer; register it with history.WithObserver.
type LedgerMetrics struct {
	EvaluationsTotal *prometheus.CounterVec
	IncumbentValue   *prometheus.GaugeVec
	ParetoFrontSize  *prometheus.GaugeVec
	Hypervolume      *prometheus.GaugeVec
}

// NewLedgerMetrics creates the metrics and registers them with reg.
// A nil reg uses the default registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &LedgerMetrics{
		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evalledger_evaluations_total",
				Help: "Total number of evaluations offered to the ledger",
			},
			[]string{"task_id", "outcome"},
		),

		IncumbentValue: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "evalledger_incumbent_value",
				Help: "Best value seen so far, per objective",
			},
			[]string{"task_id", "objective"},
		),

		ParetoFrontSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "evalledger_pareto_front_size",
				Help: "Number of non-dominated evaluations (tied incumbents for single-objective runs)",
			},
			[]string{"task_id"},
		),

		Hypervolume: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "evalledger_hypervolume",
				Help: "Hypervolume of the Pareto front relative to the reference point",
			},
			[]string{"task_id"},
		),
	}
}

// Observe updates the metrics from one Add outcome.
func (m *LedgerMetrics) Observe(ev history.Event) {
	if !ev.Accepted {
		m.EvaluationsTotal.WithLabelValues(ev.TaskID, OutcomeDuplicate).Inc()
		return
	}
	m.EvaluationsTotal.WithLabelValues(ev.TaskID, OutcomeAccepted).Inc()

	for i, v := range ev.IncumbentValues {
		if math.IsNaN(v) {
			continue
		}
		m.IncumbentValue.WithLabelValues(ev.TaskID, strconv.Itoa(i)).Set(v)
	}
	m.ParetoFrontSize.WithLabelValues(ev.TaskID).Set(float64(ev.FrontSize))
	if ev.HasHypervolume {
		m.Hypervolume.WithLabelValues(ev.TaskID).Set(ev.Hypervolume)
	}
}

// Forget drops every series of a finished task.
func (m *LedgerMetrics) Forget(taskID string) {
	labels := prometheus.Labels{"task_id": taskID}
	m.EvaluationsTotal.DeletePartialMatch(labels)
	m.IncumbentValue.DeletePartialMatch(labels)
	m.ParetoFrontSize.DeletePartialMatch(labels)
	m.Hypervolume.DeletePartialMatch(labels)
}
