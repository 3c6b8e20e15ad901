package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/evalledger/internal/history"
	"github.com/roach88/evalledger/internal/metrics"
)

// LedgerEntry is one configuration with its objective values, as printed
// by the inspection commands.
type LedgerEntry struct {
	Config     map[string]any `json:"config"`
	Objectives []float64      `json:"objectives"`
}

func (e LedgerEntry) String() string {
	return fmt.Sprintf("%v -> %v", e.Config, e.Objectives)
}

// newLogger returns the ledger logger for a command: warnings (duplicates,
// counter mismatches) always reach stderr, debug output only with
// --verbose. JSON output keeps stdout clean either way.
func newLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// metricsRecorder wires a fresh registry into a ledger when enabled.
type metricsRecorder struct {
	registry *prometheus.Registry
	ledger   *metrics.LedgerMetrics
}

func newMetricsRecorder(enabled bool) *metricsRecorder {
	if !enabled {
		return nil
	}
	reg := prometheus.NewRegistry()
	return &metricsRecorder{registry: reg, ledger: metrics.NewLedgerMetrics(reg)}
}

// options returns the ledger option registering the metrics observer.
func (m *metricsRecorder) options() []history.Option {
	if m == nil {
		return nil
	}
	return []history.Option{history.WithObserver(m.ledger)}
}

// samples gathers the recorded metrics; nil when disabled.
func (m *metricsRecorder) samples() ([]metrics.Sample, error) {
	if m == nil {
		return nil, nil
	}
	return metrics.Samples(m.registry)
}

// parseVector parses a comma-separated list of numbers, e.g. "1.5,10".
func parseVector(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out[i] = f
	}
	return out, nil
}

func writeSamples(w io.Writer, samples []metrics.Sample) {
	if len(samples) == 0 {
		return
	}
	fmt.Fprintln(w, "Metrics:")
	for _, s := range samples {
		fmt.Fprintf(w, "  %s\n", s)
	}
}
