package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/evalledger/internal/history"
	"github.com/roach88/evalledger/internal/metrics"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Space   string // study directory
	Metrics bool
}

// ShowResult summarizes a single-objective ledger.
type ShowResult struct {
	TaskID         string           `json:"task_id"`
	Count          int              `json:"count"`
	ConfigCounter  int              `json:"config_counter"`
	IncumbentValue *float64         `json:"incumbent_value,omitempty"`
	Incumbents     []LedgerEntry    `json:"incumbents"`
	Metrics        []metrics.Sample `json:"metrics,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <snapshot>",
		Short: "Summarize a single-objective snapshot",
		Long: `Load a single-objective snapshot, replay it into a fresh ledger and
print the number of evaluations, the best cost and every configuration
tied at it.

Examples:
  evalledger show history_container.json --space ./study
  evalledger show history_container.json --space ./study --metrics --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Space, "space", "", "directory of the CUE study (required)")
	_ = cmd.MarkFlagRequired("space")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "include ledger metrics gathered during replay")

	return cmd
}

func runShow(opts *ShowOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	study, sp, err := loadSpace(opts.Space)
	if err != nil {
		code, message := loadErrorCode(err)
		return formatter.Fail(ExitCommandError, code, message, nil)
	}
	if study.MultiObjective() {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("study declares %d objectives; use pareto", len(study.Objectives)), nil)
	}

	snap, err := history.ReadSnapshot(path, decoderFor(sp))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSnapshot, "failed to read snapshot", err)
	}
	formatter.VerboseLog("Read %d record(s) from %s", len(snap.Records), path)

	rec := newMetricsRecorder(opts.Metrics)
	ledgerOpts := append([]history.Option{history.WithLogger(newLogger(opts.RootOptions, cmd))}, rec.options()...)
	c := history.NewContainer(snap.TaskID, ledgerOpts...)
	c.Replay(snap.Records)

	result := ShowResult{
		TaskID:        c.TaskID(),
		Count:         c.Count(),
		ConfigCounter: snap.ConfigCounter,
		Incumbents:    []LedgerEntry{},
	}
	if v, ok := c.IncumbentValue(); ok {
		result.IncumbentValue = &v
	}
	for _, inc := range c.Incumbents() {
		result.Incumbents = append(result.Incumbents, LedgerEntry{
			Config:     inc.Config.Dictionary(),
			Objectives: []float64{inc.Perf.Cost},
		})
	}
	if result.Metrics, err = rec.samples(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to gather metrics", err)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, c.String())
	if result.ConfigCounter != result.Count {
		fmt.Fprintf(w, "config_counter: %d (replayed %d)\n", result.ConfigCounter, result.Count)
	}
	if result.IncumbentValue == nil {
		fmt.Fprintln(w, "No evaluations.")
	} else {
		fmt.Fprintf(w, "Incumbent value: %g\n", *result.IncumbentValue)
		fmt.Fprintf(w, "Incumbents (%d):\n", len(result.Incumbents))
		for _, inc := range result.Incumbents {
			fmt.Fprintf(w, "  %s\n", inc)
		}
	}
	writeSamples(w, result.Metrics)
	return nil
}
