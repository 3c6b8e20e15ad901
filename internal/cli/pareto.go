package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/roach88/evalledger/internal/history"
	"github.com/roach88/evalledger/internal/metrics"
)

// ParetoOptions holds flags for the pareto command.
type ParetoOptions struct {
	*RootOptions
	Space    string // study directory
	RefPoint string // comma-separated; overrides the study's reference point
	TaskID   string
	Metrics  bool
}

// ObjectiveIncumbents lists the configurations tied at one objective's best.
type ObjectiveIncumbents struct {
	Objective  string        `json:"objective"`
	Value      *float64      `json:"value"` // nil until the objective has a value
	Incumbents []LedgerEntry `json:"incumbents"`
}

// ParetoResult summarizes a multi-objective ledger.
type ParetoResult struct {
	TaskID              string                `json:"task_id"`
	Count               int                   `json:"count"`
	Front               []LedgerEntry         `json:"front"`
	ObjectiveIncumbents []ObjectiveIncumbents `json:"objective_incumbents"`
	ReferencePoint      []float64             `json:"reference_point,omitempty"`
	Hypervolume         *float64              `json:"hypervolume,omitempty"`
	HypervolumeSeries   []float64             `json:"hypervolume_series,omitempty"`
	Metrics             []metrics.Sample      `json:"metrics,omitempty"`
}

// NewParetoCommand creates the pareto command.
func NewParetoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParetoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pareto <snapshot>",
		Short: "Rebuild the Pareto front of a multi-objective snapshot",
		Long: `Load a multi-objective snapshot, replay it into a fresh ledger and print
the Pareto front, the incumbents of each objective and, when a reference
point is known, the hypervolume after every insertion.

The reference point comes from --ref-point or the study's reference_point.

Examples:
  evalledger pareto history_container.json --space ./study
  evalledger pareto history_container.json --space ./study --ref-point 1,100`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPareto(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Space, "space", "", "directory of the CUE study (required)")
	_ = cmd.MarkFlagRequired("space")
	cmd.Flags().StringVar(&opts.RefPoint, "ref-point", "", "reference point, comma-separated (overrides the study)")
	cmd.Flags().StringVar(&opts.TaskID, "task-id", "", "task id for the rebuilt ledger (default: new UUIDv7)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "include ledger metrics gathered during replay")

	return cmd
}

func runPareto(opts *ParetoOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	study, sp, err := loadSpace(opts.Space)
	if err != nil {
		code, message := loadErrorCode(err)
		return formatter.Fail(ExitCommandError, code, message, nil)
	}

	ref := study.ReferencePoint
	if opts.RefPoint != "" {
		if ref, err = parseVector(opts.RefPoint); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid --ref-point", err)
		}
	}

	snap, err := history.ReadMOSnapshot(path, decoderFor(sp))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSnapshot, "failed to read snapshot", err)
	}
	formatter.VerboseLog("Read %d record(s) from %s", len(snap.Records), path)

	rec := newMetricsRecorder(opts.Metrics)
	ledgerOpts := append([]history.Option{history.WithLogger(newLogger(opts.RootOptions, cmd))}, rec.options()...)
	if ref != nil {
		ledgerOpts = append(ledgerOpts, history.WithReferencePoint(ref))
	}
	c := history.NewMOContainer(opts.TaskID, ledgerOpts...)
	if err := c.Replay(snap.Records); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSnapshot, "failed to replay snapshot", err)
	}
	if n := c.NumObjectives(); n > 0 && n != len(study.Objectives) {
		return formatter.Fail(ExitCommandError, ErrCodeSnapshot,
			fmt.Sprintf("snapshot has %d objectives, study declares %d", n, len(study.Objectives)), nil)
	}

	result := ParetoResult{
		TaskID:              c.TaskID(),
		Count:               c.Count(),
		Front:               moEntries(c.Pareto()),
		ObjectiveIncumbents: []ObjectiveIncumbents{},
		ReferencePoint:      c.ReferencePoint(),
		HypervolumeSeries:   c.HypervolumeSeries(),
	}
	values := c.ObjectiveIncumbentValues()
	for i, entries := range c.ObjectiveIncumbents() {
		oi := ObjectiveIncumbents{Objective: study.Objectives[i], Incumbents: []LedgerEntry{}}
		if v := values[i]; !math.IsNaN(v) {
			oi.Value = &v
		}
		for _, e := range entries {
			oi.Incumbents = append(oi.Incumbents, LedgerEntry{Config: e.Config.Dictionary(), Objectives: e.Objectives})
		}
		result.ObjectiveIncumbents = append(result.ObjectiveIncumbents, oi)
	}
	if ref != nil && !c.Empty() {
		hv, err := c.ComputeHypervolume(nil)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to compute hypervolume", err)
		}
		result.Hypervolume = &hv
	}
	if result.Metrics, err = rec.samples(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to gather metrics", err)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, c.String())
	fmt.Fprintf(w, "Pareto front (%d):\n", len(result.Front))
	for _, e := range result.Front {
		fmt.Fprintf(w, "  %s\n", e)
	}
	for _, oi := range result.ObjectiveIncumbents {
		if oi.Value == nil {
			fmt.Fprintf(w, "Best %s: none\n", oi.Objective)
			continue
		}
		fmt.Fprintf(w, "Best %s: %g (%d tied)\n", oi.Objective, *oi.Value, len(oi.Incumbents))
	}
	if result.Hypervolume != nil {
		fmt.Fprintf(w, "Hypervolume: %g (reference point %v)\n", *result.Hypervolume, result.ReferencePoint)
	}
	writeSamples(w, result.Metrics)
	return nil
}

func moEntries(records []history.MORecord) []LedgerEntry {
	out := make([]LedgerEntry, len(records))
	for i, r := range records {
		out[i] = LedgerEntry{Config: r.Config.Dictionary(), Objectives: r.Objectives}
	}
	return out
}
