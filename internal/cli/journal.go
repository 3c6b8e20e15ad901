package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/evalledger/internal/history"
	"github.com/roach88/evalledger/internal/store"
)

// JournalOptions holds flags shared by the journal subcommands.
type JournalOptions struct {
	*RootOptions
	Database string
	Space    string // study directory
	TaskID   string
	Out      string
}

// ImportResult reports a snapshot import.
type ImportResult struct {
	TaskID      string `json:"task_id"`
	CreatedTask bool   `json:"created_task"`
	Offered     int    `json:"offered"`
	Journaled   int    `json:"journaled"`
}

// ExportResult reports a journal export.
type ExportResult struct {
	TaskID  string `json:"task_id"`
	Records int    `json:"records"`
	Path    string `json:"path"`
}

// TaskSummary describes one journaled task.
type TaskSummary struct {
	ID             string    `json:"id"`
	Objectives     []string  `json:"objectives"`
	ReferencePoint []float64 `json:"reference_point,omitempty"`
	Evaluations    int       `json:"evaluations"`
}

// NewJournalCommand creates the journal command group.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Move ledgers between snapshots and the SQLite journal",
		Long: `The journal is an append-only SQLite record of accepted evaluations,
one row per configuration per task, in insertion order.

Examples:
  evalledger journal import history_container.json --db ./ledger.db --space ./study
  evalledger journal export --db ./ledger.db --task-id svm-1 --space ./study --out restored.json
  evalledger journal list --db ./ledger.db`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	importCmd := &cobra.Command{
		Use:           "import <snapshot>",
		Short:         "Replay a snapshot into the journal",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournalImport(opts, args[0], cmd)
		},
	}
	importCmd.Flags().StringVar(&opts.Space, "space", "", "directory of the CUE study (required)")
	_ = importCmd.MarkFlagRequired("space")
	importCmd.Flags().StringVar(&opts.TaskID, "task-id", "", "task to import into (default: the snapshot's, or a new UUIDv7)")

	exportCmd := &cobra.Command{
		Use:           "export",
		Short:         "Rebuild a ledger from the journal and save it as a snapshot",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournalExport(opts, cmd)
		},
	}
	exportCmd.Flags().StringVar(&opts.Space, "space", "", "directory of the CUE study (required)")
	_ = exportCmd.MarkFlagRequired("space")
	exportCmd.Flags().StringVar(&opts.TaskID, "task-id", "", "task to export (required)")
	_ = exportCmd.MarkFlagRequired("task-id")
	exportCmd.Flags().StringVar(&opts.Out, "out", history.DefaultSnapshotFile, "snapshot file to write")

	listCmd := &cobra.Command{
		Use:           "list",
		Short:         "List journaled tasks",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournalList(opts, cmd)
		},
	}

	cmd.AddCommand(importCmd, exportCmd, listCmd)
	return cmd
}

func runJournalImport(opts *JournalOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	study, sp, err := loadSpace(opts.Space)
	if err != nil {
		code, message := loadErrorCode(err)
		return formatter.Fail(ExitCommandError, code, message, nil)
	}
	decode := decoderFor(sp)

	// Read the snapshot before touching the database
	var (
		soRecords []history.Record
		moRecords []history.MORecord
		taskID    = opts.TaskID
	)
	if study.MultiObjective() {
		snap, err := history.ReadMOSnapshot(path, decode)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeSnapshot, "failed to read snapshot", err)
		}
		moRecords = snap.Records
	} else {
		snap, err := history.ReadSnapshot(path, decode)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeSnapshot, "failed to read snapshot", err)
		}
		soRecords = snap.Records
		if taskID == "" {
			taskID = snap.TaskID
		}
	}
	if taskID == "" {
		taskID = history.NewTaskID()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to open database", err)
	}
	defer st.Close()

	created, err := ensureTask(ctx, st, taskID, study.Objectives, study.ReferencePoint)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to register task", err)
	}

	// Rebuild the ledger from what is already journaled so seqs continue
	// and configurations already present are rejected as duplicates.
	logger := newLogger(opts.RootOptions, cmd)
	recorder := store.NewRecorder(ctx, st, logger)
	ledgerOpts := []history.Option{history.WithLogger(logger), history.WithObserver(recorder)}
	offered := len(soRecords) + len(moRecords)

	if study.MultiObjective() {
		existing, err := st.LoadMORecords(ctx, taskID, decode)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to load journal", err)
		}
		if study.ReferencePoint != nil {
			ledgerOpts = append(ledgerOpts, history.WithReferencePoint(study.ReferencePoint))
		}
		c := history.NewMOContainer(taskID, ledgerOpts...)
		if err := c.Replay(existing); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to replay journal", err)
		}
		if err := c.Replay(moRecords); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeSnapshot, "failed to replay snapshot", err)
		}
	} else {
		existing, err := st.LoadRecords(ctx, taskID, decode)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to load journal", err)
		}
		c := history.NewContainer(taskID, ledgerOpts...)
		c.Replay(existing)
		c.Replay(soRecords)
	}
	if err := recorder.Err(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to journal evaluations", err)
	}

	journaled, err := st.CountEvaluations(ctx, taskID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to count evaluations", err)
	}

	result := ImportResult{TaskID: taskID, CreatedTask: created, Offered: offered, Journaled: journaled}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Imported %d record(s) into task %s (%d journaled)\n",
		result.Offered, result.TaskID, result.Journaled)
	return nil
}

// ensureTask registers the task, or checks that an existing one records
// the same objectives.
func ensureTask(ctx context.Context, st *store.Store, taskID string, objectives []string, ref []float64) (bool, error) {
	tasks, err := st.ListTasks(ctx)
	if err != nil {
		return false, err
	}
	created, err := st.CreateTask(ctx, store.Task{
		ID:             taskID,
		Objectives:     objectives,
		ReferencePoint: ref,
		CreatedSeq:     int64(len(tasks) + 1),
	})
	if err != nil || created {
		return created, err
	}

	existing, err := st.ReadTask(ctx, taskID)
	if err != nil {
		return false, err
	}
	if !slices.Equal(existing.Objectives, objectives) {
		return false, fmt.Errorf("task %s records objectives %v, study declares %v: %w",
			taskID, existing.Objectives, objectives, history.ErrObjectiveMismatch)
	}
	return false, nil
}

func runJournalExport(opts *JournalOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	_, sp, err := loadSpace(opts.Space)
	if err != nil {
		code, message := loadErrorCode(err)
		return formatter.Fail(ExitCommandError, code, message, nil)
	}
	decode := decoderFor(sp)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to open database", err)
	}
	defer st.Close()

	task, err := st.ReadTask(ctx, opts.TaskID)
	if errors.Is(err, store.ErrTaskNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("task not found: %s", opts.TaskID), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to read task", err)
	}

	logger := newLogger(opts.RootOptions, cmd)
	var records int
	if task.MultiObjective() {
		loaded, err := st.LoadMORecords(ctx, task.ID, decode)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to load journal", err)
		}
		ledgerOpts := []history.Option{history.WithLogger(logger)}
		if task.ReferencePoint != nil {
			ledgerOpts = append(ledgerOpts, history.WithReferencePoint(task.ReferencePoint))
		}
		c := history.NewMOContainer(task.ID, ledgerOpts...)
		if err := c.Replay(loaded); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to replay journal", err)
		}
		if err := c.SaveJSON(opts.Out); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write snapshot", err)
		}
		records = c.Count()
	} else {
		loaded, err := st.LoadRecords(ctx, task.ID, decode)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to load journal", err)
		}
		c := history.NewContainer(task.ID, history.WithLogger(logger))
		c.Replay(loaded)
		if err := c.SaveJSON(opts.Out); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write snapshot", err)
		}
		records = c.Count()
	}

	result := ExportResult{TaskID: task.ID, Records: records, Path: opts.Out}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Exported %d record(s) of task %s to %s\n", result.Records, result.TaskID, result.Path)
	return nil
}

func runJournalList(opts *JournalOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to open database", err)
	}
	defer st.Close()

	tasks, err := st.ListTasks(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to list tasks", err)
	}

	summaries := make([]TaskSummary, 0, len(tasks))
	for _, task := range tasks {
		n, err := st.CountEvaluations(ctx, task.ID)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to count evaluations", err)
		}
		summaries = append(summaries, TaskSummary{
			ID:             task.ID,
			Objectives:     task.Objectives,
			ReferencePoint: task.ReferencePoint,
			Evaluations:    n,
		})
	}

	if formatter.JSON() {
		return formatter.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "No tasks found in database.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(formatter.Writer, "%s  objectives=%v  evaluations=%d\n", s.ID, s.Objectives, s.Evaluations)
	}
	return nil
}
