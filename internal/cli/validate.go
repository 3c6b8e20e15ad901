package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/evalledger/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid           bool                       `json:"valid"`
	Name            string                     `json:"name,omitempty"`
	Hyperparameters int                        `json:"hyperparameters"`
	Objectives      []string                   `json:"objectives"`
	Errors          []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <study-dir>",
		Short: "Validate a CUE study",
		Long: `Load a CUE study, compile its search space and report every problem.

Checks hyperparameter types, bounds, log scales, defaults and choices, as
well as objective names and the reference point arity. All problems are
reported at once.

Exit codes:
  0 - Study is valid
  1 - Study has validation errors
  2 - Command error (directory not found, CUE does not build, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, studyDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, err := LoadStudy(studyDir)
	if err != nil {
		code, message := loadErrorCode(err)
		return formatter.Fail(ExitCommandError, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, studyDir)

	study := loadResult.Study
	result := ValidationResult{
		Name:            study.Name,
		Hyperparameters: len(study.Definitions),
		Objectives:      study.Objectives,
	}
	for _, def := range study.Definitions {
		formatter.VerboseLog("Validating hyperparameter: %s (%s)", def.Name, def.Type)
	}

	result.Errors = compiler.Validate(study)
	result.Valid = len(result.Errors) == 0
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Study valid: %d hyperparameter(s), objectives %v\n",
		result.Hyperparameters, result.Objectives)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
