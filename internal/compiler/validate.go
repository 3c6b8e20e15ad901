package compiler

import (
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/evalledger/internal/space"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedType = "E100" // unsupported value for validation

	// Hyperparameter errors (E101-E109)
	ErrUnknownKind         = "E101" // type is not float, int, categorical or constant
	ErrInvertedBounds      = "E102" // lower > upper, or non-integral int bounds
	ErrLogBounds           = "E103" // log scale with lower <= 0
	ErrDefaultOutOfRange   = "E104" // numeric default outside [lower, upper]
	ErrNoChoices           = "E105" // categorical without choices
	ErrDuplicateChoice     = "E106" // repeated categorical choice
	ErrDefaultNotChoice    = "E107" // categorical default not among choices
	ErrMissingValue        = "E108" // constant without a usable value
	ErrDuplicateHyperparam = "E109" // two hyperparameters share a name

	// Study errors (E110-E119)
	ErrReferencePointArity = "E110" // reference point length != number of objectives
	ErrDuplicateObjective  = "E111" // repeated objective name
	ErrEmptyName           = "E112" // empty hyperparameter or objective name
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// checkCodes maps the space package's definition problems to codes.
var checkCodes = []struct {
	sentinel error
	code     string
}{
	{space.ErrUnknownKind, ErrUnknownKind},
	{space.ErrInvertedBounds, ErrInvertedBounds},
	{space.ErrLogBounds, ErrLogBounds},
	{space.ErrDefaultOutOfRange, ErrDefaultOutOfRange},
	{space.ErrNoChoices, ErrNoChoices},
	{space.ErrDuplicateChoice, ErrDuplicateChoice},
	{space.ErrDefaultNotChoice, ErrDefaultNotChoice},
	{space.ErrMissingValue, ErrMissingValue},
}

// Validate validates a compiled study or a list of definitions.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch s := v.(type) {
	case *Study:
		return validateStudy(s)
	case Study:
		return validateStudy(&s)
	case []space.Definition:
		return validateDefinitions(s, nil)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type: %T", v),
			Code:    ErrUnsupportedType,
		}}
	}
}

func validateStudy(s *Study) []ValidationError {
	errs := validateDefinitions(s.Definitions, s.positions)

	seen := make(map[string]bool, len(s.Objectives))
	for i, name := range s.Objectives {
		field := fmt.Sprintf("objectives[%d]", i)
		if strings.TrimSpace(name) == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "objective name must be non-empty",
				Code:    ErrEmptyName,
			})
		}
		if seen[name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate objective: %q", name),
				Code:    ErrDuplicateObjective,
			})
		}
		seen[name] = true
	}

	if s.ReferencePoint != nil && len(s.ReferencePoint) != len(s.Objectives) {
		errs = append(errs, ValidationError{
			Field: "reference_point",
			Message: fmt.Sprintf("reference point has %d values for %d objectives",
				len(s.ReferencePoint), len(s.Objectives)),
			Code: ErrReferencePointArity,
		})
	}

	return errs
}

func validateDefinitions(defs []space.Definition, positions map[string]token.Pos) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool, len(defs))
	for i, def := range defs {
		field := fmt.Sprintf("space.%s", def.Name)
		line := 0
		if pos, ok := positions[def.Name]; ok && pos.IsValid() {
			line = pos.Line()
		}

		if strings.TrimSpace(def.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("space[%d]", i),
				Message: "hyperparameter name must be non-empty",
				Code:    ErrEmptyName,
			})
		}
		if names[def.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate hyperparameter: %q", def.Name),
				Code:    ErrDuplicateHyperparam,
				Line:    line,
			})
		}
		names[def.Name] = true

		for _, err := range def.Check() {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: err.Error(),
				Code:    codeFor(err),
				Line:    line,
			})
		}
	}

	return errs
}

func codeFor(err error) string {
	for _, c := range checkCodes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return ErrUnsupportedType
}
