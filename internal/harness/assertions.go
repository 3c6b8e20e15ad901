package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// floatTolerance absorbs rounding in hypervolume sums.
const floatTolerance = 1e-9

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		outcome := "accepted"
		switch {
		case event.Error != "":
			outcome = "error: " + event.Error
		case !event.Accepted:
			outcome = "duplicate"
		}
		fmt.Fprintf(&buf, "  [%d] %s %v %s\n", event.Seq, event.Label, event.Objectives, outcome)
	}

	return buf.String()
}

// assertCount checks the number of accepted insertions.
func assertCount(result *Result, assertion Assertion) error {
	if result.State.Count != assertion.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d accepted evaluations", assertion.Count),
			Actual:   fmt.Sprintf("%d accepted evaluations", result.State.Count),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertJournal checks the number of evaluations written through the store.
func assertJournal(result *Result, assertion Assertion) error {
	if result.State.Journaled != assertion.Count {
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("%d journaled evaluations", assertion.Count),
			Actual:   fmt.Sprintf("%d journaled evaluations", result.State.Journaled),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertIncumbentValue checks the best cost, or the per-objective best
// values of a multi-objective run.
func assertIncumbentValue(result *Result, assertion Assertion) error {
	if assertion.Values != nil {
		if !floatsEqual(result.State.IncumbentValues, assertion.Values) {
			return &AssertionError{
				Type:     AssertIncumbentValue,
				Expected: fmt.Sprintf("%v", assertion.Values),
				Actual:   fmt.Sprintf("%v", result.State.IncumbentValues),
				Trace:    result.Trace,
			}
		}
		return nil
	}

	if result.State.IncumbentValue == nil {
		return &AssertionError{
			Type:     AssertIncumbentValue,
			Expected: fmt.Sprintf("%v", *assertion.Value),
			Actual:   "no incumbent (empty ledger)",
			Trace:    result.Trace,
		}
	}
	if !floatEqual(*result.State.IncumbentValue, *assertion.Value) {
		return &AssertionError{
			Type:     AssertIncumbentValue,
			Expected: fmt.Sprintf("%v", *assertion.Value),
			Actual:   fmt.Sprintf("%v", *result.State.IncumbentValue),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertLabels compares an ordered label list.
func assertLabels(result *Result, kind string, actual, expected []string) error {
	if expected == nil {
		expected = []string{}
	}
	if !slices.Equal(actual, expected) {
		return &AssertionError{
			Type:     kind,
			Expected: fmt.Sprintf("%v", expected),
			Actual:   fmt.Sprintf("%v", actual),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertObjectiveIncumbents checks the tied incumbents of one objective.
func assertObjectiveIncumbents(result *Result, assertion Assertion) error {
	per := result.State.ObjectiveIncumbents
	if assertion.Objective >= len(per) {
		return &AssertionError{
			Type:     AssertObjectiveIncumbents,
			Expected: fmt.Sprintf("objective %d", assertion.Objective),
			Actual:   fmt.Sprintf("%d objectives", len(per)),
			Trace:    result.Trace,
		}
	}
	return assertLabels(result, AssertObjectiveIncumbents, per[assertion.Objective], assertion.Labels)
}

// assertHypervolume checks the full hypervolume series.
func assertHypervolume(result *Result, assertion Assertion) error {
	if !floatsEqual(result.State.Hypervolume, assertion.Values) {
		return &AssertionError{
			Type:     AssertHypervolume,
			Expected: fmt.Sprintf("%v", assertion.Values),
			Actual:   fmt.Sprintf("%v", result.State.Hypervolume),
			Trace:    result.Trace,
		}
	}
	return nil
}

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}

func floatsEqual(a, b []float64) bool {
	return slices.EqualFunc(a, b, floatEqual)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCount:
			err = assertCount(result, assertion)
		case AssertJournal:
			err = assertJournal(result, assertion)
		case AssertIncumbentValue:
			if assertion.Value == nil && assertion.Values == nil {
				err = fmt.Errorf("assertion[%d]: incumbent_value needs value or values", i)
			} else {
				err = assertIncumbentValue(result, assertion)
			}
		case AssertIncumbents:
			err = assertLabels(result, AssertIncumbents, result.State.Incumbents, assertion.Labels)
		case AssertPareto:
			err = assertLabels(result, AssertPareto, result.State.Pareto, assertion.Labels)
		case AssertObjectiveIncumbents:
			err = assertObjectiveIncumbents(result, assertion)
		case AssertHypervolume:
			err = assertHypervolume(result, assertion)
		case AssertRejected:
			err = assertLabels(result, AssertRejected, result.Rejected(), assertion.Labels)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
