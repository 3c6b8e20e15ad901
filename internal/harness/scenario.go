package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/evalledger/internal/history"
	"github.com/roach88/evalledger/internal/space"
)

// Scenario defines a ledger conformance scenario: a sequence of
// evaluations fed to a fresh ledger, followed by assertions on the
// resulting state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// TaskID is the run identifier. Defaults to DefaultTaskID so golden
	// files stay deterministic.
	TaskID string `yaml:"task_id,omitempty"`

	// Space declares the search space inline. When empty, evaluations are
	// identified by their label alone.
	Space map[string]space.Definition `yaml:"space,omitempty"`

	// ReferencePoint enables the hypervolume series for multi-objective
	// scenarios.
	ReferencePoint []float64 `yaml:"reference_point,omitempty"`

	// Evaluations are added to the ledger in order.
	Evaluations []EvaluationStep `yaml:"evaluations"`

	// Assertions validate the final ledger state.
	Assertions []Assertion `yaml:"assertions"`
}

// EvaluationStep is one Add call. Exactly one of Cost and Objectives is
// set, and every step of a scenario uses the same one.
type EvaluationStep struct {
	// Label names the configuration in assertions and traces. Repeating a
	// label re-submits the same configuration.
	Label string `yaml:"label"`

	// Config is the configuration dictionary; required when the scenario
	// declares a space.
	Config map[string]any `yaml:"config,omitempty"`

	// Cost is the single-objective cost.
	Cost *float64 `yaml:"cost,omitempty"`

	// Time and Status complete the single-objective Perf.
	Time   float64 `yaml:"time,omitempty"`
	Status string  `yaml:"status,omitempty"`

	// Objectives is the multi-objective vector.
	Objectives []float64 `yaml:"objectives,omitempty"`
}

// Assertion validates the ledger after all evaluations.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is the expected number (count, journal).
	Count int `yaml:"count,omitempty"`

	// Value is the expected scalar (incumbent_value).
	Value *float64 `yaml:"value,omitempty"`

	// Values is the expected vector (incumbent_value for multi-objective
	// runs, hypervolume).
	Values []float64 `yaml:"values,omitempty"`

	// Labels is the expected set of configurations, in ledger order
	// (incumbents, pareto, objective_incumbents, rejected).
	Labels []string `yaml:"labels,omitempty"`

	// Objective selects the objective index (objective_incumbents).
	Objective int `yaml:"objective,omitempty"`
}

// Assertion type constants.
const (
	AssertCount               = "count"
	AssertIncumbentValue      = "incumbent_value"
	AssertIncumbents          = "incumbents"
	AssertPareto              = "pareto"
	AssertObjectiveIncumbents = "objective_incumbents"
	AssertHypervolume         = "hypervolume"
	AssertRejected            = "rejected"
	AssertJournal             = "journal"
)

// DefaultTaskID is used when a scenario does not name its task.
const DefaultTaskID = "test-task-default"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// MultiObjective reports whether the scenario feeds objective vectors.
func (s *Scenario) MultiObjective() bool {
	return len(s.Evaluations) > 0 && s.Evaluations[0].Objectives != nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Evaluations) == 0 {
		return fmt.Errorf("evaluations list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if len(s.Space) > 0 {
		if _, err := space.FromMap(s.Space); err != nil {
			return fmt.Errorf("space: %w", err)
		}
	}

	multi := s.MultiObjective()
	if !multi && s.ReferencePoint != nil {
		return fmt.Errorf("reference_point requires objectives on every evaluation")
	}

	for i, step := range s.Evaluations {
		if err := validateStep(i, step, multi, len(s.Space) > 0); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, multi); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step EvaluationStep, multi, hasSpace bool) error {
	if step.Label == "" {
		return fmt.Errorf("evaluations[%d]: label is required", index)
	}
	if hasSpace && step.Config == nil {
		return fmt.Errorf("evaluations[%d]: config is required when a space is declared", index)
	}
	if !hasSpace && step.Config != nil {
		return fmt.Errorf("evaluations[%d]: config needs a space", index)
	}

	if multi {
		if step.Objectives == nil {
			return fmt.Errorf("evaluations[%d]: objectives are required (first evaluation set them)", index)
		}
		if step.Cost != nil || step.Time != 0 || step.Status != "" {
			return fmt.Errorf("evaluations[%d]: cost, time and status are single-objective fields", index)
		}
		return nil
	}

	if step.Cost == nil {
		return fmt.Errorf("evaluations[%d]: cost is required (first evaluation set it)", index)
	}
	if step.Objectives != nil {
		return fmt.Errorf("evaluations[%d]: cannot mix cost and objectives", index)
	}
	if step.Status != "" {
		if _, err := history.ParseStatus(step.Status); err != nil {
			return fmt.Errorf("evaluations[%d]: %w", index, err)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, multi bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCount, AssertJournal:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertIncumbentValue:
		if multi && a.Values == nil {
			return fmt.Errorf("assertions[%d]: values is required for multi-objective incumbent_value", index)
		}
		if !multi && a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for incumbent_value", index)
		}
	case AssertIncumbents, AssertRejected:
		// An empty label list is a valid expectation.
	case AssertPareto, AssertHypervolume:
		if !multi {
			return fmt.Errorf("assertions[%d]: %s requires a multi-objective scenario", index, a.Type)
		}
	case AssertObjectiveIncumbents:
		if !multi {
			return fmt.Errorf("assertions[%d]: objective_incumbents requires a multi-objective scenario", index)
		}
		if a.Objective < 0 {
			return fmt.Errorf("assertions[%d]: objective must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
