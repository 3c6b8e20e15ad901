package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/evalledger/internal/space"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
evaluations:
  - label: A
    cost: 5
  - label: B
    cost: 3
    time: 1.5
    status: failed
assertions:
  - type: incumbents
    labels: [B]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.False(t, scenario.MultiObjective())
	require.Len(t, scenario.Evaluations, 2)
	assert.Equal(t, "B", scenario.Evaluations[1].Label)
	assert.Equal(t, 3.0, *scenario.Evaluations[1].Cost)
	assert.Equal(t, 1.5, scenario.Evaluations[1].Time)
	assert.Equal(t, "failed", scenario.Evaluations[1].Status)
	assert.Equal(t, []string{"B"}, scenario.Assertions[0].Labels)
}

func TestLoadScenario_SpaceAndObjectives(t *testing.T) {
	path := writeScenario(t, `
name: mo_space
description: "Multi-objective with an inline space"
reference_point: [10, 10]
space:
  depth: { type: int, lower: 1, upper: 8 }
  kernel: { type: categorical, choices: [rbf, poly] }
evaluations:
  - label: shallow
    config: { depth: 2, kernel: rbf }
    objectives: [1, 9]
assertions:
  - type: hypervolume
    values: [9]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.True(t, scenario.MultiObjective())
	assert.Equal(t, []float64{10, 10}, scenario.ReferencePoint)
	require.Contains(t, scenario.Space, "depth")
	assert.Equal(t, space.KindInt, scenario.Space["depth"].Type)
	assert.Equal(t, 8.0, scenario.Space["depth"].Upper)
	assert.Equal(t, []string{"rbf", "poly"}, scenario.Space["kernel"].Choices)
	assert.Equal(t, "rbf", scenario.Evaluations[0].Config["kernel"])
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "Typo in a field name"
evaluations:
  - label: A
    cost: 1
assertion:
  - type: count
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Bundled(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: d
evaluations: [{label: A, cost: 1}]
assertions: [{type: count, count: 1}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: n
evaluations: [{label: A, cost: 1}]
assertions: [{type: count, count: 1}]
`,
			wantErr: "description is required",
		},
		{
			name: "no evaluations",
			content: `
name: n
description: d
assertions: [{type: count, count: 0}]
`,
			wantErr: "evaluations list is required",
		},
		{
			name: "no assertions",
			content: `
name: n
description: d
evaluations: [{label: A, cost: 1}]
`,
			wantErr: "assertions list is required",
		},
		{
			name: "missing label",
			content: `
name: n
description: d
evaluations: [{cost: 1}]
assertions: [{type: count, count: 1}]
`,
			wantErr: "evaluations[0]: label is required",
		},
		{
			name: "mixed cost and objectives",
			content: `
name: n
description: d
evaluations:
  - {label: A, cost: 1}
  - {label: B, objectives: [1, 2]}
assertions: [{type: count, count: 1}]
`,
			wantErr: "evaluations[1]: cost is required",
		},
		{
			name: "cost on multi-objective step",
			content: `
name: n
description: d
evaluations:
  - {label: A, objectives: [1, 2]}
  - {label: B, objectives: [1, 2], cost: 3}
assertions: [{type: count, count: 2}]
`,
			wantErr: "evaluations[1]: cost, time and status are single-objective fields",
		},
		{
			name: "unknown status",
			content: `
name: n
description: d
evaluations: [{label: A, cost: 1, status: exploded}]
assertions: [{type: count, count: 1}]
`,
			wantErr: `unknown status "exploded"`,
		},
		{
			name: "config without space",
			content: `
name: n
description: d
evaluations: [{label: A, cost: 1, config: {x: 1}}]
assertions: [{type: count, count: 1}]
`,
			wantErr: "config needs a space",
		},
		{
			name: "space without config",
			content: `
name: n
description: d
space: {x: {type: int, lower: 0, upper: 3}}
evaluations: [{label: A, cost: 1}]
assertions: [{type: count, count: 1}]
`,
			wantErr: "config is required when a space is declared",
		},
		{
			name: "invalid space",
			content: `
name: n
description: d
space: {x: {type: int, lower: 5, upper: 3}}
evaluations: [{label: A, cost: 1, config: {x: 4}}]
assertions: [{type: count, count: 1}]
`,
			wantErr: "lower bound exceeds upper bound",
		},
		{
			name: "reference point on single objective",
			content: `
name: n
description: d
reference_point: [1]
evaluations: [{label: A, cost: 1}]
assertions: [{type: count, count: 1}]
`,
			wantErr: "reference_point requires objectives",
		},
		{
			name: "unknown assertion",
			content: `
name: n
description: d
evaluations: [{label: A, cost: 1}]
assertions: [{type: trace_contains}]
`,
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name: "pareto on single objective",
			content: `
name: n
description: d
evaluations: [{label: A, cost: 1}]
assertions: [{type: pareto, labels: [A]}]
`,
			wantErr: "pareto requires a multi-objective scenario",
		},
		{
			name: "incumbent value without value",
			content: `
name: n
description: d
evaluations: [{label: A, cost: 1}]
assertions: [{type: incumbent_value}]
`,
			wantErr: "value is required for incumbent_value",
		},
		{
			name: "negative count",
			content: `
name: n
description: d
evaluations: [{label: A, cost: 1}]
assertions: [{type: count, count: -1}]
`,
			wantErr: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
