// Package harness runs ledger conformance scenarios.
//
// A scenario feeds a sequence of evaluations to a fresh ledger and then
// asserts on the incumbents, the Pareto front, the hypervolume series and
// the journal. Each run also records a trace, one event per Add call,
// that can be compared against a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	reference_point: [6, 6]     # optional, multi-objective only
//	space:                      # optional; labels identify configs otherwise
//	  lr: { type: float, lower: 0.001, upper: 1, log: true }
//	evaluations:
//	  - label: A
//	    config: { lr: 0.01 }    # required when space is set
//	    cost: 5                 # or objectives: [1, 5]
//	assertions:
//	  - type: incumbents
//	    labels: [A]
//
// # Assertion Types
//
//   - count: number of accepted evaluations
//   - journal: number of evaluations written through the store
//   - incumbent_value: best cost (value) or per-objective bests (values)
//   - incumbents: tied incumbents, or the Pareto set for multi-objective runs
//   - pareto: Pareto set in insertion order
//   - objective_incumbents: tied incumbents of one objective
//   - hypervolume: the hypervolume after each accepted insertion
//   - rejected: labels of evaluations that were not accepted
//
// # Deterministic Testing
//
// The harness uses:
//   - Fixed task IDs (scenario.task_id or DefaultTaskID)
//   - Deterministic logical clock (testutil.DeterministicClock) for trace seqs
//   - In-memory SQLite database (isolated per run)
//
// This ensures identical traces across runs for golden file comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/tied_incumbents.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
