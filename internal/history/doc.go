// Package history is the evaluation ledger of an optimization run.
//
// A Container records (configuration, performance) pairs for a
// single-objective run and tracks the incumbents: every configuration tied
// at the best cost seen so far. An MOContainer does the same for vectors of
// objectives and additionally maintains
//   - the Pareto front of non-dominated vectors, updated incrementally,
//   - one incumbent tracker per objective,
//   - a hypervolume series, one value per accepted insertion, when a
//     reference point is configured.
//
// # Invariants
//
//   - Configurations are keyed by value (Configuration.Key). Re-adding a
//     configuration is a logged no-op: the first insertion wins.
//   - All objectives are minimized.
//   - Weak domination (u[j] <= v[j] for every j) decides Pareto membership,
//     so of two equal vectors only the earlier one stays on the front.
//
// Containers are single-writer and hold no locks. Callers that share one
// across goroutines must serialize access themselves.
package history
