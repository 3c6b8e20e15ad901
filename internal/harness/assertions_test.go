package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func soResult() *Result {
	r := NewResult()
	v := 3.0
	r.Trace = []TraceEvent{
		{Seq: 1, Label: "A", Objectives: []float64{5}, Accepted: true, Count: 1, IncumbentValues: []float64{5}, FrontSize: 1},
		{Seq: 2, Label: "B", Objectives: []float64{3}, Accepted: true, Count: 2, IncumbentValues: []float64{3}, FrontSize: 1},
		{Seq: 3, Label: "B", Objectives: []float64{1}, Count: 2, IncumbentValues: []float64{3}, FrontSize: 1},
	}
	r.State = State{Count: 2, IncumbentValue: &v, Incumbents: []string{"B"}, Journaled: 2}
	return r
}

func moResult() *Result {
	r := NewResult()
	r.Trace = []TraceEvent{
		{Seq: 1, Label: "P1", Objectives: []float64{1, 5}, Accepted: true, Count: 1},
		{Seq: 2, Label: "P2", Objectives: []float64{5, 1}, Accepted: true, Count: 2},
	}
	r.State = State{
		Count:               2,
		IncumbentValues:     []float64{1, 1},
		Incumbents:          []string{"P1", "P2"},
		Pareto:              []string{"P1", "P2"},
		ObjectiveIncumbents: [][]string{{"P1"}, {"P2"}},
		Hypervolume:         []float64{5, 9.000000000001},
		Journaled:           2,
	}
	return r
}

func TestAssertCount(t *testing.T) {
	assert.NoError(t, assertCount(soResult(), Assertion{Type: AssertCount, Count: 2}))

	err := assertCount(soResult(), Assertion{Type: AssertCount, Count: 3})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "3 accepted evaluations", ae.Expected)
	assert.Equal(t, "2 accepted evaluations", ae.Actual)
}

func TestAssertJournal(t *testing.T) {
	assert.NoError(t, assertJournal(soResult(), Assertion{Type: AssertJournal, Count: 2}))
	assert.Error(t, assertJournal(soResult(), Assertion{Type: AssertJournal, Count: 0}))
}

func TestAssertIncumbentValue(t *testing.T) {
	three, four := 3.0, 4.0
	assert.NoError(t, assertIncumbentValue(soResult(), Assertion{Value: &three}))
	assert.Error(t, assertIncumbentValue(soResult(), Assertion{Value: &four}))

	empty := NewResult()
	err := assertIncumbentValue(empty, Assertion{Value: &three})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no incumbent (empty ledger)")

	assert.NoError(t, assertIncumbentValue(moResult(), Assertion{Values: []float64{1, 1}}))
	assert.Error(t, assertIncumbentValue(moResult(), Assertion{Values: []float64{1}}))
}

func TestAssertLabels_OrderMatters(t *testing.T) {
	r := moResult()
	assert.NoError(t, assertLabels(r, AssertPareto, r.State.Pareto, []string{"P1", "P2"}))
	assert.Error(t, assertLabels(r, AssertPareto, r.State.Pareto, []string{"P2", "P1"}))
}

func TestAssertLabels_NilExpectationMeansEmpty(t *testing.T) {
	r := NewResult()
	assert.NoError(t, assertLabels(r, AssertRejected, r.Rejected(), nil))
}

func TestAssertObjectiveIncumbents(t *testing.T) {
	r := moResult()
	assert.NoError(t, assertObjectiveIncumbents(r, Assertion{Objective: 1, Labels: []string{"P2"}}))

	err := assertObjectiveIncumbents(r, Assertion{Objective: 2, Labels: []string{"P2"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 objectives")
}

func TestAssertHypervolume_Tolerance(t *testing.T) {
	r := moResult()
	assert.NoError(t, assertHypervolume(r, Assertion{Values: []float64{5, 9}}))
	assert.Error(t, assertHypervolume(r, Assertion{Values: []float64{5, 9.1}}))
	assert.Error(t, assertHypervolume(r, Assertion{Values: []float64{5}}))
}

func TestResult_Rejected(t *testing.T) {
	assert.Equal(t, []string{"B"}, soResult().Rejected())
	assert.Equal(t, []string{}, moResult().Rejected())
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	three := 3.0
	errs := EvaluateAssertions(soResult(), []Assertion{
		{Type: AssertCount, Count: 2},
		{Type: AssertIncumbentValue, Value: &three},
		{Type: AssertIncumbents, Labels: []string{"B"}},
		{Type: AssertRejected, Labels: []string{"B"}},
		{Type: AssertJournal, Count: 2},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_SomeFail(t *testing.T) {
	errs := EvaluateAssertions(soResult(), []Assertion{
		{Type: AssertCount, Count: 2},
		{Type: AssertIncumbents, Labels: []string{"A"}},
		{Type: AssertRejected},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "Assertion failed: incumbents")
	assert.Contains(t, errs[1], "Assertion failed: rejected")
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	errs := EvaluateAssertions(soResult(), []Assertion{{Type: "final_state"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown assertion type "final_state"`)
}

func TestEvaluateAssertions_IncumbentValueWithoutExpectation(t *testing.T) {
	errs := EvaluateAssertions(soResult(), []Assertion{{Type: AssertIncumbentValue}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "incumbent_value needs value or values")
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertCount,
		Expected: "3 accepted evaluations",
		Actual:   "2 accepted evaluations",
		Trace: []TraceEvent{
			{Seq: 1, Label: "A", Objectives: []float64{5}, Accepted: true},
			{Seq: 2, Label: "A", Objectives: []float64{4}},
			{Seq: 3, Label: "M", Objectives: []float64{1, 2, 3}, Error: "objective count mismatch"},
		},
	}

	assert.Equal(t, "Assertion failed: count\n"+
		"  Expected: 3 accepted evaluations\n"+
		"  Actual: 2 accepted evaluations\n"+
		"\nFull trace:\n"+
		"  [1] A [5] accepted\n"+
		"  [2] A [4] duplicate\n"+
		"  [3] M [1 2 3] error: objective count mismatch\n",
		err.Error())
}
