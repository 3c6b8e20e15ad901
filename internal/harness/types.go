package harness

// TraceEvent records one Add call as the ledger reported it.
type TraceEvent struct {
	Seq             int64     `json:"seq"`
	Label           string    `json:"label"`
	Objectives      []float64 `json:"objectives"`
	Accepted        bool      `json:"accepted"`
	Count           int       `json:"count"`
	IncumbentValues []float64 `json:"incumbent_values"`
	FrontSize       int       `json:"front_size"`
	Hypervolume     *float64  `json:"hypervolume,omitempty"`

	// Error is set when Add returned an error; the ledger was not touched.
	Error string `json:"error,omitempty"`
}

// State is the final ledger state, with configurations named by their
// scenario labels.
type State struct {
	Count               int        `json:"count"`
	IncumbentValue      *float64   `json:"incumbent_value,omitempty"`
	IncumbentValues     []float64  `json:"incumbent_values,omitempty"`
	Incumbents          []string   `json:"incumbents"`
	Pareto              []string   `json:"pareto,omitempty"`
	ObjectiveIncumbents [][]string `json:"objective_incumbents,omitempty"`
	Hypervolume         []float64  `json:"hypervolume,omitempty"`
	Journaled           int        `json:"journaled"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Trace contains one event per evaluation, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failures and rejected evaluations.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the ledger after the last evaluation.
	State State `json:"state"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Rejected returns the labels of evaluations the ledger did not accept, in
// order.
func (r *Result) Rejected() []string {
	out := []string{}
	for _, ev := range r.Trace {
		if !ev.Accepted {
			out = append(out, ev.Label)
		}
	}
	return out
}
