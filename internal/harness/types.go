package harness

import "sync"

// Exit statuses reported by the godog suite.
const (
	StatusPassed       = 0
	StatusFailed       = 1
	StatusInvalidSetup = 2
)

// StepResult is the outcome of one executed step.
type StepResult struct {
	Text   string `json:"text"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Name string `json:"name"`
	URI  string `json:"uri"`

	// Pass is true if every step passed and cleanup succeeded.
	Pass bool `json:"pass"`

	Steps []StepResult `json:"steps"`

	// Errors holds the scenario error and any cleanup error.
	Errors []string `json:"errors,omitempty"`
}

// AddError records an error and marks the scenario failed.
func (s *ScenarioResult) AddError(err string) {
	s.Errors = append(s.Errors, err)
	s.Pass = false
}

// Result is the outcome of a run.
type Result struct {
	// Pass is true if the suite passed.
	Pass bool `json:"pass"`

	// Status is the godog exit status: StatusPassed, StatusFailed or StatusInvalidSetup.
	Status int `json:"status"`

	Scenarios []*ScenarioResult `json:"scenarios"`

	mu sync.Mutex
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{Scenarios: []*ScenarioResult{}}
}

// Failed returns the scenarios that did not pass.
func (r *Result) Failed() []*ScenarioResult {
	var failed []*ScenarioResult
	for _, s := range r.Scenarios {
		if !s.Pass {
			failed = append(failed, s)
		}
	}
	return failed
}

func (r *Result) addScenario(s *ScenarioResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Scenarios = append(r.Scenarios, s)
}
