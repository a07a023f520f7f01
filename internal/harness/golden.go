package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the stable part of a Result: scenario names, outcomes and
// step statuses. Error messages are left out since they may carry
// driver-generated identifiers.
type Snapshot struct {
	Pass      bool               `json:"pass"`
	Scenarios []ScenarioSnapshot `json:"scenarios"`
}

// ScenarioSnapshot is the stable part of a ScenarioResult.
type ScenarioSnapshot struct {
	Name  string         `json:"name"`
	Pass  bool           `json:"pass"`
	Steps []StepSnapshot `json:"steps"`
}

// StepSnapshot is the stable part of a StepResult.
type StepSnapshot struct {
	Text   string `json:"text"`
	Status string `json:"status"`
}

// NewSnapshot builds the snapshot of result.
func NewSnapshot(result *Result) Snapshot {
	snap := Snapshot{Pass: result.Pass, Scenarios: make([]ScenarioSnapshot, 0, len(result.Scenarios))}
	for _, s := range result.Scenarios {
		sc := ScenarioSnapshot{Name: s.Name, Pass: s.Pass, Steps: make([]StepSnapshot, 0, len(s.Steps))}
		for _, st := range s.Steps {
			sc.Steps = append(sc.Steps, StepSnapshot{Text: st.Text, Status: st.Status})
		}
		snap.Scenarios = append(snap.Scenarios, sc)
	}
	return snap
}

// MarshalSnapshot renders the snapshot of result as indented JSON.
func MarshalSnapshot(result *Result) ([]byte, error) {
	data, err := json.MarshalIndent(NewSnapshot(result), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// AssertGolden compares the snapshot of result against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
