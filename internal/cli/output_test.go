package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelopeJSON struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Summary *Counts         `json:"summary"`
	Error   *problem        `json:"error"`
}

func decodeEnvelope(t *testing.T, b []byte) envelopeJSON {
	t.Helper()
	var env envelopeJSON
	require.NoError(t, json.Unmarshal(b, &env))
	return env
}

func TestPrinter_JSONResult(t *testing.T) {
	out := &bytes.Buffer{}
	p := &Printer{JSON: true, Out: out}

	require.NoError(t, p.Result(map[string]string{"result": "success"}))

	env := decodeEnvelope(t, out.Bytes())
	assert.Equal(t, "ok", env.Status)
	assert.JSONEq(t, `{"result":"success"}`, string(env.Data))
	assert.Nil(t, env.Summary)
	assert.Nil(t, env.Error)
}

func TestPrinter_JSONSummary(t *testing.T) {
	tests := []struct {
		name   string
		counts Counts
		status string
	}{
		{"all passed", Counts{Total: 2, Passed: 2}, "ok"},
		{"one failed", Counts{Total: 2, Passed: 1, Failed: 1}, "failed"},
		{"nothing ran", Counts{}, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			p := &Printer{JSON: true, Out: out}

			require.NoError(t, p.Summary(RunSummary{Scenarios: []ScenarioSummary{}, Counts: tt.counts}))

			env := decodeEnvelope(t, out.Bytes())
			assert.Equal(t, tt.status, env.Status)
			require.NotNil(t, env.Summary)
			assert.Equal(t, tt.counts, *env.Summary)
			assert.JSONEq(t, `[]`, string(env.Data))
		})
	}
}

func TestPrinter_JSONProblem(t *testing.T) {
	out := &bytes.Buffer{}
	diag := &bytes.Buffer{}
	p := &Printer{JSON: true, Out: out, Diag: diag}

	require.NoError(t, p.Problem(exitErrorf(ExitCommandError, KindConfig, "invalid config")))

	env := decodeEnvelope(t, out.Bytes())
	assert.Equal(t, "error", env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "E002", env.Error.Code)
	assert.Equal(t, "invalid config", env.Error.Message)
	assert.Empty(t, diag.String())
}

func TestPrinter_TextResult(t *testing.T) {
	out := &bytes.Buffer{}
	p := &Printer{Out: out}

	summary := RunSummary{Counts: Counts{Total: 3, Passed: 3}}
	require.NoError(t, p.Summary(summary))
	assert.Equal(t, "3 scenarios (3 passed, 0 failed)\n", out.String())
}

func TestPrinter_TextProblemGoesToDiag(t *testing.T) {
	out := &bytes.Buffer{}
	diag := &bytes.Buffer{}
	p := &Printer{Out: out, Diag: diag, Verbose: true}

	cause := errors.New("features/missing")
	require.NoError(t, p.Problem(exitErrorf(ExitCommandError, KindSetup, "no features: %w", cause)))

	assert.Empty(t, out.String())
	assert.Contains(t, diag.String(), "error [E003]: no features: features/missing")
	assert.Contains(t, diag.String(), "cause: features/missing")
}

func TestPrinter_ProblemWithoutKind(t *testing.T) {
	diag := &bytes.Buffer{}
	p := &Printer{Out: &bytes.Buffer{}, Diag: diag}

	require.NoError(t, p.Problem(&ExitError{Code: ExitCommandError, Err: errors.New("boom")}))
	assert.Contains(t, diag.String(), "error [E001]: boom")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitCommandError, ExitCode(errors.New("unknown flag")))
	assert.Equal(t, ExitFailure, ExitCode(exitErrorf(ExitFailure, KindFailed, "1 of 2 scenarios failed")))

	wrapped := fmt.Errorf("outer: %w", exitErrorf(ExitFailure, KindFailed, "inner: %w", errors.New("cause")))
	assert.Equal(t, ExitFailure, ExitCode(wrapped))
	assert.Equal(t, "outer: inner: cause", wrapped.Error())
}
