package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitSuccess      = 0 // all scenarios passed
	ExitFailure      = 1 // at least one scenario failed
	ExitCommandError = 2 // the run could not start
)

// Problem kinds reported in the JSON envelope.
const (
	KindGeneric = "E001"
	KindConfig  = "E002" // config could not be loaded or is invalid
	KindSetup   = "E003" // suite could not be set up
	KindFailed  = "E004" // scenarios failed
)

// ExitError ends a command with Code. Kind classifies it in JSON output.
type ExitError struct {
	Code int
	Kind string
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func exitErrorf(code int, kind, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps err to a process exit code. Errors that are not an
// ExitError are command errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// Counts tallies the scenarios of a run.
type Counts struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// envelope is the single JSON document a command writes to stdout.
type envelope struct {
	Status  string   `json:"status"` // ok, failed or error
	Data    any      `json:"data,omitempty"`
	Summary *Counts  `json:"summary,omitempty"`
	Error   *problem `json:"error,omitempty"`
}

type problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Printer writes command results to Out, as text or as one JSON envelope.
// Diag receives everything else so Out stays machine readable.
type Printer struct {
	JSON    bool
	Out     io.Writer
	Diag    io.Writer
	Verbose bool
}

func newPrinter(opts *RootOptions, cmd *cobra.Command) *Printer {
	return &Printer{
		JSON:    opts.Format == "json",
		Out:     cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: opts.Verbose,
	}
}

// Result prints data with status ok. Text output uses data's String method
// when it has one.
func (p *Printer) Result(data any) error {
	if p.JSON {
		return p.encode(envelope{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(p.Out, data)
	return err
}

// Summary prints a finished run. Its status is failed when any scenario
// failed.
func (p *Printer) Summary(s RunSummary) error {
	if !p.JSON {
		_, err := fmt.Fprintln(p.Out, s)
		return err
	}
	status := "ok"
	if s.Counts.Failed > 0 {
		status = "failed"
	}
	counts := s.Counts
	return p.encode(envelope{Status: status, Data: s.Scenarios, Summary: &counts})
}

// Problem reports a command error. Text output goes to Diag; the unwrapped
// cause is added when verbose.
func (p *Printer) Problem(e *ExitError) error {
	kind := e.Kind
	if kind == "" {
		kind = KindGeneric
	}
	if p.JSON {
		return p.encode(envelope{Status: "error", Error: &problem{Code: kind, Message: e.Error()}})
	}
	fmt.Fprintf(p.Diag, "error [%s]: %v\n", kind, e)
	if cause := errors.Unwrap(e.Err); p.Verbose && cause != nil {
		fmt.Fprintf(p.Diag, "  cause: %v\n", cause)
	}
	return nil
}

func (p *Printer) encode(v envelope) error {
	return json.NewEncoder(p.Out).Encode(v)
}
