package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitOK     = 0 // command succeeded
	ExitFailed = 1 // invalid units, failed scenario
	ExitUsage  = 2 // bad flags or arguments, missing paths, unreadable database
)

// ExitError carries the exit code a failed command should end the process
// with.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// exitErrorf builds an ExitError; %w in format keeps the cause reachable.
func exitErrorf(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps err to a process exit code. Errors without an ExitError in
// their chain map to ExitFailed.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailed
}

// Envelope wraps every JSON result.
type Envelope struct {
	Status string   `json:"status"` // "ok" or "error"
	Data   any      `json:"data,omitempty"`
	Error  *Failure `json:"error,omitempty"`
}

// Failure is the error member of an Envelope.
type Failure struct {
	Code    string `json:"code"` // load error code, e.g. "E004"
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Printer writes command results as text or as a JSON Envelope.
// Diagnostics go to Diag so they never mix with JSON on Out.
type Printer struct {
	JSON    bool
	Out     io.Writer
	Diag    io.Writer // defaults to Out
	Verbose bool
}

// Result writes a successful result: text as is, or data in an Envelope.
func (p *Printer) Result(data any, text string) error {
	if p.JSON {
		return json.NewEncoder(p.Out).Encode(Envelope{Status: "ok", Data: data})
	}
	_, err := io.WriteString(p.Out, text)
	return err
}

// Fail writes a failure. Text mode shows details only when verbose.
func (p *Printer) Fail(code, message string, details any) error {
	if p.JSON {
		return json.NewEncoder(p.Out).Encode(Envelope{
			Status: "error",
			Error:  &Failure{Code: code, Message: message, Details: details},
		})
	}
	if _, err := fmt.Fprintf(p.Out, "Error [%s]: %s\n", code, message); err != nil {
		return err
	}
	if p.Verbose && details != nil {
		_, err := fmt.Fprintf(p.Out, "Details: %v\n", details)
		return err
	}
	return nil
}

// Debugf writes a diagnostic line when verbose.
func (p *Printer) Debugf(format string, args ...any) {
	if p.Verbose {
		fmt.Fprintf(p.diag(), format+"\n", args...)
	}
}

func (p *Printer) diag() io.Writer {
	if p.Diag != nil {
		return p.Diag
	}
	return p.Out
}
