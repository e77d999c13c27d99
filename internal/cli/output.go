package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/FireRat666/Banter-Reversi/internal/coordinator"
	"github.com/FireRat666/Banter-Reversi/internal/game"
)

// Process exit statuses.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the game said no: rejected move, missing game, failed scenario
	ExitCommandError = 2 // the command could not run: flags, config, store
)

// Codes for JSON error responses that carry no sync or engine code.
const (
	CodeCommand        = "E_COMMAND"
	CodeFailure        = "E_FAILURE"
	CodeScenarioFailed = "E_SCENARIO_FAILED"
)

// ExitError carries the exit status a command failed with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit status. Errors that are not
// ExitErrors count as ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode names the most specific cause of err for JSON responses: a
// sync or engine code when one is wrapped, else a code for the exit status.
func ErrorCode(err error) string {
	var se *coordinator.SyncError
	if errors.As(err, &se) {
		return string(se.Code)
	}
	var ge *game.Error
	if errors.As(err, &ge) {
		return string(ge.Code)
	}
	if GetExitCode(err) == ExitCommandError {
		return CodeCommand
	}
	return CodeFailure
}

// CLIResponse is the envelope of every JSON document a command prints.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError describes a failed command in a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or JSON. Diagnostics go
// to ErrWriter, falling back to Writer, so JSON on Writer stays parseable.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

func (f *OutputFormatter) isJSON() bool { return f.Format == "json" }

func (f *OutputFormatter) diag() io.Writer {
	if f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}

// Success prints data: an "ok" envelope in JSON, its default format in text.
func (f *OutputFormatter) Success(data any) error {
	if f.isJSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error prints an error to Writer. Text output shows details only when
// verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.isJSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	if _, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message); err != nil {
		return err
	}
	if f.Verbose && details != nil {
		_, err := fmt.Fprintf(f.Writer, "Details: %v\n", details)
		return err
	}
	return nil
}

// Report prints a failed command's error. JSON goes to Writer so scripts
// read a single document from stdout; text goes to the diagnostic writer.
func (f *OutputFormatter) Report(err error) {
	out := *f
	if !f.isJSON() {
		out.Writer = f.diag()
	}
	_ = out.Error(ErrorCode(err), err.Error(), nil)
}

// VerboseLog prints a diagnostic line when verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.diag(), format+"\n", args...)
	}
}
