package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"recyclehub/internal/services"
)

// Exit codes for CLI commands
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the ledger refused the operation
	ExitCommandError = 2 // bad arguments, config or store unreachable
)

// GetExitCode maps an error to the process exit code. Service refusals are
// failures; everything else is a command error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Type != services.ErrorTypeInternal &&
		serviceErr.Type != services.ErrorTypeUnavailable {
		return ExitFailure
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output, kept off stdout so JSON stays parseable
	Verbose   bool
}

// CLIResponse is the JSON output envelope
type CLIResponse struct {
	Status string      `json:"status"` // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError is the error part of a JSON response
type CLIError struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Success prints data; text is what text mode shows
func (f *OutputFormatter) Success(data interface{}, text string) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Error prints err and returns it so callers can `return f.Error(err)`
func (f *OutputFormatter) Error(err error) error {
	if f.Format == "json" {
		cliErr := &CLIError{Type: services.ErrorTypeInternal, Message: err.Error()}
		var serviceErr *services.ServiceError
		if errors.As(err, &serviceErr) {
			cliErr.Type = serviceErr.Type
			cliErr.Code = serviceErr.Code
			cliErr.Message = serviceErr.Message
		}
		if werr := f.writeJSON(CLIResponse{Status: "error", Error: cliErr}); werr != nil {
			return werr
		}
	}
	return err
}

// VerboseLog prints to ErrWriter when verbose output is on
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) writeJSON(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
