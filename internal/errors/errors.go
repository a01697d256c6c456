// Package errors provides typed startup errors with exit codes for
// hostcfgd. Only bootstrap failures reach the process exit path — once the
// event loop is running, applier failures are logged and absorbed, never
// escalated.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes for hostcfgd.
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitConfigError    = 2
	ExitLogDestination = 3
	ExitSocketError    = 4
)

// DaemonError wraps an error with the exit code it should terminate the
// process with.
type DaemonError struct {
	Code    int
	Message string
	Cause   error
}

func (e *DaemonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DaemonError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error.
func (e *DaemonError) ExitCode() int {
	return e.Code
}

// New creates a new DaemonError.
func New(code int, message string) *DaemonError {
	return &DaemonError{Code: code, Message: message}
}

// Wrap wraps an existing error with a DaemonError.
func Wrap(code int, message string, cause error) *DaemonError {
	return &DaemonError{Code: code, Message: message, Cause: cause}
}

// ConfigError returns an error for unusable daemon settings.
func ConfigError(cause error) *DaemonError {
	return Wrap(ExitConfigError, "loading configuration failed", cause)
}

// InvalidLogDestination returns the fatal error for a malformed remote-log
// address.
func InvalidLogDestination(value string) *DaemonError {
	return New(ExitLogDestination, fmt.Sprintf("invalid log destination IP address: %q", value))
}

// SocketError returns an error for comm-channel socket failures.
func SocketError(cause error) *DaemonError {
	return Wrap(ExitSocketError, "comm channel failed", cause)
}

// GetExitCode extracts the exit code from an error chain.
func GetExitCode(err error) int {
	var daemonErr *DaemonError
	if errors.As(err, &daemonErr) {
		return daemonErr.ExitCode()
	}
	return ExitGeneralError
}
