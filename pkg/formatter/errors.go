package formatter

import (
	"fmt"
)

// ErrorKind classifies a formatter failure.
type ErrorKind string

const (
	// KindNonZeroExit: the command exited nonzero.
	KindNonZeroExit ErrorKind = "non_zero_exit"

	// KindEmptyOutput: the command exited zero but produced no output for
	// non-empty input.
	KindEmptyOutput ErrorKind = "empty_output"

	// KindTimeout: the context deadline expired or the context was
	// cancelled, and the run was aborted (an external child is killed).
	KindTimeout ErrorKind = "timeout"

	// KindNotInstalled: the command could not be found on the host.
	KindNotInstalled ErrorKind = "not_installed"
)

// RunError is a formatter invocation failure. On the root document it is
// surfaced; on an injected segment the segment is preserved verbatim and
// the error only logged.
type RunError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Formatter is the configured formatter name.
	Formatter string

	// Stderr holds captured stderr output, if any.
	Stderr string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	msg := fmt.Sprintf("formatter %s: %s", e.Formatter, e.Kind)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *RunError) Unwrap() error { return e.Err }
