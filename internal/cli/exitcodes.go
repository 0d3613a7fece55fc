package cli

import (
	"errors"
)

// Exit codes for weavefmt.
const (
	// ExitSuccess indicates successful execution or a clean check.
	ExitSuccess = 0

	// ExitCheckDirty indicates check mode detected a file that would change.
	ExitCheckDirty = 1

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 2

	// ExitFormatterError indicates an unrecoverable formatter or engine
	// error on a root document.
	ExitFormatterError = 3

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 4
)

// Sentinel errors the command layer signals outcomes with.
var (
	// ErrCheckDirty is returned when check mode finds files that would change.
	ErrCheckDirty = errors.New("files would be reformatted")

	// ErrUsage is returned for invalid invocations.
	ErrUsage = errors.New("invalid invocation")

	// ErrConfig wraps configuration loading and validation failures.
	ErrConfig = errors.New("configuration error")
)

// ExitCodeForError maps an error from command execution to the process
// exit code.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrCheckDirty):
		return ExitCheckDirty
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	default:
		return ExitFormatterError
	}
}
