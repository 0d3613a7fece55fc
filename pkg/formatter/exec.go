package formatter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/yaklabco/weavefmt/internal/logging"
	"github.com/yaklabco/weavefmt/pkg/config"
)

// ExecFormatter runs an external formatter command. Input is passed on
// stdin by default; when the spec sets stdin: false the input is written to
// a temporary file whose path replaces $file in the arguments, and the
// result is read back from that file if the command printed nothing.
type ExecFormatter struct {
	name string
	spec config.FormatterSpec
}

// NewExecFormatter creates an external-process runner.
func NewExecFormatter(name string, spec config.FormatterSpec) *ExecFormatter {
	return &ExecFormatter{name: name, spec: spec}
}

// Name returns the configured formatter name.
func (f *ExecFormatter) Name() string { return f.name }

// Installed reports whether the command resolves on PATH.
func (f *ExecFormatter) Installed() bool {
	_, err := exec.LookPath(f.spec.Cmd)
	return err == nil
}

// Format runs the command and returns its output.
func (f *ExecFormatter) Format(ctx context.Context, source []byte, opts Options) ([]byte, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	useStdin := f.spec.UseStdin()

	var tempPath string
	if !useStdin {
		temp, err := os.CreateTemp("", "weavefmt-*")
		if err != nil {
			return nil, fmt.Errorf("create temp file: %w", err)
		}
		tempPath = temp.Name()
		defer os.Remove(tempPath)

		if _, err := temp.Write(source); err != nil {
			temp.Close()
			return nil, fmt.Errorf("write temp file: %w", err)
		}
		if err := temp.Close(); err != nil {
			return nil, fmt.Errorf("close temp file: %w", err)
		}
	}

	args := substituteArgs(f.spec.Args, opts, tempPath)

	cmd := exec.CommandContext(ctx, f.spec.Cmd, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if useStdin {
		cmd.Stdin = bytes.NewReader(source)
	}

	err := cmd.Run()

	logger.Debug("formatter ran",
		logging.FieldFormatter, f.name,
		logging.FieldLanguage, opts.Language,
		logging.FieldPrintWidth, opts.PrintWidth,
		logging.FieldDuration, time.Since(start))

	if err != nil {
		var execErr *exec.Error
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(ctx.Err(), context.Canceled):
			return nil, &RunError{Kind: KindTimeout, Formatter: f.name, Err: ctx.Err()}
		case errors.As(err, &execErr):
			return nil, &RunError{Kind: KindNotInstalled, Formatter: f.name, Err: err}
		default:
			return nil, &RunError{
				Kind:      KindNonZeroExit,
				Formatter: f.name,
				Stderr:    stderr.String(),
				Err:       err,
			}
		}
	}

	if f.spec.FailOnStderr != nil && *f.spec.FailOnStderr && stderr.Len() > 0 {
		return nil, &RunError{
			Kind:      KindNonZeroExit,
			Formatter: f.name,
			Stderr:    stderr.String(),
		}
	}

	result := stdout.Bytes()

	// File-based formatters usually rewrite the file in place.
	if !useStdin && len(result) == 0 {
		rewritten, readErr := os.ReadFile(tempPath)
		if readErr != nil {
			return nil, fmt.Errorf("read temp file after formatting: %w", readErr)
		}
		result = rewritten
	}

	if len(result) == 0 && len(source) > 0 {
		return nil, &RunError{Kind: KindEmptyOutput, Formatter: f.name}
	}

	return result, nil
}
