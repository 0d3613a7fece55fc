package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/weavefmt/pkg/runner"
)

const (
	wordFile  = "file"
	wordFiles = "files"
)

// FormatCheckSummary renders the check-mode outcome: the dirty file list
// followed by a one-line verdict.
func (s *Styles) FormatCheckSummary(result *runner.Result) string {
	var b strings.Builder

	dirty := result.Dirty()
	for _, path := range dirty {
		b.WriteString(s.Dirty.Render(path))
		b.WriteString("\n")
	}

	if len(dirty) == 0 && !result.HasErrors() {
		b.WriteString(s.Success.Render("All files formatted"))
		b.WriteString(s.Dim.Render(fmt.Sprintf(" (%d checked)", result.Stats.FilesProcessed)))
		b.WriteString("\n")
		return b.String()
	}

	if len(dirty) > 0 {
		fileWord := wordFiles
		if len(dirty) == 1 {
			fileWord = wordFile
		}
		b.WriteString(s.Failure.Render(fmt.Sprintf("%d %s would be reformatted", len(dirty), fileWord)))
		b.WriteString("\n")
	}

	if result.HasErrors() {
		b.WriteString(s.Failure.Render(fmt.Sprintf("%d files errored", result.Stats.FilesErrored)))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatWriteSummary renders the write-mode outcome line.
func (s *Styles) FormatWriteSummary(result *runner.Result) string {
	written := result.Stats.FilesWritten
	fileWord := wordFiles
	if written == 1 {
		fileWord = wordFile
	}

	msg := fmt.Sprintf("formatted %d %s", written, fileWord)
	msg += s.Dim.Render(fmt.Sprintf(" (%d checked)", result.Stats.FilesProcessed))

	if result.HasErrors() {
		msg += ", " + s.Failure.Render(fmt.Sprintf("%d errored", result.Stats.FilesErrored))
	}

	return msg + "\n"
}
