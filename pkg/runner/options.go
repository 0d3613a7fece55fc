// Package runner provides multi-file formatting orchestration: it discovers
// the files matching a glob under a working directory, fans them out over a
// worker pool, and aggregates deterministic per-file outcomes. The engine
// is reentrant, so documents format in parallel while each document's
// segments stay strictly ordered.
package runner

import "github.com/yaklabco/weavefmt/pkg/config"

// Options controls a multi-file run.
type Options struct {
	// IncludeGlob selects files under WorkingDir, e.g. "**/*.md".
	IncludeGlob string

	// WorkingDir is the base directory for discovery and relative paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// ExcludeGlobs are glob patterns used to skip files or directories.
	ExcludeGlobs []string

	// Write controls whether changed files are written back. Check mode
	// runs with Write false.
	Write bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Config is the resolved configuration for this run.
	Config *config.Config
}
