package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/yaklabco/weavefmt/internal/logging"
	"github.com/yaklabco/weavefmt/pkg/engine"
	"github.com/yaklabco/weavefmt/pkg/fsutil"
	"github.com/yaklabco/weavefmt/pkg/langdetect"
)

// Runner orchestrates multi-file formatting over an engine.
type Runner struct {
	// Engine handles per-document formatting.
	Engine *engine.Engine
}

// New creates a new Runner with the given engine.
func New(eng *engine.Engine) *Runner {
	return &Runner{Engine: eng}
}

// Run discovers files under opts and processes them concurrently.
// It returns a deterministic collection of FileOutcome values and aggregate
// stats.
//
// The runner:
//   - Discovers files matching the include/exclude globs
//   - Processes files concurrently using a worker pool
//   - Aggregates results into a single Result with statistics
//   - Respects context cancellation
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(files) {
		jobs = len(files)
	}

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup

	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, opts)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers complete out of order; index by path and rebuild in the
	// discovery order for a deterministic result.
	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

// worker processes files from workCh and sends outcomes to outCh.
func (r *Runner) worker(ctx context.Context, workCh <-chan string, outCh chan<- FileOutcome, opts Options) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := r.processFile(ctx, path, opts)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// processFile formats one file and, when writing is enabled and the bytes
// changed, writes it back atomically.
func (r *Runner) processFile(ctx context.Context, path string, opts Options) FileOutcome {
	logger := logging.FromContext(ctx)
	outcome := FileOutcome{Path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		outcome.Error = fmt.Errorf("read: %w", err)
		return outcome
	}

	lang := opts.Config.Lang
	if lang == "" {
		lang = langdetect.DetectFile(path, content)
	}
	if lang == "" {
		outcome.Error = fmt.Errorf("cannot determine language for %s", path)
		return outcome
	}
	outcome.Language = lang

	formatted, err := r.Engine.FormatDocument(ctx, content, engine.Options{
		Language:   lang,
		PrintWidth: opts.Config.PrintWidth,
		SkipRoot:   opts.Config.SkipRoot,
	})
	if err != nil {
		outcome.Error = err
		return outcome
	}

	if bytes.Equal(formatted, content) {
		return outcome
	}
	outcome.Changed = true

	if !opts.Write {
		return outcome
	}

	if err := fsutil.WriteAtomic(ctx, path, formatted, fsutil.FileMode(path)); err != nil {
		outcome.Error = fmt.Errorf("write back: %w", err)
		return outcome
	}
	outcome.Written = true

	logger.Info(path)
	return outcome
}
