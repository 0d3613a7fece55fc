// Package formatter provides the formatting capability consumed by the
// engine: run a configured formatter over a text blob with a language hint
// and target print width, and hand back the formatted text.
//
// Two implementations exist: ExecFormatter spawns an external process, and
// PluginFormatter runs a sandboxed WASM module in-process. The engine only
// sees the Runner interface, which keeps it testable with in-memory stubs.
package formatter

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaklabco/weavefmt/pkg/config"
)

// Options carries the per-invocation formatting parameters.
type Options struct {
	// Language is the target language tag, substituted for $language.
	Language string

	// PrintWidth is the target maximum line length, substituted for
	// $textwidth.
	PrintWidth int
}

// Runner is the formatting capability.
type Runner interface {
	// Name returns the configured formatter name.
	Name() string

	// Installed reports whether the formatter can run on this host.
	// For external commands this is a PATH lookup; plugins are installed
	// once their binary loads.
	Installed() bool

	// Format runs the formatter. A nil error means output is the complete
	// formatted text.
	Format(ctx context.Context, source []byte, opts Options) ([]byte, error)
}

// Resolver builds runners from configuration and picks the runner for a
// language. Selection is first-installed-wins: later entries in a
// language's list are only consulted when earlier ones are not installed on
// the host, never after a formatting error.
type Resolver struct {
	cfg     *config.Config
	runners map[string]Runner
}

// NewResolver constructs runners for every configured formatter and plugin.
func NewResolver(cfg *config.Config) *Resolver {
	runners := make(map[string]Runner, len(cfg.Formatters)+len(cfg.Plugins))

	for name, spec := range cfg.Formatters {
		runners[name] = NewExecFormatter(name, spec)
	}
	for name, uri := range cfg.Plugins {
		runners[name] = NewPluginFormatter(name, uri)
	}

	return &Resolver{cfg: cfg, runners: runners}
}

// ForLanguage returns the first installed runner configured for the
// language tag (after alias resolution), or false when the language has no
// usable formatter.
func (r *Resolver) ForLanguage(lang string) (Runner, bool) {
	for _, name := range r.cfg.FormatterNames(lang) {
		runner, ok := r.runners[name]
		if !ok {
			continue
		}
		if runner.Installed() {
			return runner, true
		}
	}
	return nil, false
}

// Runner returns a runner by configured name.
func (r *Resolver) Runner(name string) (Runner, bool) {
	runner, ok := r.runners[name]
	return runner, ok
}

// Register installs (or replaces) a runner under a name. Tests use it to
// substitute in-memory stubs for configured formatters.
func (r *Resolver) Register(name string, runner Runner) {
	r.runners[name] = runner
}

// substituteArgs expands the $textwidth, $language and $file tokens.
func substituteArgs(args []string, opts Options, file string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		arg = strings.ReplaceAll(arg, "$textwidth", fmt.Sprintf("%d", opts.PrintWidth))
		arg = strings.ReplaceAll(arg, "$language", opts.Language)
		arg = strings.ReplaceAll(arg, "$file", file)
		out[i] = arg
	}
	return out
}
