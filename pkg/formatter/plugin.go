package formatter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// PluginFormatter runs a WASM formatter module in-process under wazero.
//
// The sandbox exposes no file system and no network. The module receives
// the source text on stdin, the language and print width as command-line
// arguments, and returns the formatted text on stdout — the same contract
// as an external command, minus the ambient host access.
type PluginFormatter struct {
	name string
	uri  string

	once     sync.Once
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	loadErr  error
}

// NewPluginFormatter creates a plugin runner for a WASM binary URI.
// Only file URIs (and plain paths) are loadable by the engine; remote
// acquisition belongs to the plugin-download collaborator.
func NewPluginFormatter(name, uri string) *PluginFormatter {
	return &PluginFormatter{name: name, uri: uri}
}

// Name returns the configured plugin name.
func (f *PluginFormatter) Name() string { return f.name }

// Installed reports whether the plugin binary loads and compiles.
func (f *PluginFormatter) Installed() bool {
	f.load(context.Background())
	return f.loadErr == nil
}

// load reads and compiles the module once.
func (f *PluginFormatter) load(ctx context.Context) {
	f.once.Do(func() {
		path := strings.TrimPrefix(f.uri, "file://")
		if strings.Contains(path, "://") {
			f.loadErr = fmt.Errorf("plugin %s: unsupported URI %q (only file URIs are loadable)", f.name, f.uri)
			return
		}

		binary, err := os.ReadFile(path)
		if err != nil {
			f.loadErr = fmt.Errorf("plugin %s: read binary: %w", f.name, err)
			return
		}

		f.runtime = wazero.NewRuntime(ctx)
		wasi_snapshot_preview1.MustInstantiate(ctx, f.runtime)

		f.compiled, err = f.runtime.CompileModule(ctx, binary)
		if err != nil {
			f.loadErr = fmt.Errorf("plugin %s: compile: %w", f.name, err)
		}
	})
}

// Format instantiates the module for one run. Each invocation gets a fresh
// instance so plugins cannot carry state between documents.
func (f *PluginFormatter) Format(ctx context.Context, source []byte, opts Options) ([]byte, error) {
	f.load(ctx)
	if f.loadErr != nil {
		return nil, &RunError{Kind: KindNotInstalled, Formatter: f.name, Err: f.loadErr}
	}

	var stdout, stderr bytes.Buffer

	moduleCfg := wazero.NewModuleConfig().
		WithName("").
		WithStdin(bytes.NewReader(source)).
		WithStdout(&stdout).
		WithStderr(&stderr).
		WithArgs(f.name, "--language", opts.Language, "--textwidth", strconv.Itoa(opts.PrintWidth))

	module, err := f.runtime.InstantiateModule(ctx, f.compiled, moduleCfg)
	if err != nil {
		// A WASI command reports completion through proc_exit; zero is
		// success, not an error.
		exitErr, isExit := err.(*sys.ExitError)
		switch {
		case isExit && exitErr.ExitCode() == 0:
		case ctx.Err() != nil:
			return nil, &RunError{Kind: KindTimeout, Formatter: f.name, Err: ctx.Err()}
		default:
			return nil, &RunError{
				Kind:      KindNonZeroExit,
				Formatter: f.name,
				Stderr:    stderr.String(),
				Err:       err,
			}
		}
	}
	if module != nil {
		defer module.Close(ctx)
	}

	if stdout.Len() == 0 && len(source) > 0 {
		return nil, &RunError{Kind: KindEmptyOutput, Formatter: f.name}
	}

	return stdout.Bytes(), nil
}

// Close releases the wazero runtime.
func (f *PluginFormatter) Close(ctx context.Context) error {
	if f.runtime != nil {
		return f.runtime.Close(ctx)
	}
	return nil
}
