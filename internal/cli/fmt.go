package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/weavefmt/internal/configloader"
	"github.com/yaklabco/weavefmt/internal/logging"
	"github.com/yaklabco/weavefmt/internal/ui/pretty"
	"github.com/yaklabco/weavefmt/pkg/config"
	"github.com/yaklabco/weavefmt/pkg/engine"
	"github.com/yaklabco/weavefmt/pkg/formatter"
	"github.com/yaklabco/weavefmt/pkg/registry"
	"github.com/yaklabco/weavefmt/pkg/runner"
)

type fmtFlags struct {
	lang       string
	printWidth int
	skipRoot   bool
	dir        string
	exclude    []string
	check      bool
	profiles   []string
}

func newFmtCommand() *cobra.Command {
	flags := &fmtFlags{}

	cmd := &cobra.Command{
		Use:   "fmt [glob]",
		Short: "Format a document from stdin or files matching a glob",
		Long:  fmtLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.lang, "lang", "", "root language tag (required when reading stdin)")
	cmd.Flags().IntVar(&flags.printWidth, "print-width", config.DefaultPrintWidth, "initial print width")
	cmd.Flags().BoolVar(&flags.skipRoot, "skip-root", false,
		"do not run the root formatter; injected regions still format")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "working directory for file-mode operation")
	cmd.Flags().StringArrayVar(&flags.exclude, "exclude", nil, "exclusion glob pattern (repeatable)")
	cmd.Flags().BoolVar(&flags.check, "check", false,
		"do not write; exit nonzero if any input would change")
	cmd.Flags().StringArrayVar(&flags.profiles, "profile", nil, "config profile to apply (repeatable)")

	return cmd
}

const fmtLongDescription = `Format a document with its configured formatters, including every
embedded-language region discovered by injection queries.

With no glob argument, the document is read from standard input and the
result written to standard output; --lang is required. With a glob, files
matching it under the working directory are formatted in place (or checked
with --check).

Examples:
  weavefmt fmt --lang markdown < README.md     # Format stdin
  weavefmt fmt '**/*.md'                       # Format files in place
  weavefmt fmt --check '**/*.md'               # CI check, no writes
  weavefmt fmt --skip-root --lang html < a.html
  weavefmt fmt --exclude 'vendor/**' '**/*.go'`

func runFmt(cmd *cobra.Command, args []string, flags *fmtFlags) error {
	logger := logging.Default()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	reg := registry.New(cfg.QueryPaths)
	resolver := formatter.NewResolver(cfg)
	eng := engine.New(reg, resolver, cfg)

	if len(args) == 1 {
		return runFmtFiles(ctx, cmd, cfg, eng, reg, args[0], flags)
	}

	if cfg.Lang == "" {
		logger.Error("--lang is required when reading from stdin")
		return ErrUsage
	}

	return runFmtStdin(ctx, cmd, cfg, eng)
}

// loadConfig merges file, env, profile and flag configuration.
func loadConfig(cmd *cobra.Command, flags *fmtFlags) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir := flags.dir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	cliCfg := &config.Config{
		Lang:     flags.lang,
		SkipRoot: flags.skipRoot,
		Check:    flags.check,
		Exclude:  flags.exclude,
	}
	if cmd.Flags().Changed("print-width") {
		cliCfg.PrintWidth = flags.printWidth
	}

	loadResult, err := configloader.Load(cmd.Context(), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		Profiles:     flags.profiles,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(ErrConfig, err)
	}

	logger := logging.Default()
	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	return loadResult.Config, nil
}

// runFmtStdin formats one document from stdin to stdout.
func runFmtStdin(ctx context.Context, cmd *cobra.Command, cfg *config.Config, eng *engine.Engine) error {
	logger := logging.Default()

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logger.Warn("reading document from terminal; pipe input or press Ctrl-D to end")
	}

	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	result, fmtErr := eng.FormatDocument(ctx, input, engine.Options{
		Language:   cfg.Lang,
		PrintWidth: cfg.PrintWidth,
		SkipRoot:   cfg.SkipRoot,
	})

	if cfg.Check {
		if fmtErr != nil {
			return fmtErr
		}
		if !bytes.Equal(result, input) {
			logger.Error("stdin would be reformatted")
			return ErrCheckDirty
		}
		return nil
	}

	// On a root error the original input is echoed so pipelines never eat
	// the document.
	output := result
	if fmtErr != nil {
		output = input
	}
	if _, err := cmd.OutOrStdout().Write(output); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}

	return fmtErr
}

// runFmtFiles formats every file matching the glob.
func runFmtFiles(ctx context.Context, cmd *cobra.Command, cfg *config.Config, eng *engine.Engine, reg *registry.Registry, includeGlob string, flags *fmtFlags) error {
	logger := logging.Default()

	// Warm the registry before fanning out so workers only read the cache.
	preload := make([]string, 0, len(cfg.Languages)+1)
	if cfg.Lang != "" {
		preload = append(preload, cfg.Lang)
	}
	for lang := range cfg.Languages {
		preload = append(preload, cfg.ResolveAlias(lang))
	}
	if err := reg.Preload(ctx, preload); err != nil {
		return errors.Join(ErrConfig, err)
	}

	opts := runner.Options{
		IncludeGlob:  includeGlob,
		WorkingDir:   flags.dir,
		ExcludeGlobs: cfg.Exclude,
		Write:        !cfg.Check,
		Jobs:         cfg.Jobs,
		Config:       cfg,
	}

	logger.Debug("starting format run",
		logging.FieldWorkingDir, opts.WorkingDir,
		logging.FieldJobs, opts.Jobs,
		logging.FieldSkipRoot, cfg.SkipRoot)

	result, err := runner.New(eng).Run(ctx, opts)
	if err != nil {
		return err
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	styles := pretty.NewStyles(pretty.ColorEnabled(colorMode, cmd.OutOrStdout()))

	for _, outcome := range result.Files {
		if outcome.Error != nil {
			logger.Error("failed to format file",
				logging.FieldPath, outcome.Path,
				logging.FieldError, outcome.Error)
		}
	}

	if cfg.Check {
		fmt.Fprint(cmd.OutOrStdout(), styles.FormatCheckSummary(result))
		if len(result.Dirty()) > 0 {
			return ErrCheckDirty
		}
		if result.HasErrors() {
			return fmt.Errorf("%d files failed to format", result.Stats.FilesErrored)
		}
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), styles.FormatWriteSummary(result))
	if result.HasErrors() {
		return fmt.Errorf("%d files failed to format", result.Stats.FilesErrored)
	}
	return nil
}
