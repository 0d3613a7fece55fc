// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, hierarchical merging,
// environment variable support, profile application and validation.
package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/weavefmt/pkg/config"
)

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	// If set, it is used exclusively: system, user and project discovery
	// are skipped.
	ExplicitPath string

	// Profiles are profile names to apply, in order.
	Profiles []string

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool

	// CLIConfig contains configuration from CLI flags.
	// These take highest precedence.
	CLIConfig *config.Config
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final merged configuration.
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration by merging all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.CLIConfig)
//  2. Environment variables (WEAVEFMT_*)
//  3. Explicit config file (opts.ExplicitPath, exclusive when set)
//  4. Project config (.weavefmt.yml upward search)
//  5. User config ($XDG_CONFIG_HOME/weavefmt/config.yaml)
//  6. System config (/etc/weavefmt/config.yaml)
//  7. Defaults
//
// Profiles named in opts.Profiles are applied after file merging and before
// environment/CLI overrides.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	result := &LoadResult{
		Paths: &ConfigPaths{},
	}

	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	cfg := config.NewConfig()

	if opts.ExplicitPath != "" {
		// --config is exclusive: the named file is the only file source.
		result.Paths.Explicit = opts.ExplicitPath

		explicitCfg, err := loadConfigFile(opts.ExplicitPath)
		if err != nil {
			return nil, fmt.Errorf("load explicit config: %w", err)
		}
		cfg = merge(cfg, explicitCfg)
		result.LoadedFrom = append(result.LoadedFrom, opts.ExplicitPath)
	} else {
		paths, err := DiscoverPaths(ctx, workDir)
		if err != nil {
			return nil, fmt.Errorf("discover paths: %w", err)
		}
		result.Paths = paths

		// Load and merge in order (lowest to highest precedence).
		for _, path := range []string{paths.System, paths.User, paths.Project} {
			if path == "" {
				continue
			}
			layer, err := loadConfigFile(path)
			if err != nil {
				return nil, fmt.Errorf("load config %s: %w", path, err)
			}
			cfg = merge(cfg, layer)
			result.LoadedFrom = append(result.LoadedFrom, path)
		}
	}

	// Apply requested profiles.
	for _, name := range opts.Profiles {
		profile, ok := cfg.Profiles[name]
		if !ok {
			return nil, fmt.Errorf("profile %q not found", name)
		}
		profiles := cfg.Profiles
		cfg = merge(cfg, profile)
		cfg.Profiles = profiles
	}

	// Environment variables.
	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	// CLI config (highest precedence).
	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	// Validate final configuration.
	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Message)
	}

	result.Config = cfg
	return result, nil
}

// loadConfigFile loads a configuration from a YAML file. Relative paths
// inside it (query_paths, grammar_paths) are resolved against the file's
// directory.
func loadConfigFile(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := &config.Config{}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	absolutizePaths(cfg, filepath.Dir(path))

	return cfg, nil
}

// absolutizePaths resolves the config's relative directory entries against
// baseDir, including inside profiles.
func absolutizePaths(cfg *config.Config, baseDir string) {
	cfg.QueryPaths = absolutizeList(cfg.QueryPaths, baseDir)
	cfg.GrammarPaths = absolutizeList(cfg.GrammarPaths, baseDir)
	cfg.GrammarDownloadDir = absolutize(cfg.GrammarDownloadDir, baseDir)
	cfg.GrammarBuildDir = absolutize(cfg.GrammarBuildDir, baseDir)

	for _, profile := range cfg.Profiles {
		if profile != nil {
			absolutizePaths(profile, baseDir)
		}
	}
}

func absolutizeList(paths []string, baseDir string) []string {
	for i, p := range paths {
		paths[i] = absolutize(p, baseDir)
	}
	return paths
}

func absolutize(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
