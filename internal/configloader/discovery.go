package configloader

import (
	"context"
	"os"
	"path/filepath"
)

// ConfigPaths holds the discovered configuration file locations.
type ConfigPaths struct {
	// System is the system-level config path, if present.
	System string

	// User is the user-level (XDG) config path, if present.
	User string

	// Project is the nearest project config found by upward search.
	Project string

	// Explicit is the --config path, if given.
	Explicit string
}

// Well-known configuration locations.
const (
	systemConfigPath  = "/etc/weavefmt/config.yaml"
	userConfigDir     = "weavefmt"
	userConfigFile    = "config.yaml"
	projectConfigName = ".weavefmt.yml"
)

// DiscoverPaths locates configuration files for the given working directory.
// Missing files are reported as empty strings, not errors.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	paths := &ConfigPaths{}

	if fileExists(systemConfigPath) {
		paths.System = systemConfigPath
	}

	if userPath := userConfigPath(); userPath != "" && fileExists(userPath) {
		paths.User = userPath
	}

	paths.Project = findProjectConfig(workDir)

	return paths, nil
}

// userConfigPath returns $XDG_CONFIG_HOME/weavefmt/config.yaml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func userConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, userConfigDir, userConfigFile)
}

// findProjectConfig searches upward from workDir for a project config file.
func findProjectConfig(workDir string) string {
	dir := workDir
	for {
		candidate := filepath.Join(dir, projectConfigName)
		if fileExists(candidate) {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
