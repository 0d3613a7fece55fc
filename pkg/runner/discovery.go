package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Discover finds files under the working directory matching the include
// glob and none of the exclude globs. It returns a deterministically sorted
// list of absolute paths. Hidden files and directories are skipped.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	include, err := glob.Compile(opts.IncludeGlob, '/')
	if err != nil {
		return nil, fmt.Errorf("compile include glob %q: %w", opts.IncludeGlob, err)
	}

	excludes := make([]glob.Glob, 0, len(opts.ExcludeGlobs))
	for _, pattern := range opts.ExcludeGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile exclude glob %q: %w", pattern, err)
		}
		excludes = append(excludes, g)
	}

	var files []string

	walkErr := filepath.WalkDir(workDir, func(path string, entry fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if os.IsPermission(err) {
				return nil
			}
			return err
		}

		relPath, relErr := filepath.Rel(workDir, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if path != workDir && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			if matchesAny(excludes, relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		if !matchesGlob(include, relPath) {
			return nil
		}
		if matchesAny(excludes, relPath) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", workDir, walkErr)
	}

	sort.Strings(files)
	return files, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// matchesGlob matches the relative path, also trying the bare filename so
// patterns like "*.md" work at any depth.
func matchesGlob(g glob.Glob, relPath string) bool {
	return g.Match(relPath) || g.Match(filepath.Base(relPath))
}

func matchesAny(globs []glob.Glob, relPath string) bool {
	for _, g := range globs {
		if matchesGlob(g, relPath) {
			return true
		}
	}
	return false
}
