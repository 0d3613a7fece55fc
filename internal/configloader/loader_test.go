package configloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/weavefmt/pkg/config"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadProjectConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	writeFile(t, dir, ".weavefmt.yml", `
formatters:
  prettier:
    cmd: prettier
    args: ["--print-width", "$textwidth"]
languages:
  markdown: [prettier]
`)

	result, err := Load(context.Background(), LoadOptions{WorkingDir: dir, IgnoreEnv: true})
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, "prettier", cfg.Formatters["prettier"].Cmd)
	assert.Equal(t, []string{"prettier"}, cfg.Languages["markdown"])
	assert.Len(t, result.LoadedFrom, 1)
}

func TestLoadUpwardSearch(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	writeFile(t, root, ".weavefmt.yml", "languages:\n  sql: []\n")

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	result, err := Load(context.Background(), LoadOptions{WorkingDir: nested, IgnoreEnv: true})
	require.NoError(t, err)
	require.Len(t, result.LoadedFrom, 1)
	assert.Equal(t, filepath.Join(root, ".weavefmt.yml"), result.LoadedFrom[0])
}

func TestLoadExplicitPathIsExclusive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".weavefmt.yml", "languages:\n  markdown: []\n")
	explicit := writeFile(t, dir, "other.yml", "languages:\n  sql: []\n")

	result, err := Load(context.Background(), LoadOptions{
		WorkingDir:   dir,
		ExplicitPath: explicit,
		IgnoreEnv:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{explicit}, result.LoadedFrom)
	_, hasMarkdown := result.Config.Languages["markdown"]
	assert.False(t, hasMarkdown, "project config must be skipped under --config")
}

func TestLoadAppliesProfiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".weavefmt.yml", `
formatters:
  prettier: {cmd: prettier, args: []}
languages:
  markdown: [prettier]
profiles:
  bare:
    languages:
      markdown: []
`)

	result, err := Load(context.Background(), LoadOptions{
		WorkingDir: dir,
		Profiles:   []string{"bare"},
		IgnoreEnv:  true,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Config.Languages["markdown"])
}

func TestLoadUnknownProfile(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(context.Background(), LoadOptions{
		WorkingDir: dir,
		Profiles:   []string{"missing"},
		IgnoreEnv:  true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestLoadCLIOverrides(t *testing.T) {
	dir := t.TempDir()

	cli := config.NewConfig()
	cli.Lang = "markdown"
	cli.PrintWidth = 100
	cli.Check = true

	result, err := Load(context.Background(), LoadOptions{
		WorkingDir: dir,
		IgnoreEnv:  true,
		CLIConfig:  cli,
	})
	require.NoError(t, err)

	assert.Equal(t, "markdown", result.Config.Lang)
	assert.Equal(t, 100, result.Config.PrintWidth)
	assert.True(t, result.Config.Check)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WEAVEFMT_PRINT_WIDTH", "120")
	t.Setenv("WEAVEFMT_SKIP_ROOT", "true")

	result, err := Load(context.Background(), LoadOptions{WorkingDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, 120, result.Config.PrintWidth)
	assert.True(t, result.Config.SkipRoot)
}

func TestLoadRejectsDanglingFormatterReference(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".weavefmt.yml", "languages:\n  sql: [ghost]\n")

	_, err := Load(context.Background(), LoadOptions{WorkingDir: dir, IgnoreEnv: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestLoadRejectsAliasConflict(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".weavefmt.yml", `
language_aliases:
  javascript: [js]
  typescript: [js]
`)

	_, err := Load(context.Background(), LoadOptions{WorkingDir: dir, IgnoreEnv: true})
	require.Error(t, err)
}

func TestLoadAbsolutizesQueryPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".weavefmt.yml", "query_paths: [./queries]\n")

	result, err := Load(context.Background(), LoadOptions{WorkingDir: dir, IgnoreEnv: true})
	require.NoError(t, err)

	require.Len(t, result.Config.QueryPaths, 1)
	assert.True(t, filepath.IsAbs(result.Config.QueryPaths[0]))
	assert.Equal(t, filepath.Join(dir, "queries"), result.Config.QueryPaths[0])
}

func TestMergeRules(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	base.QueryPaths = []string{"/a"}
	base.Languages["markdown"] = []string{"x"}
	base.Languages["sql"] = []string{"y"}

	overlay := &config.Config{
		QueryPaths: []string{"/b"},
		Languages:  map[string][]string{"markdown": {"z"}},
	}

	merged := merge(base, overlay)

	// Lists concatenate, maps deep-merge per key, untouched keys survive.
	assert.Equal(t, []string{"/a", "/b"}, merged.QueryPaths)
	assert.Equal(t, []string{"z"}, merged.Languages["markdown"])
	assert.Equal(t, []string{"y"}, merged.Languages["sql"])
}
