// Package config defines core configuration types for weavefmt.
// These types are pure data structures with no dependency on the loader
// that discovers and merges them.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FormatterSpec describes one external formatter command.
type FormatterSpec struct {
	// Cmd is the executable to run. Looked up on PATH unless absolute.
	Cmd string `yaml:"cmd"`

	// Args are the command arguments. The literal tokens $textwidth,
	// $language and $file are substituted per invocation.
	Args []string `yaml:"args"`

	// Stdin controls whether input is passed on standard input (default)
	// or via a temporary file substituted for $file.
	Stdin *bool `yaml:"stdin"`

	// FailOnStderr treats any stderr output as a failure even when the
	// command exits zero.
	FailOnStderr *bool `yaml:"fail_on_stderr"`
}

// UseStdin reports whether input should be written to the command's stdin.
func (f FormatterSpec) UseStdin() bool {
	if f.Stdin == nil {
		return true
	}
	return *f.Stdin
}

// GrammarSpec describes where a grammar comes from. The engine itself never
// interprets it; it is carried for the external grammar acquisition
// collaborator. Accepts either a bare URL string or {url, rev}.
type GrammarSpec struct {
	URL string `yaml:"url"`
	Rev string `yaml:"rev"`
}

// UnmarshalYAML accepts both the string and the table form.
func (g *GrammarSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		g.URL = value.Value
		return nil
	}

	type plain GrammarSpec
	var p plain
	if err := value.Decode(&p); err != nil {
		return fmt.Errorf("grammar spec: %w", err)
	}
	*g = GrammarSpec(p)
	return nil
}

// Config is the root configuration structure for weavefmt.
type Config struct {
	// QueryPaths is the ordered list of directories searched for
	// <lang>/injections.scm. Earlier entries are lower precedence; a later
	// query replaces earlier ones unless it starts with ";; extends".
	QueryPaths []string `yaml:"query_paths"`

	// GrammarPaths, GrammarDownloadDir and GrammarBuildDir are carried for
	// the grammar acquisition collaborator.
	GrammarPaths       []string `yaml:"grammar_paths"`
	GrammarDownloadDir string   `yaml:"grammar_download_dir"`
	GrammarBuildDir    string   `yaml:"grammar_build_dir"`

	// Grammars maps a language tag to its grammar source.
	Grammars map[string]GrammarSpec `yaml:"grammars"`

	// Formatters maps a formatter name to its command spec.
	Formatters map[string]FormatterSpec `yaml:"formatters"`

	// Plugins maps a plugin name to the URI (file or remote) of a WASM
	// component binary.
	Plugins map[string]string `yaml:"plugins"`

	// Languages maps a language tag to an ordered list of formatter or
	// plugin names. The first installed entry wins.
	Languages map[string][]string `yaml:"languages"`

	// LanguageAliases maps a canonical language tag to its aliases.
	LanguageAliases map[string][]string `yaml:"language_aliases"`

	// Profiles are named partial overrides applied at runtime.
	Profiles map[string]*Config `yaml:"profiles"`

	// CLI-level options (not persisted to config files).

	// Lang is the root language tag.
	Lang string `yaml:"-"`

	// PrintWidth is the initial print width.
	PrintWidth int `yaml:"-"`

	// SkipRoot disables the root formatter; injected regions still format.
	SkipRoot bool `yaml:"-"`

	// Check disables writes and requests a dirty-file exit status.
	Check bool `yaml:"-"`

	// Exclude contains glob patterns for files to skip in file mode.
	Exclude []string `yaml:"-"`

	// Jobs specifies the number of parallel file workers.
	Jobs int `yaml:"-"`
}

// DefaultPrintWidth is the print width used when none is configured.
const DefaultPrintWidth = 80

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Grammars:        make(map[string]GrammarSpec),
		Formatters:      make(map[string]FormatterSpec),
		Plugins:         make(map[string]string),
		Languages:       make(map[string][]string),
		LanguageAliases: make(map[string][]string),
		PrintWidth:      DefaultPrintWidth,
		Jobs:            0, // 0 means use runtime.NumCPU()
	}
}

// ResolveAlias returns the canonical tag for lang, consulting
// LanguageAliases. Unknown tags map to themselves.
func (c *Config) ResolveAlias(lang string) string {
	for canonical, aliases := range c.LanguageAliases {
		if canonical == lang {
			return canonical
		}
		for _, alias := range aliases {
			if alias == lang {
				return canonical
			}
		}
	}
	return lang
}

// FormatterNames returns the configured formatter chain for a language tag,
// after alias resolution.
func (c *Config) FormatterNames(lang string) []string {
	return c.Languages[c.ResolveAlias(lang)]
}
