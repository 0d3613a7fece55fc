// Package cli provides the Cobra command structure for weavefmt.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/yaklabco/weavefmt/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root weavefmt command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var logLevel string
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "weavefmt",
		Short: "An injection-aware formatter orchestrator",
		Long: `weavefmt formats source files that embed regions of other languages:
SQL strings inside a host program, fenced code blocks inside prose,
scripts inside HTML. It discovers embedded regions with tree-sitter
injection queries, hands each region (and optionally the whole document)
to the formatter you configured for its language, and weaves the results
back together with escaping, indentation and print width intact.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.SetLevel(logLevel)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Flag parse failures are invalid invocations, not formatter errors.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Join(ErrUsage, err)
	})

	// Global flags.
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"diagnostic verbosity: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (used exclusively)")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newFmtCommand())
	rootCmd.AddCommand(newLanguagesCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
