package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/weavefmt/internal/logging"
)

// configTemplate is the starter project configuration written by init.
const configTemplate = `# weavefmt configuration
# See the README for the full schema.

# Directories searched for <lang>/injections.scm query overrides.
# query_paths:
#   - ./queries

formatters:
  prettier:
    cmd: prettier
    args: ["--print-width", "$textwidth", "--parser", "$language"]
  sqlfmt:
    cmd: sql-formatter
    args: []

# plugins:
#   rufffmt: file:///opt/weavefmt/rufffmt.wasm

languages:
  markdown: [prettier]
  javascript: [prettier]
  sql: [sqlfmt]

language_aliases:
  javascript: [js, jsx]

# profiles:
#   ci:
#     languages:
#       markdown: []
`

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .weavefmt.yml in the current directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func runInit(force bool) error {
	logger := logging.Default()
	const path = ".weavefmt.yml"

	if _, err := os.Stat(path); err == nil && !force {
		logger.Error("config file already exists, use --force to overwrite", logging.FieldPath, path)
		return ErrUsage
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger.Info("wrote starter configuration", logging.FieldPath, path)
	return nil
}
