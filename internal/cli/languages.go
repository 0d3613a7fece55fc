package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/weavefmt/internal/configloader"
	"github.com/yaklabco/weavefmt/pkg/registry"
)

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List bundled grammars and their configured formatters",
		RunE:  runLanguages,
	}
}

func runLanguages(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	loadResult, err := configloader.Load(cmd.Context(), configloader.LoadOptions{
		ExplicitPath: configPath,
	})
	if err != nil {
		return err
	}
	cfg := loadResult.Config

	reg := registry.New(cfg.QueryPaths)
	out := cmd.OutOrStdout()

	for _, lang := range reg.Known() {
		formatters := cfg.FormatterNames(lang)
		if len(formatters) == 0 {
			fmt.Fprintf(out, "%s\n", lang)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", lang, strings.Join(formatters, ", "))
	}

	return nil
}
