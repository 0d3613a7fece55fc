package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yaklabco/weavefmt/pkg/config"
)

// envVarPrefix is the prefix for all weavefmt environment variables.
const envVarPrefix = "WEAVEFMT_"

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with WEAVEFMT_ (e.g. WEAVEFMT_LANG).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	if v := os.Getenv(envVarPrefix + "LANG"); v != "" {
		cfg.Lang = v
	}

	if v := os.Getenv(envVarPrefix + "PRINT_WIDTH"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil || width <= 0 {
			return fmt.Errorf("invalid integer for %sPRINT_WIDTH: %q", envVarPrefix, v)
		}
		cfg.PrintWidth = width
	}

	if v := os.Getenv(envVarPrefix + "JOBS"); v != "" {
		jobs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer for %sJOBS: %q", envVarPrefix, v)
		}
		cfg.Jobs = jobs
	}

	if v := os.Getenv(envVarPrefix + "SKIP_ROOT"); v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean for %sSKIP_ROOT: %q (expected true/false/1/0)", envVarPrefix, v)
		}
		cfg.SkipRoot = skip
	}

	if v := os.Getenv(envVarPrefix + "EXCLUDE"); v != "" {
		cfg.Exclude = append(cfg.Exclude, parseSliceValue(v)...)
	}

	if v := os.Getenv(envVarPrefix + "QUERY_PATHS"); v != "" {
		cfg.QueryPaths = append(cfg.QueryPaths, parseSliceValue(v)...)
	}

	return nil
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
