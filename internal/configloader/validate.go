package configloader

import (
	"fmt"
	"strings"

	"github.com/yaklabco/weavefmt/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "formatters.prettier.cmd").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	validateFormatters(cfg, result)
	validateLanguages(cfg, result)
	validateAliases(cfg, result)

	if cfg.PrintWidth < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "print_width",
			Value:   cfg.PrintWidth,
			Message: "must be positive",
		})
	}

	return result
}

// validateFormatters checks formatter specs for required fields.
func validateFormatters(cfg *config.Config, result *ValidationResult) {
	for name, spec := range cfg.Formatters {
		if strings.TrimSpace(spec.Cmd) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "formatters." + name + ".cmd",
				Message: "command must not be empty",
			})
		}
	}
}

// validateLanguages checks that every language entry resolves to a known
// formatter or plugin. Unresolved references are fatal: invoking them later
// could only fail in a more confusing place.
func validateLanguages(cfg *config.Config, result *ValidationResult) {
	for lang, names := range cfg.Languages {
		for _, name := range names {
			_, isFormatter := cfg.Formatters[name]
			_, isPlugin := cfg.Plugins[name]
			if !isFormatter && !isPlugin {
				result.Errors = append(result.Errors, ValidationError{
					Field:   "languages." + lang,
					Value:   name,
					Message: fmt.Sprintf("references unknown formatter or plugin %q", name),
				})
			}
		}
	}
}

// validateAliases rejects an alias that maps to two different canonical tags.
func validateAliases(cfg *config.Config, result *ValidationResult) {
	seen := make(map[string]string)
	for canonical, aliases := range cfg.LanguageAliases {
		for _, alias := range aliases {
			if existing, ok := seen[alias]; ok && existing != canonical {
				result.Errors = append(result.Errors, ValidationError{
					Field:   "language_aliases",
					Value:   alias,
					Message: fmt.Sprintf("alias maps to both %q and %q", existing, canonical),
				})
				continue
			}
			seen[alias] = canonical
		}
	}
}
