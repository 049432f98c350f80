package configloader

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "SyntaxError.severity").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown check codes).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// Validate checks a configuration against the checks in registry.
// Unknown check codes are warnings; a nil registry skips that test.
func Validate(cfg *config.Config, registry *check.Registry) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	switch cfg.Extends {
	case "", config.ExtendsDefault, config.ExtendsNothing:
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "extends",
			Value:   cfg.Extends,
			Message: fmt.Sprintf("invalid extends %q; must be one of: default, nothing", cfg.Extends),
		})
	}

	switch cfg.Format {
	case "", config.FormatText, config.FormatJSON, config.FormatDiff:
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "format",
			Value:   cfg.Format,
			Message: fmt.Sprintf("invalid format %q; must be one of: text, json, diff", cfg.Format),
		})
	}

	if cfg.Jobs < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "jobs",
			Value:   cfg.Jobs,
			Message: "jobs must be >= 0 (0 means auto)",
		})
	}

	switch cfg.Backups.Mode {
	case "", "sidecar", "none":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "backups.mode",
			Value:   cfg.Backups.Mode,
			Message: fmt.Sprintf("invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode),
		})
	}

	validateGlobs("ignore", cfg.Ignore, result)
	validateChecks(cfg, registry, result)

	return result
}

func validateChecks(cfg *config.Config, registry *check.Registry, result *ValidationResult) {
	known := func(code string) bool {
		if registry == nil {
			return true
		}
		_, ok := registry.Meta(code)
		return ok
	}

	for _, code := range slices.Sorted(maps.Keys(cfg.Checks)) {
		cc := cfg.Checks[code]
		if !known(code) {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   code,
				Value:   code,
				Message: fmt.Sprintf("unknown check %q; it will be ignored", code),
			})
		}

		if cc.Severity != nil {
			if _, err := check.ParseSeverity(*cc.Severity); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Field:   code + ".severity",
					Value:   *cc.Severity,
					Message: err.Error(),
				})
			}
		}

		validateGlobs(code+".ignore", cc.Ignore, result)
	}

	for _, code := range slices.Concat(cfg.EnableChecks, cfg.DisableChecks) {
		if !known(code) {
			result.Warnings = append(result.Warnings, ValidationError{
				Value:   code,
				Message: fmt.Sprintf("unknown check %q on the command line", code),
			})
		}
	}
}

func validateGlobs(field string, patterns []string, result *ValidationResult) {
	for i, pattern := range patterns {
		if _, err := config.CompileGlobs([]string{pattern}); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Value:   pattern,
				Message: err.Error(),
			})
		}
	}
}

// ValidateWithFile validates configuration and attaches filePath to findings.
func ValidateWithFile(cfg *config.Config, registry *check.Registry, filePath string) *ValidationResult {
	result := Validate(cfg, registry)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}
