// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldRoot       = "root"

	// Run fields.
	FieldRunID   = "run_id"
	FieldState   = "state"
	FieldFix     = "fix"
	FieldDryRun  = "dry_run"
	FieldVersion = "version"
	FieldScope   = "scope"
	FieldUpdated = "updated"

	// Check fields.
	FieldCheck       = "check"
	FieldChecks      = "checks"
	FieldSeverity    = "severity"
	FieldOffenses    = "offenses"
	FieldEdits       = "edits"
	FieldDropped     = "dropped"
	FieldCategories  = "categories"
	FieldCorrectable = "correctable"
	FieldDoc         = "doc"

	// Build fields.
	FieldCommit = "commit"
	FieldBuilt  = "built"
)
