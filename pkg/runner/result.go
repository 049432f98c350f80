package runner

import (
	"github.com/yaklabco/poscheck/pkg/analyzer"
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
)

// Exit statuses of a batch run.
const (
	ExitClean         = 0
	ExitOffenses      = 1
	ExitInternalError = 2
)

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesAnalyzed is the number of files the single-file pass covered.
	FilesAnalyzed int

	// FilesWithOffenses is the number of files with at least one offense.
	FilesWithOffenses int

	// Offenses is the number of offenses reported.
	Offenses int

	// Correctable is the number of reported offenses that carry a fix.
	Correctable int

	// BySeverity counts offenses per severity.
	BySeverity map[check.Severity]int

	// FilesCorrected is the number of files written with corrections.
	FilesCorrected int

	// FilesSkipped is the number of corrections left unwritten because
	// the file changed during analysis.
	FilesSkipped int

	// EditsApplied is the number of edits in written corrections.
	EditsApplied int

	// EditsDropped is the number of edits dropped because they overlapped
	// an edit registered earlier.
	EditsDropped int

	// FixErrors is the number of fixes that failed or registered an
	// invalid edit.
	FixErrors int
}

// Result is the outcome of a batch run.
type Result struct {
	RunID string

	// Root is the absolute project root.
	Root string

	// Offenses are the reported offenses, sorted. After a written
	// correction they are the offenses that remain.
	Offenses []check.Offense

	// Corrections holds one entry per file with pending fixes, when
	// fixing was requested.
	Corrections []analyzer.Correction

	// Written lists the paths whose corrections were written.
	Written []string

	// Files holds the parsed files behind Offenses, for source context.
	Files map[string]*ast.File

	Stats Stats

	// ExitStatus is ExitClean, ExitOffenses or ExitInternalError.
	ExitStatus int

	// Errors contains non-offense failures, such as write errors.
	Errors []error
}

// Lines renders every offense in order.
func (r *Result) Lines() []string {
	lines := make([]string, 0, len(r.Offenses))
	for _, o := range r.Offenses {
		lines = append(lines, o.String())
	}
	return lines
}

// SourceLine returns the text of a zero-based line of path, or "".
func (r *Result) SourceLine(path string, line int) string {
	f, ok := r.Files[path]
	if !ok {
		return ""
	}
	return f.Line(line)
}

// HasIssues reports whether any offense was reported.
func (r *Result) HasIssues() bool {
	return r != nil && len(r.Offenses) > 0
}

func (r *Result) tally(failLevel check.Severity) {
	r.Stats.Offenses = len(r.Offenses)
	r.Stats.BySeverity = make(map[check.Severity]int)

	files := make(map[string]bool)
	internal := false
	failing := false
	for _, o := range r.Offenses {
		files[o.Path()] = true
		r.Stats.BySeverity[o.Severity()]++
		if o.Correctable() {
			r.Stats.Correctable++
		}
		if o.Code() == analyzer.CodeInternalError || o.Code() == analyzer.CodeStorageError {
			internal = true
		}
		if o.Severity().Rank() <= failLevel.Rank() {
			failing = true
		}
	}
	r.Stats.FilesWithOffenses = len(files)

	for _, c := range r.Corrections {
		if c.Written {
			r.Stats.FilesCorrected++
			r.Stats.EditsApplied += c.Applied
		}
		if c.Skipped != "" {
			r.Stats.FilesSkipped++
		}
		r.Stats.EditsDropped += len(c.Conflicts)
		r.Stats.FixErrors += len(c.Errors)
	}

	switch {
	case internal || len(r.Errors) > 0:
		r.ExitStatus = ExitInternalError
	case failing:
		r.ExitStatus = ExitOffenses
	default:
		r.ExitStatus = ExitClean
	}
}
