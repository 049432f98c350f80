package analyzer

import (
	"slices"

	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/fix"
)

// Result is the outcome of one analysis run.
type Result struct {
	RunID string

	// Paths are the files the single-file pass covered, sorted.
	Paths []string

	// Versions holds the snapshot version each path was analysed at.
	Versions map[string]int

	// SingleFile and WholeProject hold offenses by the pass that raised
	// them.
	SingleFile   []check.Offense
	WholeProject []check.Offense

	// ProjectPass is set when the whole-project pass ran.
	ProjectPass bool

	// Corrections are filled in by Analyzer.Correct, sorted by path.
	Corrections []Correction
}

// Offenses returns every offense, sorted.
func (r *Result) Offenses() []check.Offense {
	return check.Sorted(slices.Concat(r.SingleFile, r.WholeProject))
}

// OffensesFor returns the sorted offenses of one path.
func (r *Result) OffensesFor(path string) []check.Offense {
	var out []check.Offense
	for _, o := range r.Offenses() {
		if o.Path() == path {
			out = append(out, o)
		}
	}
	return out
}

// Count returns the number of offenses.
func (r *Result) Count() int {
	return len(r.SingleFile) + len(r.WholeProject)
}

// HasInternalErrors reports whether a check, the parser or the storage
// failed during the run.
func (r *Result) HasInternalErrors() bool {
	for _, o := range slices.Concat(r.SingleFile, r.WholeProject) {
		if o.Code() == CodeInternalError || o.Code() == CodeStorageError {
			return true
		}
	}
	return false
}

// Changed returns the corrections that modify their file.
func (r *Result) Changed() []Correction {
	var out []Correction
	for _, c := range r.Corrections {
		if c.Changed {
			out = append(out, c)
		}
	}
	return out
}

// Correction is the outcome of correcting one file.
type Correction struct {
	Path string

	// Original is the content the analysis read, Content the corrected
	// content in stored form.
	Original string
	Content  string
	Changed  bool

	// Passes counts correction passes that changed the content.
	Passes int

	Applied   int
	Conflicts []fix.Conflict
	Errors    []error

	// Written is set by WriteCorrections once storage accepted the content.
	Written bool

	// Skipped explains why WriteCorrections left the file alone.
	Skipped string
}

// Diff returns the unified diff of the correction.
func (c Correction) Diff() *fix.Diff {
	return fix.GenerateDiff(c.Path, c.Original, c.Content)
}
