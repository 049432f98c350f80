// Package analysis aggregates offenses per check and per file.
package analysis

import (
	"cmp"
	"maps"
	"slices"

	"github.com/yaklabco/poscheck/pkg/check"
)

// CheckTotals aggregates the offenses of one check.
type CheckTotals struct {
	Code        string                 `json:"code"`
	Offenses    int                    `json:"offenses"`
	Correctable int                    `json:"correctable"`
	BySeverity  map[check.Severity]int `json:"bySeverity"`
	Files       []string               `json:"files"`

	worst check.Severity
}

// FileTotals aggregates the offenses of one file.
type FileTotals struct {
	Path       string                 `json:"path"`
	Offenses   int                    `json:"offenses"`
	BySeverity map[check.Severity]int `json:"bySeverity"`
	Checks     []string               `json:"checks"`

	worst check.Severity
}

// Report holds the per-check and per-file views of a set of offenses.
type Report struct {
	ByCheck []CheckTotals `json:"byCheck"`
	ByFile  []FileTotals  `json:"byFile"`
}

// Analyze aggregates offenses in a single pass.
func Analyze(offenses []check.Offense, opts Options) *Report {
	checks := make(map[string]*CheckTotals)
	files := make(map[string]*FileTotals)
	checkFiles := make(map[string]map[string]bool)
	fileChecks := make(map[string]map[string]bool)

	for _, o := range offenses {
		ct, ok := checks[o.Code()]
		if !ok {
			ct = &CheckTotals{Code: o.Code(), BySeverity: make(map[check.Severity]int)}
			checks[o.Code()] = ct
			checkFiles[o.Code()] = make(map[string]bool)
		}
		ft, ok := files[o.Path()]
		if !ok {
			ft = &FileTotals{Path: o.Path(), BySeverity: make(map[check.Severity]int)}
			files[o.Path()] = ft
			fileChecks[o.Path()] = make(map[string]bool)
		}

		ct.Offenses++
		ct.BySeverity[o.Severity()]++
		ct.worst = worse(ct.worst, o.Severity())
		if o.Correctable() {
			ct.Correctable++
		}
		checkFiles[o.Code()][o.Path()] = true

		ft.Offenses++
		ft.BySeverity[o.Severity()]++
		ft.worst = worse(ft.worst, o.Severity())
		fileChecks[o.Path()][o.Code()] = true
	}

	report := &Report{
		ByCheck: make([]CheckTotals, 0, len(checks)),
		ByFile:  make([]FileTotals, 0, len(files)),
	}
	for code, ct := range checks {
		ct.Files = slices.Sorted(maps.Keys(checkFiles[code]))
		report.ByCheck = append(report.ByCheck, *ct)
	}
	for p, ft := range files {
		ft.Checks = slices.Sorted(maps.Keys(fileChecks[p]))
		report.ByFile = append(report.ByFile, *ft)
	}

	slices.SortFunc(report.ByCheck, func(a, b CheckTotals) int {
		return compare(opts, a.Offenses, b.Offenses, a.worst, b.worst, a.Code, b.Code)
	})
	slices.SortFunc(report.ByFile, func(a, b FileTotals) int {
		return compare(opts, a.Offenses, b.Offenses, a.worst, b.worst, a.Path, b.Path)
	})
	return report
}

func worse(a, b check.Severity) check.Severity {
	if a == "" || b.Rank() < a.Rank() {
		return b
	}
	return a
}

func compare(opts Options, countA, countB int, sevA, sevB check.Severity, nameA, nameB string) int {
	var c int
	switch opts.SortBy {
	case SortByCount:
		c = cmp.Compare(countA, countB)
		if opts.SortDesc {
			c = -c
		}
	case SortBySeverity:
		c = cmp.Compare(sevA.Rank(), sevB.Rank())
	case SortByAlpha:
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(nameA, nameB)
}
