// Package analyzer runs checks over a storage snapshot.
//
// An Analyzer moves through Idle, Parsing, SingleFilePass, WholeProjectPass,
// an optional Correcting phase, and Done. Parsing is parallel; every pass
// after it is sequential, so checks never need to synchronize. A check that
// panics is isolated to the file it failed on and turned into an
// InternalError offense.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/yaklabco/poscheck/internal/logging"
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/filetype"
	"github.com/yaklabco/poscheck/pkg/fix"
	"github.com/yaklabco/poscheck/pkg/storage"
)

// Sentinel errors.
var (
	// ErrAlreadyRun is returned when an analyzer is asked to run twice.
	ErrAlreadyRun = errors.New("analyzer already run")

	// ErrNotAnalyzed is returned when results are requested before an
	// analysis completed.
	ErrNotAnalyzed = errors.New("analysis has not completed")
)

// Codes of the offenses the analyzer raises itself.
const (
	CodeInternalError = "InternalError"
	CodeStorageError  = "StorageError"
)

// ProjectPath locates offenses that belong to no single file.
const ProjectPath = "."

// DefaultMaxFixPasses bounds the number of correction passes per file.
const DefaultMaxFixPasses = 10

// State is the lifecycle phase of an Analyzer.
type State int

// States.
const (
	StateIdle State = iota
	StateParsing
	StateSingleFilePass
	StateWholeProjectPass
	StateCorrecting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StateSingleFilePass:
		return "single_file_pass"
	case StateWholeProjectPass:
		return "whole_project_pass"
	case StateCorrecting:
		return "correcting"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options tune an Analyzer.
type Options struct {
	// Severities overrides the severity of checks by code.
	Severities map[string]check.Severity

	// Ignore drops offenses of the check with code in path.
	Ignore func(code, path string) bool

	// Exclude removes paths from the analysis entirely.
	Exclude func(path string) bool

	// Jobs bounds parsing concurrency. Zero uses GOMAXPROCS.
	Jobs int

	// Instantiate creates fresh checks for re-analysing corrected content.
	// Without it, Correct runs a single pass.
	Instantiate func() []check.Check

	// MaxFixPasses bounds correction passes per file. Zero uses
	// DefaultMaxFixPasses.
	MaxFixPasses int
}

func (o Options) jobs() int {
	if o.Jobs > 0 {
		return o.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) maxFixPasses() int {
	if o.MaxFixPasses > 0 {
		return o.MaxFixPasses
	}
	return DefaultMaxFixPasses
}

type pendingFix struct {
	code string
	fn   func(*fix.Corrector)
}

// Analyzer runs one analysis over one snapshot. It is not reusable.
type Analyzer struct {
	snap   *storage.Snapshot
	checks []check.Check
	set    *check.Set
	opts   Options
	runID  string

	mu    sync.Mutex
	state State

	files    map[string]*ast.File
	parsed   []*ast.File
	suppress map[string]*check.Suppressions

	result *Result
	fixes  map[string][]pendingFix

	// inProject routes reports to the whole-project list.
	inProject bool
}

// New creates an analyzer over snap running checks.
func New(snap *storage.Snapshot, checks []check.Check, opts Options) *Analyzer {
	runID := uuid.NewString()
	return &Analyzer{
		snap:     snap,
		checks:   checks,
		set:      check.NewSet(checks),
		opts:     opts,
		runID:    runID,
		files:    make(map[string]*ast.File),
		suppress: make(map[string]*check.Suppressions),
		fixes:    make(map[string][]pendingFix),
		result:   &Result{RunID: runID, Versions: make(map[string]int)},
	}
}

// RunID identifies the run in logs and results.
func (a *Analyzer) RunID() string {
	return a.runID
}

// State returns the current lifecycle phase.
func (a *Analyzer) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Analyzer) setState(ctx context.Context, s State) {
	a.mu.Lock()
	from := a.state
	a.state = s
	a.mu.Unlock()
	logging.FromContext(ctx).Debug("analyzer state", "from", from.String(), logging.FieldState, s.String())
}

// start moves an idle analyzer to Parsing.
func (a *Analyzer) start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateIdle {
		return ErrAlreadyRun
	}
	a.state = StateParsing
	return nil
}

// AnalyzeProject parses every analysable file and runs all passes.
func (a *Analyzer) AnalyzeProject(ctx context.Context) error {
	return a.analyze(ctx, a.analysable(), true, false)
}

// AnalyzeFiles runs the single-file pass over paths. Unless onlySingleFile
// is set, every analysable file is parsed as well and the whole-project
// pass runs over all of them.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string, onlySingleFile bool) error {
	paths = slices.Clone(paths)
	slices.Sort(paths)
	paths = slices.Compact(paths)
	return a.analyze(ctx, paths, false, onlySingleFile)
}

func (a *Analyzer) analyze(ctx context.Context, paths []string, all, onlySingleFile bool) error {
	if err := a.start(); err != nil {
		return err
	}
	ctx = logging.WithFields(ctx, logging.FieldRunID, a.runID)
	logger := logging.FromContext(ctx)
	logger.Debug("analyzer state", logging.FieldState, StateParsing.String(), logging.FieldFiles, len(paths))

	toParse := paths
	if !all && !onlySingleFile {
		toParse = mergeSorted(paths, a.analysable())
	}
	if err := a.parseAll(ctx, toParse); err != nil {
		a.setState(ctx, StateDone)
		return err
	}

	a.setState(ctx, StateSingleFilePass)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			a.setState(ctx, StateDone)
			return fmt.Errorf("analysis cancelled: %w", err)
		}
		a.result.Paths = append(a.result.Paths, p)
		if f, ok := a.files[p]; ok {
			a.result.Versions[p] = f.Version
			a.visit(ctx, f)
		} else if e, ok := a.snap.Entry(p); ok {
			a.result.Versions[p] = e.Version
		}
	}

	if !onlySingleFile {
		a.setState(ctx, StateWholeProjectPass)
		a.result.ProjectPass = true
		a.projectPass(ctx)
	}

	a.setState(ctx, StateDone)
	logger.Debug("analysis finished", logging.FieldOffenses, len(a.result.SingleFile)+len(a.result.WholeProject))
	return nil
}

// analysable lists the snapshot paths the checks can run on.
func (a *Analyzer) analysable() []string {
	return a.snap.List(func(p string) bool {
		if a.opts.Exclude != nil && a.opts.Exclude(p) {
			return false
		}
		if e, ok := a.snap.Entry(p); ok && !e.Loaded && e.Err == nil {
			return false
		}
		return filetype.IsAnalyzable(filetype.Classify(p).Category)
	})
}

func mergeSorted(a, b []string) []string {
	out := slices.Concat(a, b)
	slices.Sort(out)
	return slices.Compact(out)
}

// Offenses returns every offense found so far, sorted.
func (a *Analyzer) Offenses() []check.Offense {
	return a.result.Offenses()
}

// Result returns the outcome of a completed analysis.
func (a *Analyzer) Result() (*Result, error) {
	if a.State() != StateDone {
		return nil, ErrNotAnalyzed
	}
	return a.result, nil
}

// File returns the parsed file at path.
func (a *Analyzer) File(path string) (*ast.File, bool) {
	f, ok := a.files[path]
	return f, ok
}
