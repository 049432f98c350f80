package analyzer

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/yaklabco/poscheck/internal/logging"
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/fix"
	"github.com/yaklabco/poscheck/pkg/storage"
)

// Correct replays the fixes attached to offenses. Files are corrected
// independently; with Options.Instantiate set, a corrected file is analysed
// again with fresh checks and corrected until nothing changes or the pass
// limit is reached. Correct may be called once, after an analysis.
func (a *Analyzer) Correct(ctx context.Context) error {
	a.mu.Lock()
	switch {
	case a.state != StateDone:
		a.mu.Unlock()
		return ErrNotAnalyzed
	case a.result.Corrections != nil:
		a.mu.Unlock()
		return ErrAlreadyRun
	}
	a.state = StateCorrecting
	a.mu.Unlock()

	ctx = logging.WithFields(ctx, logging.FieldRunID, a.runID)
	logging.FromContext(ctx).Debug("analyzer state", logging.FieldState, StateCorrecting.String())
	defer a.setState(ctx, StateDone)

	paths := make([]string, 0, len(a.fixes))
	for p := range a.fixes {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	a.result.Corrections = make([]Correction, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("correction cancelled: %w", err)
		}
		a.result.Corrections = append(a.result.Corrections, a.correctFile(ctx, p))
	}
	return nil
}

func (a *Analyzer) correctFile(ctx context.Context, path string) Correction {
	f := a.files[path]
	original, _, _ := a.snap.Read(path)
	corr := Correction{Path: path, Original: original, Content: original}

	outcome, errs := a.replay(ctx, f, original, a.fixes[path])
	corr.merge(outcome, errs)
	if !outcome.Changed {
		return corr
	}

	for corr.Passes < a.opts.maxFixPasses() && a.opts.Instantiate != nil {
		next, ok := a.reanalyze(ctx, path, corr.Content)
		if !ok {
			break
		}
		outcome, errs = next.replay(ctx, next.files[path], corr.Content, next.fixes[path])
		if !outcome.Changed {
			break
		}
		corr.merge(outcome, errs)
	}

	corr.Changed = corr.Content != original
	logging.FromContext(ctx).Debug("corrected file",
		logging.FieldPath, path,
		logging.FieldEdits, corr.Applied,
		logging.FieldDropped, len(corr.Conflicts),
		"passes", corr.Passes,
	)
	return corr
}

func (c *Correction) merge(o fix.Outcome, errs []error) {
	c.Applied += len(o.Applied)
	c.Conflicts = append(c.Conflicts, o.Conflicts...)
	c.Errors = append(c.Errors, errs...)
	if o.Changed {
		c.Content = o.Content
		c.Passes++
		c.Changed = true
	}
}

// replay runs the fixes of one file against a fresh Corrector.
func (a *Analyzer) replay(ctx context.Context, f *ast.File, original string, fixes []pendingFix) (fix.Outcome, []error) {
	if f == nil || len(fixes) == 0 {
		return fix.Outcome{Content: original}, nil
	}

	corrector := fix.NewCorrector(f)
	var errs []error
	for _, pf := range fixes {
		corrector.SetCheck(pf.code)
		func() {
			defer func() {
				if r := recover(); r != nil {
					errs = append(errs, fmt.Errorf("fix of %s failed: %v", pf.code, r))
				}
			}()
			pf.fn(corrector)
		}()
	}

	outcome, err := corrector.Apply(original)
	if err != nil {
		errs = append(errs, err)
	}
	logger := logging.FromContext(ctx)
	for _, c := range outcome.Conflicts {
		logger.Debug("edit dropped", logging.FieldPath, f.Path, logging.FieldCheck, c.Dropped.Check, logging.FieldError, c.String())
	}
	if len(errs) > 0 {
		logger.Warn("invalid fixes", logging.FieldPath, f.Path, logging.FieldError, errors.Join(errs...))
	}
	return outcome, errs
}

// reanalyze runs the single-file pass of fresh checks over content.
func (a *Analyzer) reanalyze(ctx context.Context, path, content string) (*Analyzer, bool) {
	snap := storage.NewSnapshot(map[string]string{path: content})
	opts := a.opts
	opts.Instantiate = nil
	next := New(snap, a.opts.Instantiate(), opts)
	if err := next.AnalyzeFiles(ctx, []string{path}, true); err != nil {
		return nil, false
	}
	return next, len(next.fixes[path]) > 0
}

// WriteCorrections writes every changed correction to st. Files whose
// stored content no longer matches what the analysis read are skipped.
// Unchanged corrections never touch storage.
func (a *Analyzer) WriteCorrections(ctx context.Context, st storage.Storage) ([]string, error) {
	if a.State() != StateDone {
		return nil, ErrNotAnalyzed
	}
	if a.result.Corrections == nil {
		return nil, fmt.Errorf("%w: Correct was not called", ErrNotAnalyzed)
	}
	logger := logging.FromContext(ctx).With(logging.FieldRunID, a.runID)

	var written []string
	var errs []error
	for i := range a.result.Corrections {
		corr := &a.result.Corrections[i]
		if !corr.Changed {
			continue
		}
		if err := ctx.Err(); err != nil {
			return written, fmt.Errorf("write cancelled: %w", err)
		}

		current, err := st.Read(corr.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", corr.Path, err))
			continue
		}
		if current != corr.Original {
			corr.Skipped = "file modified during analysis"
			logger.Warn("skipping correction", logging.FieldPath, corr.Path, "reason", corr.Skipped)
			continue
		}

		if err := st.Write(corr.Path, corr.Content); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", corr.Path, err))
			continue
		}
		corr.Written = true
		written = append(written, corr.Path)
		logger.Info("corrected", logging.FieldPath, corr.Path, logging.FieldEdits, corr.Applied)
	}
	return written, errors.Join(errs...)
}
