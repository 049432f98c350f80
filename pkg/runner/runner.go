package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/poscheck/internal/logging"
	"github.com/yaklabco/poscheck/pkg/analyzer"
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/config"
	"github.com/yaklabco/poscheck/pkg/fsutil"
	"github.com/yaklabco/poscheck/pkg/storage"
)

// Run analyses the project described by opts. With Config.Fix set it
// corrects offenses; unless Config.DryRun is set as well the corrections
// are written and the project is analysed again, so the result reports
// what remains.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.config()

	root, err := ResolveRoot(opts.Root)
	if err != nil {
		return nil, err
	}

	sel, err := NewSelection(cfg)
	if err != nil {
		return nil, err
	}

	st := opts.Storage
	if st == nil {
		st = newFileSystem(root, cfg)
	}

	logger := logging.FromContext(ctx).With(logging.FieldRoot, root)
	ctx = logging.WithLogger(ctx, logger)

	aopts, err := AnalyzerOptions(cfg, opts.registry(), sel)
	if err != nil {
		return nil, err
	}

	snap := storage.Take(st, sel.Load)

	var targets []string
	if len(opts.Paths) > 0 {
		targets, err = Targets(ctx, root, opts.Paths, snap, sel.Load)
		if err != nil {
			return nil, err
		}
	}

	first, err := analyze(ctx, snap, targets, aopts)
	if err != nil {
		return nil, err
	}
	res, err := first.Result()
	if err != nil {
		return nil, fmt.Errorf("analysis result: %w", err)
	}

	result := &Result{
		RunID:    res.RunID,
		Root:     root,
		Offenses: res.Offenses(),
		Files:    files(first, res),
	}
	result.Stats.FilesAnalyzed = len(res.Paths)

	if cfg.Fix {
		if err := correct(ctx, first, st, cfg, result); err != nil {
			return nil, err
		}

		if len(result.Written) > 0 {
			final, err := analyze(ctx, storage.Take(st, sel.Load), targets, aopts)
			if err != nil {
				return nil, err
			}
			finalRes, err := final.Result()
			if err != nil {
				return nil, fmt.Errorf("analysis result: %w", err)
			}
			result.Offenses = finalRes.Offenses()
			result.Files = files(final, finalRes)
		}
	}

	result.tally(opts.failLevel())
	logger.Info("analysis complete",
		logging.FieldRunID, result.RunID,
		logging.FieldFiles, result.Stats.FilesAnalyzed,
		logging.FieldOffenses, result.Stats.Offenses,
	)
	return result, nil
}

func newFileSystem(root string, cfg *config.Config) *storage.FileSystem {
	backup := fsutil.BackupConfig{
		Enabled: cfg.BackupsEnabled(),
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}
	return storage.NewFileSystem(root, storage.WithBackup(backup))
}

// AnalyzerOptions translates configuration into analyzer options.
func AnalyzerOptions(cfg *config.Config, registry *check.Registry, sel *Selection) (analyzer.Options, error) {
	severities := make(map[string]check.Severity)
	ignores := make(map[string]*config.Matcher)

	for _, code := range registry.Codes() {
		if raw, ok := cfg.SeverityOverride(code); ok {
			sev, err := check.ParseSeverity(raw)
			if err != nil {
				return analyzer.Options{}, fmt.Errorf("%s.severity: %w", code, err)
			}
			severities[code] = sev
		}
		if patterns := cfg.CheckIgnore(code); len(patterns) > 0 {
			m, err := config.CompileGlobs(patterns)
			if err != nil {
				return analyzer.Options{}, fmt.Errorf("%s.ignore: %w", code, err)
			}
			ignores[code] = m
		}
	}

	enabled := func(m check.Meta) bool { return cfg.CheckEnabled(m.Code) }

	return analyzer.Options{
		Severities: severities,
		Ignore: func(code, path string) bool {
			return ignores[code].Match(path)
		},
		Exclude:     sel.Ignored,
		Jobs:        cfg.Jobs,
		Instantiate: func() []check.Check { return registry.Instantiate(enabled) },
	}, nil
}

// analyze runs one analyzer over snap, limited to targets when non-nil.
func analyze(ctx context.Context, snap *storage.Snapshot, targets []string, opts analyzer.Options) (*analyzer.Analyzer, error) {
	a := analyzer.New(snap, opts.Instantiate(), opts)

	var err error
	if targets == nil {
		err = a.AnalyzeProject(ctx)
	} else {
		err = a.AnalyzeFiles(ctx, targets, false)
	}
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return a, nil
}

// correct computes corrections and, outside dry-run mode, writes them.
func correct(ctx context.Context, a *analyzer.Analyzer, st storage.Storage, cfg *config.Config, result *Result) error {
	if err := a.Correct(ctx); err != nil {
		return fmt.Errorf("correct: %w", err)
	}

	if !cfg.DryRun {
		written, err := a.WriteCorrections(ctx, st)
		result.Written = written
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			result.Errors = append(result.Errors, err)
		}
	}

	res, err := a.Result()
	if err != nil {
		return fmt.Errorf("analysis result: %w", err)
	}
	result.Corrections = res.Corrections
	return nil
}

// files collects the parsed files of every path with offenses.
func files(a *analyzer.Analyzer, res *analyzer.Result) map[string]*ast.File {
	out := make(map[string]*ast.File)
	for _, o := range res.Offenses() {
		if _, done := out[o.Path()]; done {
			continue
		}
		if f, ok := a.File(o.Path()); ok {
			out[o.Path()] = f
		}
	}
	return out
}
