package analyzer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/poscheck/internal/logging"
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
)

type parsed struct {
	file     *ast.File
	suppress *check.Suppressions
	err      error
	crash    any
}

// parseAll parses paths concurrently over the immutable snapshot and then
// records the results in path order.
func (a *Analyzer) parseAll(ctx context.Context, paths []string) error {
	out := make([]parsed, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.jobs())
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = a.parse(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("parsing cancelled: %w", err)
	}

	logger := logging.FromContext(ctx)
	for i, p := range paths {
		res := out[i]
		if res.crash != nil {
			logger.Warn("parser failed", logging.FieldPath, p, logging.FieldError, res.crash)
			a.add(check.NewOffense(CodeInternalError, check.SeverityError,
				fmt.Sprintf("Parser failed: %v", res.crash),
				check.Location{Path: p}, false))
			continue
		}
		if res.err != nil {
			logger.Error("failed to read file", logging.FieldPath, p, logging.FieldError, res.err)
			a.add(check.NewOffense(CodeStorageError, check.SeverityError,
				fmt.Sprintf("Could not read file: %v", res.err),
				check.Location{Path: p}, false))
			continue
		}
		a.files[p] = res.file
		a.parsed = append(a.parsed, res.file)
		if !res.suppress.Empty() {
			a.suppress[p] = res.suppress
		}
	}
	return nil
}

func (a *Analyzer) parse(p string) (res parsed) {
	content, version, err := a.snap.Read(p)
	if err != nil {
		return parsed{err: err}
	}
	defer func() {
		if r := recover(); r != nil {
			res = parsed{crash: r}
		}
	}()
	f := ast.Parse(p, content, version)
	return parsed{file: f, suppress: check.ScanSuppressions(f)}
}

// visit runs the single-file pass over f: every tree is walked once and
// events go to the subscribed handlers, then FileEnders run.
func (a *Analyzer) visit(ctx context.Context, f *ast.File) {
	failed := make(map[check.Check]bool)
	contexts := make(map[check.Check]*check.Context)
	contextFor := func(c check.Check) *check.Context {
		cctx, ok := contexts[c]
		if !ok {
			cctx = check.NewContext(ctx, c, f, a.sink)
			contexts[c] = cctx
		}
		return cctx
	}

	dispatch := func(d *check.Dispatcher, n *ast.Node, phase check.Phase) {
		for _, ev := range check.Events(n, phase) {
			for _, h := range d.Handlers(ev) {
				if failed[h] {
					continue
				}
				if !a.guard(ctx, h, f, n, func() { h.HandleNode(contextFor(h), ev, n) }) {
					failed[h] = true
				}
			}
		}
	}

	for _, root := range f.Roots() {
		d := a.set.Dispatcher(check.TreeCategory(f, root))
		if d.Empty() {
			continue
		}
		ast.Walk(root,
			func(n *ast.Node) { dispatch(d, n, check.PhaseOn) },
			func(n *ast.Node) { dispatch(d, n, check.PhaseAfter) },
		)
	}

	for _, c := range a.set.ForFile(f.Category) {
		ender, ok := c.(check.FileEnder)
		if !ok || failed[c] {
			continue
		}
		a.guard(ctx, c, f, nil, func() { ender.EndFile(contextFor(c), f) })
	}
}

func (a *Analyzer) projectPass(ctx context.Context) {
	a.inProject = true
	defer func() { a.inProject = false }()

	for _, p := range a.set.Project() {
		if ctx.Err() != nil {
			return
		}
		pctx := check.NewProjectContext(ctx, p, a.parsed, a.snap, a.sink)
		a.guard(ctx, p, nil, nil, func() { p.CheckProject(pctx) })
	}
}

// sink turns a check report into an offense, applying configuration and
// inline suppressions, and keeps its fix for the correcting phase.
func (a *Analyzer) sink(c check.Check, f *ast.File, r check.Report) {
	meta := c.Meta()
	if f == nil {
		a.sinkProject(meta, r)
		return
	}
	if a.opts.Ignore != nil && a.opts.Ignore(meta.Code, f.Path) {
		return
	}
	span := r.SpanIn(f)
	if a.suppress[f.Path].Suppressed(meta.Code, span.Start) {
		return
	}

	a.add(check.NewOffense(meta.Code, a.severity(meta, r), r.Message, check.Location{
		Path:    f.Path,
		Version: f.Version,
		Start:   f.Position(span.Start),
		End:     f.Position(span.End),
	}, r.Fix != nil))

	if r.Fix != nil {
		a.fixes[f.Path] = append(a.fixes[f.Path], pendingFix{code: meta.Code, fn: r.Fix})
	}
}

// sinkProject records a report that names no file at ProjectPath. Such
// offenses carry no fix.
func (a *Analyzer) sinkProject(meta check.Meta, r check.Report) {
	if a.opts.Ignore != nil && a.opts.Ignore(meta.Code, ProjectPath) {
		return
	}
	a.add(check.NewOffense(meta.Code, a.severity(meta, r), r.Message, check.Location{Path: ProjectPath}, false))
}

func (a *Analyzer) severity(meta check.Meta, r check.Report) check.Severity {
	severity := meta.Severity
	if override, ok := a.opts.Severities[meta.Code]; ok {
		severity = override
	}
	if r.Severity != "" {
		severity = r.Severity
	}
	return severity
}

func (a *Analyzer) add(o check.Offense) {
	if a.inProject {
		a.result.WholeProject = append(a.result.WholeProject, o)
		return
	}
	a.result.SingleFile = append(a.result.SingleFile, o)
}

// guard runs fn and converts a panic into an InternalError offense naming
// the check. It reports whether fn completed.
func (a *Analyzer) guard(ctx context.Context, c check.Check, f *ast.File, n *ast.Node, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			a.internalError(ctx, c.Meta().Code, f, n, r)
		}
	}()
	fn()
	return true
}

func (a *Analyzer) internalError(ctx context.Context, code string, f *ast.File, n *ast.Node, detail any) {
	loc := check.Location{Path: ProjectPath}
	excerpt := ""
	if f != nil {
		loc = check.Location{Path: f.Path, Version: f.Version}
		if n != nil {
			loc.Start, loc.End = n.Start(), n.End()
		}
		excerpt = f.SourceExcerpt(loc.Start.Line)
	}

	logging.FromContext(ctx).Warn("check failed",
		logging.FieldCheck, code,
		logging.FieldPath, loc.Path,
		logging.FieldError, detail,
	)

	msg := fmt.Sprintf("Check %s failed: %v", code, detail)
	if excerpt != "" {
		msg = fmt.Sprintf("Check %s failed on %q: %v", code, excerpt, detail)
	}
	a.add(check.NewOffense(CodeInternalError, check.SeverityError, msg, loc, false))
}
