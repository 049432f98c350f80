package analyzer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/poscheck/pkg/analyzer"
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/filetype"
	"github.com/yaklabco/poscheck/pkg/fix"
	"github.com/yaklabco/poscheck/pkg/storage"
)

var liquidOnly = []filetype.Category{filetype.Liquid}

// traceCheck records every event it receives.
type traceCheck struct {
	check.Base
	trace []string
}

func newTrace() *traceCheck {
	return &traceCheck{Base: check.NewBase(check.Meta{Code: "Trace", Severity: check.SeverityStyle, Categories: liquidOnly})}
}

func (c *traceCheck) Subscriptions() []check.Event {
	return []check.Event{check.On(check.KindNode), check.After(check.KindNode)}
}

func (c *traceCheck) HandleNode(_ *check.Context, ev check.Event, n *ast.Node) {
	c.trace = append(c.trace, ev.String()+":"+n.Kind())
}

func (c *traceCheck) EndFile(_ *check.Context, f *ast.File) {
	c.trace = append(c.trace, "end:"+f.Path)
}

// variableCheck reports every Liquid variable.
type variableCheck struct{ check.Base }

func newVariableCheck(code string) *variableCheck {
	return &variableCheck{check.NewBase(check.Meta{Code: code, Severity: check.SeveritySuggestion, Categories: liquidOnly})}
}

func (c *variableCheck) Subscriptions() []check.Event {
	return []check.Event{check.On(ast.KindVariable)}
}

func (c *variableCheck) HandleNode(ctx *check.Context, _ check.Event, n *ast.Node) {
	ctx.Report(check.Report{Message: "variable " + n.Markup(), Node: n})
}

// panicCheck fails on render tags and reports variables otherwise.
type panicCheck struct{ check.Base }

func (c *panicCheck) Subscriptions() []check.Event {
	return []check.Event{check.On("render"), check.On(ast.KindVariable)}
}

func (c *panicCheck) HandleNode(ctx *check.Context, ev check.Event, n *ast.Node) {
	if ev.Kind == "render" {
		panic("boom")
	}
	ctx.Report(check.Report{Message: "seen", Node: n})
}

// spaceFix pads variables written without inner spaces.
type spaceFix struct{ check.Base }

func newSpaceFix() *spaceFix {
	return &spaceFix{check.NewBase(check.Meta{Code: "SpaceFix", Severity: check.SeverityStyle, Categories: liquidOnly, Correctable: true})}
}

func (c *spaceFix) Subscriptions() []check.Event { return []check.Event{check.On(ast.KindVariable)} }

func (c *spaceFix) HandleNode(ctx *check.Context, _ check.Event, n *ast.Node) {
	src := n.Source()
	if strings.HasPrefix(src, "{{ ") {
		return
	}
	text := "{{ " + n.Markup() + " }}"
	ctx.Report(check.Report{
		Message: "missing spaces",
		Node:    n,
		Fix:     func(c *fix.Corrector) { c.ReplaceNode(n, text) },
	})
}

// upperFix upper-cases variable markup.
type upperFix struct{ check.Base }

func newUpperFix(code string) *upperFix {
	return &upperFix{check.NewBase(check.Meta{Code: code, Severity: check.SeverityStyle, Categories: liquidOnly, Correctable: true})}
}

func (c *upperFix) Subscriptions() []check.Event { return []check.Event{check.On(ast.KindVariable)} }

func (c *upperFix) HandleNode(ctx *check.Context, _ check.Event, n *ast.Node) {
	markup := n.Markup()
	if markup == strings.ToUpper(markup) {
		return
	}
	span := n.MarkupSpan()
	upper := strings.ToUpper(markup)
	ctx.Report(check.Report{
		Message: "lower case",
		Node:    n,
		Fix:     func(c *fix.Corrector) { c.Replace(span.Start, span.End, upper) },
	})
}

// fileCounter reports once per project on the first file.
type fileCounter struct {
	check.Base
	seen int
}

func newFileCounter() *fileCounter {
	return &fileCounter{Base: check.NewBase(check.Meta{Code: "Counter", Severity: check.SeverityError, Categories: liquidOnly, WholeProject: true})}
}

func (c *fileCounter) CheckProject(ctx *check.ProjectContext) {
	c.seen = len(ctx.Files())
	if len(ctx.Files()) > 0 {
		ctx.Report(ctx.Files()[0], check.Report{Message: "project"})
	}
}

func codes(offenses []check.Offense) []string {
	out := make([]string, len(offenses))
	for i, o := range offenses {
		out[i] = o.Code()
	}
	return out
}

func TestStateMachine(t *testing.T) {
	t.Parallel()

	a := analyzer.New(storage.NewSnapshot(map[string]string{"app/views/pages/a.liquid": "x"}), nil, analyzer.Options{})
	assert.Equal(t, analyzer.StateIdle, a.State())

	_, err := a.Result()
	require.ErrorIs(t, err, analyzer.ErrNotAnalyzed)
	require.ErrorIs(t, a.Correct(context.Background()), analyzer.ErrNotAnalyzed)

	require.NoError(t, a.AnalyzeProject(context.Background()))
	assert.Equal(t, analyzer.StateDone, a.State())
	assert.NotEmpty(t, a.RunID())

	require.ErrorIs(t, a.AnalyzeProject(context.Background()), analyzer.ErrAlreadyRun)
	require.ErrorIs(t, a.AnalyzeFiles(context.Background(), nil, true), analyzer.ErrAlreadyRun)

	res, err := a.Result()
	require.NoError(t, err)
	assert.Empty(t, res.Offenses())
	assert.Equal(t, []string{"app/views/pages/a.liquid"}, res.Paths)
}

func TestTraversalOrder(t *testing.T) {
	t.Parallel()

	trace := newTrace()
	snap := storage.NewSnapshot(map[string]string{
		"app/views/pages/a.liquid": "{% if a %}{{ b }}{% endif %}",
	})
	a := analyzer.New(snap, []check.Check{trace}, analyzer.Options{})
	require.NoError(t, a.AnalyzeProject(context.Background()))

	assert.Equal(t, []string{
		"on_node:document",
		"on_node:if",
		"on_node:variable",
		"after_node:variable",
		"after_node:if",
		"after_node:document",
		"end:app/views/pages/a.liquid",
	}, trace.trace)
}

func TestEmptyFileIsVisited(t *testing.T) {
	t.Parallel()

	trace := newTrace()
	counter := newFileCounter()
	snap := storage.NewSnapshot(map[string]string{"app/views/partials/empty.liquid": ""})
	a := analyzer.New(snap, []check.Check{trace, counter}, analyzer.Options{})
	require.NoError(t, a.AnalyzeProject(context.Background()))

	assert.Equal(t, []string{"on_node:document", "after_node:document", "end:app/views/partials/empty.liquid"}, trace.trace)
	assert.Equal(t, 1, counter.seen)
}

func TestCheckPanicIsIsolated(t *testing.T) {
	t.Parallel()

	panicky := &panicCheck{check.NewBase(check.Meta{Code: "Panicky", Severity: check.SeverityError, Categories: liquidOnly})}
	vars := newVariableCheck("Vars")
	snap := storage.NewSnapshot(map[string]string{
		"app/views/pages/a.liquid": "{% render 'card' %}\n{{ a }}",
		"app/views/pages/b.liquid": "{{ b }}",
	})
	a := analyzer.New(snap, []check.Check{panicky, vars}, analyzer.Options{})
	require.NoError(t, a.AnalyzeProject(context.Background()))

	offenses := a.Offenses()
	require.Equal(t, []string{"InternalError", "Vars", "Panicky", "Vars"}, codes(offenses))

	internal := offenses[0]
	assert.Equal(t, "app/views/pages/a.liquid", internal.Path())
	assert.Equal(t, check.SeverityError, internal.Severity())
	assert.Contains(t, internal.Message(), "Panicky")
	assert.Contains(t, internal.Message(), "{% render 'card' %}")
	assert.Contains(t, internal.Message(), "boom")

	assert.Equal(t, "app/views/pages/b.liquid", offenses[2].Path(), "the failing check still runs on other files")

	res, err := a.Result()
	require.NoError(t, err)
	assert.True(t, res.HasInternalErrors())
}

type brokenStorage struct {
	storage.Storage
	broken string
}

func (s brokenStorage) Read(path string) (string, error) {
	if path == s.broken {
		return "", errors.New("disk on fire")
	}
	return s.Storage.Read(path)
}

func TestStorageFailureBecomesOffense(t *testing.T) {
	t.Parallel()

	base := storage.NewInMemory(map[string]string{
		"app/views/pages/a.liquid": "{{ a }}",
		"app/views/pages/b.liquid": "{{ b }}",
	})
	snap := storage.Take(brokenStorage{Storage: base, broken: "app/views/pages/a.liquid"}, nil)

	a := analyzer.New(snap, []check.Check{newVariableCheck("Vars")}, analyzer.Options{})
	require.NoError(t, a.AnalyzeProject(context.Background()))

	offenses := a.Offenses()
	require.Len(t, offenses, 2)
	assert.Equal(t, analyzer.CodeStorageError, offenses[0].Code())
	assert.Contains(t, offenses[0].Message(), "disk on fire")
	assert.Equal(t, "Vars", offenses[1].Code())
	assert.Equal(t, "app/views/pages/b.liquid", offenses[1].Path())
}

func TestMissingPathIsStorageError(t *testing.T) {
	t.Parallel()

	a := analyzer.New(storage.NewSnapshot(nil), nil, analyzer.Options{})
	require.NoError(t, a.AnalyzeFiles(context.Background(), []string{"app/views/pages/gone.liquid"}, true))

	offenses := a.Offenses()
	require.Len(t, offenses, 1)
	assert.Equal(t, analyzer.CodeStorageError, offenses[0].Code())
}

func TestOnlySingleFileSkipsProjectPass(t *testing.T) {
	t.Parallel()

	snap := storage.NewSnapshot(map[string]string{
		"app/views/pages/a.liquid": "{{ a }}",
		"app/views/pages/b.liquid": "{{ b }}",
	})

	counter := newFileCounter()
	single := analyzer.New(snap, []check.Check{counter, newVariableCheck("Vars")}, analyzer.Options{})
	require.NoError(t, single.AnalyzeFiles(context.Background(), []string{"app/views/pages/a.liquid"}, true))
	assert.Equal(t, 0, counter.seen)
	assert.Equal(t, []string{"Vars"}, codes(single.Offenses()))

	counter = newFileCounter()
	project := analyzer.New(snap, []check.Check{counter, newVariableCheck("Vars")}, analyzer.Options{})
	require.NoError(t, project.AnalyzeFiles(context.Background(), []string{"app/views/pages/a.liquid"}, false))
	assert.Equal(t, 2, counter.seen, "the whole-project pass sees every file")

	res, err := project.Result()
	require.NoError(t, err)
	assert.True(t, res.ProjectPass)
	assert.Equal(t, []string{"app/views/pages/a.liquid"}, res.Paths)
	assert.Len(t, res.SingleFile, 1)
	assert.Len(t, res.WholeProject, 1)
}

type projectWide struct{ check.Base }

func (c *projectWide) CheckProject(ctx *check.ProjectContext) {
	ctx.Report(nil, check.Report{Message: "no translations found"})
}

func TestProjectReportWithoutFileUsesProjectPath(t *testing.T) {
	t.Parallel()

	wide := &projectWide{Base: check.NewBase(check.Meta{
		Code: "ProjectWide", Severity: check.SeveritySuggestion, Categories: liquidOnly, WholeProject: true,
	})}
	snap := storage.NewSnapshot(map[string]string{"app/views/pages/a.liquid": "{{ a }}"})
	a := analyzer.New(snap, []check.Check{wide}, analyzer.Options{})
	require.NoError(t, a.AnalyzeProject(context.Background()))

	offenses := a.Offenses()
	require.Len(t, offenses, 1)
	assert.Equal(t, analyzer.ProjectPath, offenses[0].Path())
	assert.Equal(t, "no translations found", offenses[0].Message())
	assert.Equal(t, check.SeveritySuggestion, offenses[0].Severity())

	ignored := analyzer.New(snap, []check.Check{wide}, analyzer.Options{
		Ignore: func(code, path string) bool { return path == analyzer.ProjectPath },
	})
	require.NoError(t, ignored.AnalyzeProject(context.Background()))
	assert.Empty(t, ignored.Offenses())
}

func TestOffensesAreSorted(t *testing.T) {
	t.Parallel()

	snap := storage.NewSnapshot(map[string]string{
		"app/views/pages/b.liquid": "{{ z }}{{ y }}",
		"app/views/pages/a.liquid": "\n\n{{ x }}",
	})
	a := analyzer.New(snap, []check.Check{newVariableCheck("Vars")}, analyzer.Options{})
	require.NoError(t, a.AnalyzeProject(context.Background()))

	var rendered []string
	for _, o := range a.Offenses() {
		rendered = append(rendered, o.String())
	}
	assert.Equal(t, []string{
		"app/views/pages/a.liquid:3:1: variable x [Vars]",
		"app/views/pages/b.liquid:1:1: variable z [Vars]",
		"app/views/pages/b.liquid:1:8: variable y [Vars]",
	}, rendered)
}

func TestSeverityOverridesIgnoresAndSuppressions(t *testing.T) {
	t.Parallel()

	snap := storage.NewSnapshot(map[string]string{
		"app/views/pages/a.liquid":    "{{ a }}\n{% comment %}platformos-check-disable Vars{% endcomment %}\n{{ hidden }}",
		"app/views/partials/b.liquid": "{{ b }}",
	})
	a := analyzer.New(snap, []check.Check{newVariableCheck("Vars")}, analyzer.Options{
		Severities: map[string]check.Severity{"Vars": check.SeverityError},
		Ignore: func(code, path string) bool {
			return code == "Vars" && strings.HasPrefix(path, "app/views/partials/")
		},
	})
	require.NoError(t, a.AnalyzeProject(context.Background()))

	offenses := a.Offenses()
	require.Len(t, offenses, 1)
	assert.Equal(t, "variable a", offenses[0].Message())
	assert.Equal(t, check.SeverityError, offenses[0].Severity())
}

func TestCorrectPreservesLineEndingsAndReachesFixedPoint(t *testing.T) {
	t.Parallel()

	const path = "app/views/pages/a.liquid"
	st := storage.NewVersioned()
	require.NoError(t, st.Write(path, "{{a}}\r\n{{ b }}\r\n"))

	run := func() *analyzer.Result {
		a := analyzer.New(st.Snapshot(), []check.Check{newSpaceFix()}, analyzer.Options{})
		require.NoError(t, a.AnalyzeProject(context.Background()))
		require.NoError(t, a.Correct(context.Background()))
		_, err := a.WriteCorrections(context.Background(), st)
		require.NoError(t, err)
		res, err := a.Result()
		require.NoError(t, err)
		return res
	}

	first := run()
	require.Len(t, first.Corrections, 1)
	assert.True(t, first.Corrections[0].Changed)
	assert.True(t, first.Corrections[0].Written)
	assert.Equal(t, 1, first.Offenses()[0].Start().Line+1)
	assert.True(t, first.Offenses()[0].Correctable())

	content, err := st.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "{{ a }}\r\n{{ b }}\r\n", content)
	assert.Equal(t, 2, st.Version(path))

	second := run()
	assert.Empty(t, second.Offenses())
	assert.Empty(t, second.Changed())
	assert.Equal(t, 2, st.Version(path), "a clean run never writes")
}

func TestCorrectWithoutOffensesLeavesStorageAlone(t *testing.T) {
	t.Parallel()

	const path = "app/views/pages/a.liquid"
	st := storage.NewVersioned()
	require.NoError(t, st.Write(path, "\uFEFF{{ a }}\r\n"))

	a := analyzer.New(st.Snapshot(), []check.Check{newSpaceFix()}, analyzer.Options{})
	require.NoError(t, a.AnalyzeProject(context.Background()))
	require.NoError(t, a.Correct(context.Background()))
	require.ErrorIs(t, a.Correct(context.Background()), analyzer.ErrAlreadyRun)

	written, err := a.WriteCorrections(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.Equal(t, 1, st.Version(path))

	content, err := st.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "\uFEFF{{ a }}\r\n", content)
}

func TestConflictingFixesFirstRegisteredWins(t *testing.T) {
	t.Parallel()

	snap := storage.NewSnapshot(map[string]string{"app/views/pages/a.liquid": "{{a}}"})
	a := analyzer.New(snap, []check.Check{newSpaceFix(), newUpperFix("Upper")}, analyzer.Options{})
	require.NoError(t, a.AnalyzeProject(context.Background()))
	require.NoError(t, a.Correct(context.Background()))

	res, err := a.Result()
	require.NoError(t, err)
	require.Len(t, res.Corrections, 1)
	corr := res.Corrections[0]

	assert.Equal(t, "{{ a }}", corr.Content)
	assert.Equal(t, 1, corr.Applied)
	require.Len(t, corr.Conflicts, 1)
	assert.Equal(t, "Upper", corr.Conflicts[0].Dropped.Check)
	assert.Equal(t, "SpaceFix", corr.Conflicts[0].Kept.Check)
}

func TestCorrectRunsMorePasses(t *testing.T) {
	t.Parallel()

	const path = "app/views/pages/a.liquid"
	st := storage.NewInMemory(map[string]string{path: "{{a}}\n"})
	fresh := func() []check.Check { return []check.Check{newSpaceFix(), newUpperFix("Upper")} }

	a := analyzer.New(storage.Take(st, nil), fresh(), analyzer.Options{Instantiate: fresh})
	require.NoError(t, a.AnalyzeProject(context.Background()))
	require.NoError(t, a.Correct(context.Background()))

	res, err := a.Result()
	require.NoError(t, err)
	require.Len(t, res.Corrections, 1)
	corr := res.Corrections[0]
	assert.Equal(t, "{{ A }}\n", corr.Content)
	assert.Equal(t, 2, corr.Passes)
	assert.Equal(t, 2, corr.Applied)
	assert.Contains(t, corr.Diff().String(), "+{{ A }}")
}

func TestWriteSkipsFilesChangedDuringAnalysis(t *testing.T) {
	t.Parallel()

	const path = "app/views/pages/a.liquid"
	st := storage.NewInMemory(map[string]string{path: "{{a}}"})

	a := analyzer.New(storage.Take(st, nil), []check.Check{newSpaceFix()}, analyzer.Options{})
	require.NoError(t, a.AnalyzeProject(context.Background()))
	require.NoError(t, a.Correct(context.Background()))

	require.NoError(t, st.Write(path, "{{b}}"))
	written, err := a.WriteCorrections(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, written)

	res, err := a.Result()
	require.NoError(t, err)
	assert.NotEmpty(t, res.Corrections[0].Skipped)

	content, err := st.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "{{b}}", content)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := analyzer.New(storage.NewSnapshot(map[string]string{"app/views/pages/a.liquid": "x"}), nil, analyzer.Options{})
	err := a.AnalyzeProject(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
