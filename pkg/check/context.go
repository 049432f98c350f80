package check

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/poscheck/internal/logging"
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/fix"
)

// Report is what a check hands to Context.Report.
type Report struct {
	Message string

	// Node locates the offense. Span, when set, takes precedence. With
	// neither, the offense sits at the start of the file.
	Node *ast.Node
	Span *ast.Span

	// Severity overrides the check's severity for this offense.
	Severity Severity

	// Fix registers the edits that correct the offense. It is replayed
	// against a fresh Corrector in the correcting phase, so it must only
	// capture offsets and values, never the corrector.
	Fix func(*fix.Corrector)
}

// SpanIn resolves where r applies inside f.
func (r Report) SpanIn(f *ast.File) ast.Span {
	switch {
	case r.Span != nil:
		return *r.Span
	case r.Node != nil:
		return r.Node.Span()
	default:
		return ast.Span{}
	}
}

// Sink receives reports on behalf of the analyzer.
type Sink func(c Check, f *ast.File, r Report)

// Context is handed to single-file callbacks. It is valid for one check on
// one file.
type Context struct {
	ctx   context.Context
	check Check
	file  *ast.File
	sink  Sink
}

// NewContext returns a context reporting to sink.
func NewContext(ctx context.Context, c Check, f *ast.File, sink Sink) *Context {
	return &Context{ctx: ctx, check: c, file: f, sink: sink}
}

// Context returns the run's context.
func (c *Context) Context() context.Context { return c.ctx }

// File returns the file being analysed.
func (c *Context) File() *ast.File { return c.file }

// Logger returns the run logger scoped to the check and file.
func (c *Context) Logger() *log.Logger {
	return logging.FromContext(c.ctx).With(logging.FieldCheck, c.check.Meta().Code, logging.FieldPath, c.file.Path)
}

// Report records an offense in the current file.
func (c *Context) Report(r Report) {
	c.sink(c.check, c.file, r)
}

// Project lists every path of the project, parsed or not.
// storage.Snapshot satisfies it.
type Project interface {
	Exists(path string) bool
	Paths() []string
}

// ProjectContext is handed to ProjectChecker.CheckProject.
type ProjectContext struct {
	ctx     context.Context
	check   Check
	files   []*ast.File
	byPath  map[string]*ast.File
	project Project
	sink    Sink
}

// NewProjectContext returns a context over files. project answers for
// paths that were not parsed, such as assets or ignored files; it may be nil.
func NewProjectContext(ctx context.Context, c Check, files []*ast.File, project Project, sink Sink) *ProjectContext {
	byPath := make(map[string]*ast.File, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}
	return &ProjectContext{ctx: ctx, check: c, files: files, byPath: byPath, project: project, sink: sink}
}

// Context returns the run's context.
func (p *ProjectContext) Context() context.Context { return p.ctx }

// Files returns every parsed file, sorted by path.
func (p *ProjectContext) Files() []*ast.File { return p.files }

// File returns the parsed file at path.
func (p *ProjectContext) File(path string) (*ast.File, bool) {
	f, ok := p.byPath[path]
	return f, ok
}

// Exists reports whether path is part of the project.
func (p *ProjectContext) Exists(path string) bool {
	if _, ok := p.byPath[path]; ok {
		return true
	}
	return p.project != nil && p.project.Exists(path)
}

// Paths returns every project path in sorted order, parsed or not.
func (p *ProjectContext) Paths() []string {
	if p.project == nil {
		paths := make([]string, 0, len(p.files))
		for _, f := range p.files {
			paths = append(paths, f.Path)
		}
		return paths
	}
	return p.project.Paths()
}

// Logger returns the run logger scoped to the check.
func (p *ProjectContext) Logger() *log.Logger {
	return logging.FromContext(p.ctx).With(logging.FieldCheck, p.check.Meta().Code)
}

// Report records an offense in f.
func (p *ProjectContext) Report(f *ast.File, r Report) {
	p.sink(p.check, f, r)
}
