package checks

import (
	"fmt"
	"slices"

	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/filetype"
)

// MissingTemplate reports render, include, include_form and function tags
// naming a template that does not exist. Every reference site is reported
// once.
type MissingTemplate struct {
	check.Base
	index *referenceIndex
}

// NewMissingTemplate creates the MissingTemplate check.
func NewMissingTemplate() *MissingTemplate {
	return &MissingTemplate{
		Base: check.NewBase(check.Meta{
			Code:         "MissingTemplate",
			Severity:     check.SeverityError,
			Categories:   []filetype.Category{filetype.Liquid},
			Doc:          "Reports references to templates that do not exist",
			WholeProject: true,
		}),
		index: newReferenceIndex(),
	}
}

// EndFile collects the references of f.
func (c *MissingTemplate) EndFile(_ *check.Context, f *ast.File) {
	c.index.collect(f)
}

// CheckProject resolves every collected reference.
func (c *MissingTemplate) CheckProject(ctx *check.ProjectContext) {
	files := ctx.Files()
	c.index.complete(files)
	defined := definedNames(ctx.Paths())

	paths := make([]string, 0, len(c.index.refs))
	for p := range c.index.refs {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	type site struct {
		path  string
		start int
	}
	reported := make(map[site]bool)

	for _, p := range paths {
		for _, ref := range c.index.refs[p] {
			if defined[ref.targetKind()][ref.name] {
				continue
			}
			key := site{path: p, start: ref.span.Start}
			if reported[key] {
				continue
			}
			reported[key] = true

			span := ref.span
			ctx.Report(ref.file, check.Report{
				Message: fmt.Sprintf("'%s' is not found", ref.name),
				Span:    &span,
			})
		}
	}

	c.index = newReferenceIndex()
}

// UnusedPartial reports application partials that no file references.
// Module partials are skipped, and nothing is reported while any template
// is referenced by a computed name.
type UnusedPartial struct {
	check.Base
	index *referenceIndex
}

// NewUnusedPartial creates the UnusedPartial check.
func NewUnusedPartial() *UnusedPartial {
	return &UnusedPartial{
		Base: check.NewBase(check.Meta{
			Code:         "UnusedPartial",
			Severity:     check.SeveritySuggestion,
			Categories:   []filetype.Category{filetype.Liquid},
			Doc:          "Reports partials that are never referenced",
			WholeProject: true,
		}),
		index: newReferenceIndex(),
	}
}

// EndFile collects the references of f.
func (c *UnusedPartial) EndFile(_ *check.Context, f *ast.File) {
	c.index.collect(f)
}

// CheckProject reports every partial without a reference.
func (c *UnusedPartial) CheckProject(ctx *check.ProjectContext) {
	files := ctx.Files()
	c.index.complete(files)
	defer func() { c.index = newReferenceIndex() }()

	if c.index.hasDynamic() {
		return
	}

	used := make(map[string]bool)
	for _, refs := range c.index.refs {
		for _, ref := range refs {
			if ref.targetKind() == filetype.KindPartial {
				used[ref.name] = true
			}
		}
	}

	for _, f := range files {
		if f.Kind != filetype.KindPartial || f.Module != "" || f.Category != filetype.Liquid || used[f.Name] {
			continue
		}
		ctx.Report(f, check.Report{Message: "This partial is not used"})
	}
}
