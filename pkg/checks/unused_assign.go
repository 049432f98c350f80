package checks

import (
	"fmt"
	"strings"

	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/filetype"
	"github.com/yaklabco/poscheck/pkg/fix"
	"github.com/yaklabco/poscheck/pkg/parser/liquid"
)

// UnusedAssign reports variables that are assigned but never read in the
// same file. Names starting with an underscore are exempt.
type UnusedAssign struct {
	check.Base

	assigned []*ast.Node
	used     map[string]bool
}

// NewUnusedAssign creates the UnusedAssign check.
func NewUnusedAssign() *UnusedAssign {
	return &UnusedAssign{
		Base: check.NewBase(check.Meta{
			Code:        "UnusedAssign",
			Severity:    check.SeveritySuggestion,
			Categories:  []filetype.Category{filetype.Liquid},
			Doc:         "Reports variables that are assigned but never used",
			Correctable: true,
		}),
	}
}

// Subscriptions implements check.NodeHandler.
func (c *UnusedAssign) Subscriptions() []check.Event {
	return []check.Event{
		check.On(ast.KindDocument),
		check.On(ast.KindVariable),
		check.On(check.KindTag),
	}
}

// HandleNode collects assignments and variable reads.
func (c *UnusedAssign) HandleNode(_ *check.Context, ev check.Event, n *ast.Node) {
	switch {
	case ev.Kind == ast.KindDocument:
		c.assigned = nil
		c.used = make(map[string]bool)
	case n.Kind() == ast.KindVariable:
		c.use(n.Markup())
	case n.TagName() == "assign":
		markup := n.Markup()
		if _, ok := liquid.AssignTarget(markup); ok {
			c.assigned = append(c.assigned, n)
			_, rhs, _ := strings.Cut(markup, "=")
			c.use(rhs)
		}
	case n.Kind() == ast.KindComment, n.TagName() == "capture", n.TagName() == "liquid":
		// Comments, capture names and {% liquid %} bodies are not reads;
		// the lines of a liquid tag arrive as their own tags.
	default:
		c.use(n.Markup())
	}
}

func (c *UnusedAssign) use(markup string) {
	for _, id := range liquid.Identifiers(markup) {
		c.used[id.Name] = true
	}
}

// EndFile reports assignments whose variable was never read.
func (c *UnusedAssign) EndFile(ctx *check.Context, _ *ast.File) {
	for _, n := range c.assigned {
		name, _ := liquid.AssignTarget(n.Markup())
		if c.used[name] || strings.HasPrefix(name, "_") {
			continue
		}

		report := check.Report{
			Message: fmt.Sprintf("`%s` is assigned but never used", name),
			Node:    n,
		}
		if !n.Liquid().InLiquidTag {
			span := removalSpan(ctx.File(), n.Span())
			report.Fix = func(corr *fix.Corrector) { corr.Remove(span.Start, span.End) }
		}
		ctx.Report(report)
	}
}

// removalSpan widens s to its whole line when nothing else is on it.
func removalSpan(f *ast.File, s ast.Span) ast.Span {
	lineStart := strings.LastIndexByte(f.Source[:s.Start], '\n') + 1
	lineEnd := len(f.Source)
	if i := strings.IndexByte(f.Source[s.End:], '\n'); i >= 0 {
		lineEnd = s.End + i
	}
	if strings.TrimSpace(f.Source[lineStart:s.Start]) != "" || strings.TrimSpace(f.Source[s.End:lineEnd]) != "" {
		return s
	}
	if lineEnd < len(f.Source) {
		lineEnd++
	}
	return ast.Span{Start: lineStart, End: lineEnd}
}
