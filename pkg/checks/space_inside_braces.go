package checks

import (
	"fmt"
	"strings"

	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/filetype"
	"github.com/yaklabco/poscheck/pkg/fix"
)

// SpaceInsideBraces wants exactly one space between Liquid delimiters and
// their content: {{ x }} and {% if x %}.
type SpaceInsideBraces struct {
	check.Base
}

// NewSpaceInsideBraces creates the SpaceInsideBraces check.
func NewSpaceInsideBraces() *SpaceInsideBraces {
	return &SpaceInsideBraces{
		Base: check.NewBase(check.Meta{
			Code:        "SpaceInsideBraces",
			Severity:    check.SeverityStyle,
			Categories:  []filetype.Category{filetype.Liquid},
			Doc:         "Ensures consistent spacing inside Liquid delimiters",
			Correctable: true,
		}),
	}
}

// Subscriptions implements check.NodeHandler.
func (c *SpaceInsideBraces) Subscriptions() []check.Event {
	return []check.Event{check.On(ast.KindVariable), check.On(check.KindTag)}
}

// HandleNode checks the delimiters of the opening tag, and of the closing
// tag of a block.
func (c *SpaceInsideBraces) HandleNode(ctx *check.Context, _ check.Event, n *ast.Node) {
	raw := n.Liquid()
	if raw == nil || raw.InLiquidTag || raw.Name == "#" {
		return
	}
	f := ctx.File()

	if n.Kind() == ast.KindVariable {
		c.delimited(ctx, f, raw.Start, raw.End, "{{", "}}")
		return
	}
	c.delimited(ctx, f, raw.Start, raw.OpenEnd, "{%", "%}")
	if raw.Closed && raw.CloseStart >= 0 {
		c.delimited(ctx, f, raw.CloseStart, raw.End, "{%", "%}")
	}
}

func (c *SpaceInsideBraces) delimited(ctx *check.Context, f *ast.File, start, end int, open, closing string) {
	src := f.Slice(ast.Span{Start: start, End: end})
	if !strings.HasPrefix(src, open) || !strings.HasSuffix(src, closing) || len(src) < len(open)+len(closing) {
		return
	}

	innerStart := start + len(open)
	if strings.HasPrefix(src[len(open):], "-") {
		innerStart++
	}
	innerEnd := end - len(closing)
	if strings.HasSuffix(src[:len(src)-len(closing)], "-") {
		innerEnd--
	}
	if innerEnd <= innerStart {
		return
	}
	inner := f.Source[innerStart:innerEnd]
	if strings.TrimSpace(inner) == "" {
		return
	}

	lead := len(inner) - len(strings.TrimLeft(inner, " \t\n"))
	switch {
	case lead == 0:
		at := ast.Span{Start: innerStart, End: innerStart}
		ctx.Report(check.Report{
			Message: fmt.Sprintf("Space missing after '%s'", open),
			Span:    &at,
			Fix:     func(corr *fix.Corrector) { corr.Insert(at.Start, " ") },
		})
	case lead > 1 && !strings.Contains(inner[:lead], "\n"):
		at := ast.Span{Start: innerStart, End: innerStart + lead}
		ctx.Report(check.Report{
			Message: fmt.Sprintf("Too many spaces after '%s'", open),
			Span:    &at,
			Fix:     func(corr *fix.Corrector) { corr.Replace(at.Start, at.End, " ") },
		})
	}

	trail := len(inner) - len(strings.TrimRight(inner, " \t\n"))
	switch {
	case trail == 0:
		at := ast.Span{Start: innerEnd, End: innerEnd}
		ctx.Report(check.Report{
			Message: fmt.Sprintf("Space missing before '%s'", closing),
			Span:    &at,
			Fix:     func(corr *fix.Corrector) { corr.Insert(at.Start, " ") },
		})
	case trail > 1 && !strings.Contains(inner[len(inner)-trail:], "\n"):
		at := ast.Span{Start: innerEnd - trail, End: innerEnd}
		ctx.Report(check.Report{
			Message: fmt.Sprintf("Too many spaces before '%s'", closing),
			Span:    &at,
			Fix:     func(corr *fix.Corrector) { corr.Replace(at.Start, at.End, " ") },
		})
	}
}
