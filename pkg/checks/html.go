package checks

import (
	"strings"

	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/filetype"
)

// openingTag returns the span of an element's start tag.
func openingTag(n *ast.Node) *ast.Span {
	raw := n.HTML()
	return &ast.Span{Start: raw.Start, End: raw.OpenEnd}
}

// ParserBlockingJavascript reports external scripts that block parsing.
type ParserBlockingJavascript struct {
	check.Base
}

// NewParserBlockingJavascript creates the ParserBlockingJavascript check.
func NewParserBlockingJavascript() *ParserBlockingJavascript {
	return &ParserBlockingJavascript{
		Base: check.NewBase(check.Meta{
			Code:       "ParserBlockingJavascript",
			Severity:   check.SeverityError,
			Categories: []filetype.Category{filetype.HTML},
			Doc:        "Reports <script src> tags without defer or async",
		}),
	}
}

// Subscriptions implements check.NodeHandler.
func (c *ParserBlockingJavascript) Subscriptions() []check.Event {
	return []check.Event{check.On(ast.KindHTMLElement)}
}

// HandleNode inspects script elements.
func (c *ParserBlockingJavascript) HandleNode(ctx *check.Context, _ check.Event, n *ast.Node) {
	if n.TagName() != "script" {
		return
	}
	if _, ok := n.Attribute("src"); !ok {
		return
	}
	raw := n.HTML()
	if raw.HasAttr("defer") || raw.HasAttr("async") {
		return
	}
	if typ, ok := n.Attribute("type"); ok && strings.EqualFold(strings.TrimSpace(typ.Value), "module") {
		return
	}
	ctx.Report(check.Report{
		Message: "Avoid parser blocking scripts by adding `defer` or `async` on this tag",
		Span:    openingTag(n),
	})
}

// ImgWidthAndHeight reports images without explicit dimensions, which
// cause layout shifts while loading.
type ImgWidthAndHeight struct {
	check.Base
}

// NewImgWidthAndHeight creates the ImgWidthAndHeight check.
func NewImgWidthAndHeight() *ImgWidthAndHeight {
	return &ImgWidthAndHeight{
		Base: check.NewBase(check.Meta{
			Code:       "ImgWidthAndHeight",
			Severity:   check.SeverityError,
			Categories: []filetype.Category{filetype.HTML},
			Doc:        "Reports <img> tags without width and height attributes",
		}),
	}
}

// Subscriptions implements check.NodeHandler.
func (c *ImgWidthAndHeight) Subscriptions() []check.Event {
	return []check.Event{check.On(ast.KindHTMLElement)}
}

// HandleNode inspects img elements.
func (c *ImgWidthAndHeight) HandleNode(ctx *check.Context, _ check.Event, n *ast.Node) {
	if n.TagName() != "img" {
		return
	}
	if _, ok := n.Attribute("src"); !ok {
		return
	}

	raw := n.HTML()
	var missing []string
	for _, attr := range []string{"width", "height"} {
		if !raw.HasAttr(attr) {
			missing = append(missing, attr)
		}
	}

	var msg string
	switch len(missing) {
	case 0:
		return
	case 1:
		msg = "Missing " + missing[0] + " attribute"
	default:
		msg = "Missing width and height attributes"
	}
	ctx.Report(check.Report{Message: msg, Span: openingTag(n)})
}

// HTMLParsingError reports the warnings the HTML parser recovered from,
// such as closing tags that close nothing.
type HTMLParsingError struct {
	check.Base
}

// NewHTMLParsingError creates the HTMLParsingError check.
func NewHTMLParsingError() *HTMLParsingError {
	return &HTMLParsingError{
		Base: check.NewBase(check.Meta{
			Code:       "HTMLParsingError",
			Severity:   check.SeverityError,
			Categories: []filetype.Category{filetype.HTML},
			Doc:        "Reports HTML that cannot be parsed into a well-formed tree",
		}),
	}
}

// EndFile reports one offense per HTML parser warning.
func (c *HTMLParsingError) EndFile(ctx *check.Context, f *ast.File) {
	for _, w := range f.WarningsFrom(ast.FromHTML) {
		at := ast.Span{Start: w.Offset, End: w.Offset}
		ctx.Report(check.Report{Message: w.Message, Span: &at})
	}
}
