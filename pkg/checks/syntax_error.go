package checks

import (
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/filetype"
)

// SyntaxError reports the warnings the Liquid parser recovered from.
type SyntaxError struct {
	check.Base
}

// NewSyntaxError creates the SyntaxError check.
func NewSyntaxError() *SyntaxError {
	return &SyntaxError{
		Base: check.NewBase(check.Meta{
			Code:       "SyntaxError",
			Severity:   check.SeverityError,
			Categories: []filetype.Category{filetype.Liquid},
			Doc:        "Reports Liquid syntax errors",
		}),
	}
}

// EndFile reports one offense per parser warning.
func (c *SyntaxError) EndFile(ctx *check.Context, f *ast.File) {
	for _, w := range f.WarningsFrom(ast.FromLiquid) {
		at := ast.Span{Start: w.Offset, End: w.Offset}
		ctx.Report(check.Report{Message: w.Message, Span: &at})
	}
}
