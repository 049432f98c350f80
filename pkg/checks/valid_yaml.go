package checks

import (
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/filetype"
)

// ValidYaml reports YAML files that fail to parse.
type ValidYaml struct {
	check.Base
}

// NewValidYaml creates the ValidYaml check.
func NewValidYaml() *ValidYaml {
	return &ValidYaml{
		Base: check.NewBase(check.Meta{
			Code:       "ValidYaml",
			Severity:   check.SeverityError,
			Categories: []filetype.Category{filetype.YAML},
			Doc:        "Reports invalid YAML",
		}),
	}
}

// EndFile reports the decoder error, if any.
func (c *ValidYaml) EndFile(ctx *check.Context, f *ast.File) {
	for _, w := range f.WarningsFrom(ast.FromYAML) {
		at := ast.Span{Start: w.Offset, End: w.Offset}
		ctx.Report(check.Report{Message: "Invalid YAML: " + w.Message, Span: &at})
	}
}
