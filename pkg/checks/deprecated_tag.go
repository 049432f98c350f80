package checks

import (
	"fmt"
	"strings"

	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/filetype"
	"github.com/yaklabco/poscheck/pkg/fix"
)

// deprecatedTags maps deprecated tags to their replacement.
//
//nolint:gochecknoglobals // read-only lookup table
var deprecatedTags = map[string]string{
	"include": "render",
}

// DeprecatedTag reports tags that have a replacement and rewrites them.
type DeprecatedTag struct {
	check.Base
}

// NewDeprecatedTag creates the DeprecatedTag check.
func NewDeprecatedTag() *DeprecatedTag {
	return &DeprecatedTag{
		Base: check.NewBase(check.Meta{
			Code:        "DeprecatedTag",
			Severity:    check.SeveritySuggestion,
			Categories:  []filetype.Category{filetype.Liquid},
			Doc:         "Reports deprecated Liquid tags",
			Correctable: true,
		}),
	}
}

// Subscriptions implements check.NodeHandler.
func (c *DeprecatedTag) Subscriptions() []check.Event {
	events := make([]check.Event, 0, len(deprecatedTags))
	for name := range deprecatedTags {
		events = append(events, check.On(name))
	}
	return events
}

// HandleNode reports the tag and replaces its name.
func (c *DeprecatedTag) HandleNode(ctx *check.Context, _ check.Event, n *ast.Node) {
	name := n.TagName()
	replacement, ok := deprecatedTags[name]
	if !ok {
		return
	}

	report := check.Report{
		Message: fmt.Sprintf("Deprecated tag '%s': use '%s' instead", name, replacement),
		Node:    n,
	}

	raw := n.Liquid()
	head := ctx.File().Slice(ast.Span{Start: raw.Start, End: raw.MarkupStart})
	if i := strings.Index(head, name); i >= 0 {
		start := raw.Start + i
		report.Fix = func(corr *fix.Corrector) { corr.Replace(start, start+len(name), replacement) }
	}
	ctx.Report(report)
}
