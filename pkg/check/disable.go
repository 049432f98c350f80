package check

import (
	"strings"

	"github.com/yaklabco/poscheck/pkg/ast"
)

// Inline comment directives.
const (
	DirectiveDisable = "platformos-check-disable"
	DirectiveEnable  = "platformos-check-enable"
)

type region struct {
	code       string // empty for every check
	start, end int
}

// Suppressions are the regions of a file where inline comments disabled
// checks.
type Suppressions struct {
	regions []region
}

// Suppressed reports whether offenses of code starting at offset are
// disabled.
func (s *Suppressions) Suppressed(code string, offset int) bool {
	if s == nil {
		return false
	}
	for _, r := range s.regions {
		if (r.code == "" || r.code == code) && offset >= r.start && offset < r.end {
			return true
		}
	}
	return false
}

// Empty reports whether no region was found.
func (s *Suppressions) Empty() bool {
	return s == nil || len(s.regions) == 0
}

// ScanSuppressions finds the disable and enable comments of a Liquid file:
//
//	{% comment %}platformos-check-disable UnusedAssign, SpaceInsideBraces{% endcomment %}
//	...
//	{% comment %}platformos-check-enable{% endcomment %}
//
// Without codes the directive applies to every check. A region runs from
// the end of the disable comment to the start of the matching enable
// comment, or to the end of the file. A disable comment leading the file
// covers all of it.
func ScanSuppressions(f *ast.File) *Suppressions {
	var root *ast.Node
	for _, r := range f.Roots() {
		if r.Family() == ast.FamilyLiquid {
			root = r
			break
		}
	}
	if root == nil {
		return nil
	}

	s := &Suppressions{}
	open := make(map[string]int)
	var order []string

	closeRegion := func(code string, end int) {
		start, ok := open[code]
		if !ok {
			return
		}
		s.regions = append(s.regions, region{code: code, start: start, end: end})
		delete(open, code)
	}

	leading := len(f.Source) - len(strings.TrimLeft(f.Source, " \t\n"))

	ast.Walk(root, func(n *ast.Node) {
		if n.Kind() != ast.KindComment {
			return
		}
		directive, codes := parseDirective(commentText(n))
		span := n.Span()
		switch directive {
		case DirectiveDisable:
			start := span.End
			if span.Start == leading {
				start = 0
			}
			if len(codes) == 0 {
				codes = []string{""}
			}
			for _, code := range codes {
				if _, ok := open[code]; ok {
					continue
				}
				open[code] = start
				order = append(order, code)
			}
		case DirectiveEnable:
			if len(codes) == 0 {
				for _, code := range order {
					closeRegion(code, span.Start)
				}
				order = nil
				return
			}
			for _, code := range codes {
				closeRegion(code, span.Start)
			}
		}
	}, nil)

	for _, code := range order {
		closeRegion(code, len(f.Source))
	}
	return s
}

func commentText(n *ast.Node) string {
	var sb strings.Builder
	sb.WriteString(n.Markup())
	for child := range n.Children() {
		sb.WriteString(child.Source())
	}
	return strings.TrimSpace(sb.String())
}

func parseDirective(text string) (string, []string) {
	var directive string
	switch {
	case strings.HasPrefix(text, DirectiveDisable):
		directive = DirectiveDisable
	case strings.HasPrefix(text, DirectiveEnable):
		directive = DirectiveEnable
	default:
		return "", nil
	}
	rest := text[len(directive):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '\n' {
		return "", nil
	}
	codes := strings.FieldsFunc(rest, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	return directive, codes
}
