package liquid

import (
	"strings"
)

// Ident is a variable reference inside markup. Offset is relative to the
// start of the markup.
type Ident struct {
	Name   string
	Offset int
}

//nolint:gochecknoglobals // read-only lookup table
var keywords = map[string]bool{
	"and": true, "or": true, "contains": true, "in": true,
	"true": true, "false": true, "nil": true, "null": true,
	"empty": true, "blank": true, "with": true, "as": true,
	"for": true, "limit": true, "offset": true, "reversed": true,
	"cols": true, "range": true,
}

// Identifiers returns the root variables referenced by markup, skipping
// string literals, property accesses, filter names and named argument keys.
func Identifiers(markup string) []Ident {
	var out []Ident
	prev := byte(0)

	for i := 0; i < len(markup); {
		c := markup[i]
		switch {
		case c == '"' || c == '\'':
			end := strings.IndexByte(markup[i+1:], c)
			if end < 0 {
				return out
			}
			i += end + 2
			prev = c

		case isIdentStart(c):
			start := i
			for i < len(markup) && isIdentPart(markup[i]) {
				i++
			}
			name := markup[start:i]
			if prev != '.' && prev != '|' && !keywords[name] && !followedBy(markup, i, ':') {
				out = append(out, Ident{Name: name, Offset: start})
			}
			prev = 'a'

		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c >= '0' && c <= '9':
			for i < len(markup) && (isIdentPart(markup[i]) || markup[i] == '.') {
				i++
			}
			prev = '0'

		default:
			prev = c
			i++
		}
	}
	return out
}

// AssignTarget returns the variable name on the left of "name = value".
func AssignTarget(markup string) (string, bool) {
	lhs, _, found := strings.Cut(markup, "=")
	if !found {
		return "", false
	}
	name := strings.TrimSpace(lhs)
	if name == "" || !isIdentStart(name[0]) {
		return "", false
	}
	for i := range len(name) {
		if !isIdentPart(name[i]) {
			return "", false
		}
	}
	return name, true
}

// TemplateRef is a literal template name referenced by a tag.
type TemplateRef struct {
	Name string

	// Start and End span the quoted literal in the source.
	Start, End int
}

// ReferencedTemplate returns the template named by a render, include,
// theme_render, include_form or function tag when the name is a string
// literal. Dynamic names are not resolvable and return false.
func ReferencedTemplate(n *Node) (TemplateRef, bool) {
	if n == nil || n.Type != TypeTag {
		return TemplateRef{}, false
	}

	markup, offset := n.Markup, n.MarkupStart
	switch n.Name {
	case "render", "include", "theme_render", "include_form":
	case "function":
		_, rhs, found := strings.Cut(markup, "=")
		if !found {
			return TemplateRef{}, false
		}
		trimmed := strings.TrimLeft(rhs, whitespace)
		offset += len(markup) - len(trimmed)
		markup = trimmed
	default:
		return TemplateRef{}, false
	}

	if markup == "" || (markup[0] != '\'' && markup[0] != '"') {
		return TemplateRef{}, false
	}
	end := strings.IndexByte(markup[1:], markup[0])
	if end < 0 {
		return TemplateRef{}, false
	}

	return TemplateRef{
		Name:  markup[1 : end+1],
		Start: offset,
		End:   offset + end + 2,
	}, true
}

func followedBy(s string, i int, c byte) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t':
			continue
		case c:
			return true
		default:
			return false
		}
	}
	return false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '?'
}
