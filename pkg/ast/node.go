package ast

import (
	"iter"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/poscheck/pkg/parser/liquid"
	"github.com/yaklabco/poscheck/pkg/parser/markup"
)

// Family identifies which raw tree a Node wraps.
type Family int

// Families.
const (
	FamilyLiquid Family = iota
	FamilyHTML
	FamilyData
)

// Node kinds. Liquid tags use their tag name as kind.
const (
	KindDocument        = "document"
	KindRaw             = "raw"
	KindVariable        = "variable"
	KindComment         = "comment"
	KindHTMLDocument    = "html_document"
	KindHTMLElement     = "html_element"
	KindHTMLText        = "html_text"
	KindHTMLComment     = "html_comment"
	KindHTMLDoctype     = "html_doctype"
	KindYAMLDocument    = "yaml_document"
	KindGraphQLDocument = "graphql_document"
)

// Node is a read-only, position-resolved view over one raw parse tree node.
// Nodes are cheap wrappers: Children derives fresh wrappers on each call.
type Node struct {
	family Family
	kind   string
	span   Span
	file   *File
	parent *Node

	liquid *liquid.Node
	html   *markup.Node
	yaml   *yaml.Node
}

func newLiquidNode(f *File, parent *Node, raw *liquid.Node) *Node {
	return &Node{
		family: FamilyLiquid,
		kind:   liquidKind(raw),
		span:   clampSpan(f, raw.Start, raw.End),
		file:   f,
		parent: parent,
		liquid: raw,
	}
}

func newHTMLNode(f *File, parent *Node, raw *markup.Node) *Node {
	return &Node{
		family: FamilyHTML,
		kind:   htmlKind(raw.Type),
		span:   clampSpan(f, raw.Start, raw.End),
		file:   f,
		parent: parent,
		html:   raw,
	}
}

func newDataNode(f *File, kind string, doc *yaml.Node) *Node {
	return &Node{
		family: FamilyData,
		kind:   kind,
		span:   Span{Start: 0, End: len(f.Source)},
		file:   f,
		yaml:   doc,
	}
}

func clampSpan(f *File, start, end int) Span {
	start = clamp(start, 0, len(f.Source))
	return Span{Start: start, End: clamp(end, start, len(f.Source))}
}

func liquidKind(raw *liquid.Node) string {
	switch raw.Type {
	case liquid.TypeDocument:
		return KindDocument
	case liquid.TypeRaw:
		return KindRaw
	case liquid.TypeVariable:
		return KindVariable
	default:
		if raw.Name == "comment" || raw.Name == "#" {
			return KindComment
		}
		return raw.Name
	}
}

func htmlKind(t markup.Type) string {
	switch t {
	case markup.TypeDocument:
		return KindHTMLDocument
	case markup.TypeElement:
		return KindHTMLElement
	case markup.TypeComment:
		return KindHTMLComment
	case markup.TypeDoctype:
		return KindHTMLDoctype
	default:
		return KindHTMLText
	}
}

// Kind returns the stable kind tag used for dispatch.
func (n *Node) Kind() string { return n.kind }

// Family returns which raw tree the node belongs to.
func (n *Node) Family() Family { return n.family }

// Span returns the byte range of the node.
func (n *Node) Span() Span { return n.span }

// Start resolves the start of the node.
func (n *Node) Start() Position { return n.file.Position(n.span.Start) }

// End resolves the end of the node.
func (n *Node) End() Position { return n.file.Position(n.span.End) }

// File returns the file the node belongs to.
func (n *Node) File() *File { return n.file }

// Parent returns the enclosing node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Source returns the text the node spans.
func (n *Node) Source() string { return n.file.Slice(n.span) }

// IsTag reports whether the node is a Liquid tag, comments included.
func (n *Node) IsTag() bool {
	return n.liquid != nil && n.liquid.Type == liquid.TypeTag
}

// TagName returns the Liquid tag name or the HTML element name.
func (n *Node) TagName() string {
	switch {
	case n.liquid != nil:
		return n.liquid.Name
	case n.html != nil:
		return n.html.Tag
	default:
		return ""
	}
}

// Markup returns the Liquid markup of a tag or variable, the text of a raw
// node, or the data of an HTML text or comment node.
func (n *Node) Markup() string {
	switch {
	case n.liquid != nil:
		return n.liquid.Markup
	case n.html != nil:
		return n.html.Data
	default:
		return ""
	}
}

// MarkupSpan returns the span of Markup for Liquid nodes.
func (n *Node) MarkupSpan() Span {
	if n.liquid == nil {
		return n.span
	}
	return clampSpan(n.file, n.liquid.MarkupStart, n.liquid.MarkupStart+len(n.liquid.Markup))
}

// Attribute returns an HTML attribute of an element.
func (n *Node) Attribute(name string) (markup.Attr, bool) {
	if n.html == nil {
		return markup.Attr{}, false
	}
	return n.html.Attr(name)
}

// Text returns the source text of the node.
func (n *Node) Text() string {
	return n.Source()
}

// Liquid returns the wrapped Liquid node, or nil.
func (n *Node) Liquid() *liquid.Node { return n.liquid }

// HTML returns the wrapped HTML node, or nil.
func (n *Node) HTML() *markup.Node { return n.html }

// YAML returns the parsed YAML document of a data node, or nil.
func (n *Node) YAML() *yaml.Node { return n.yaml }

// Children yields the direct children in document order. Every call
// derives a new sequence from the underlying node.
func (n *Node) Children() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		switch {
		case n.liquid != nil:
			for _, child := range n.liquid.Children {
				if !yield(newLiquidNode(n.file, n, child)) {
					return
				}
			}
		case n.html != nil:
			for _, child := range n.html.Children {
				if !yield(newHTMLNode(n.file, n, child)) {
					return
				}
			}
		}
	}
}

// Walk traverses n depth-first in document order. enter runs before a
// node's children and leave after them; either may be nil.
func Walk(n *Node, enter, leave func(*Node)) {
	if enter != nil {
		enter(n)
	}
	for child := range n.Children() {
		Walk(child, enter, leave)
	}
	if leave != nil {
		leave(n)
	}
}
