// Package markup builds an offset-preserving HTML tree over Liquid source.
//
// Liquid regions are masked before tokenizing so that quotes and angle
// brackets inside {{ }} and {% %} do not confuse the HTML tokenizer. Masking
// keeps every byte offset, so node spans index the original source directly.
package markup

import (
	"strings"
)

// Type is the shape of an HTML node.
type Type int

// Node types.
const (
	TypeDocument Type = iota
	TypeElement
	TypeText
	TypeComment
	TypeDoctype
)

func (t Type) String() string {
	switch t {
	case TypeDocument:
		return "document"
	case TypeElement:
		return "element"
	case TypeText:
		return "text"
	case TypeComment:
		return "comment"
	case TypeDoctype:
		return "doctype"
	default:
		return "unknown"
	}
}

// Attr is one attribute of a start tag, with its span in the source.
type Attr struct {
	Name       string
	Value      string
	Start, End int
}

// Node is one element of the HTML tree.
type Node struct {
	Type Type

	// Tag is the lower-cased element name.
	Tag   string
	Attrs []Attr

	// Data is the original source text of text, comment and doctype nodes.
	Data string

	// Start and End span the node; for elements this runs through the end
	// tag when one exists.
	Start, End int

	// OpenEnd is where the start tag ends.
	OpenEnd int

	SelfClosing bool
	Children    []*Node
}

// Attr returns the attribute called name.
func (n *Node) Attr(name string) (Attr, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// HasAttr reports whether the element carries attribute name.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// Walk calls fn for n and its descendants in document order. Returning
// false from fn skips the children of that node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// Warning is a recoverable markup problem.
type Warning struct {
	Message string
	Offset  int
}

//nolint:gochecknoglobals // read-only lookup table
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// IsVoid reports whether tag never has content or an end tag.
func IsVoid(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}
