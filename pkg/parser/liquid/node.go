// Package liquid is a warning-tolerant parser for platformOS Liquid.
//
// Parse never fails. Malformed input produces warnings (message and byte
// offset) and a best-effort tree in which every node keeps the byte span
// it was read from, so callers can resolve positions against the source.
package liquid

// Type is the shape of a raw Liquid node.
type Type int

// Node types.
const (
	TypeDocument Type = iota
	TypeRaw
	TypeVariable
	TypeTag
)

func (t Type) String() string {
	switch t {
	case TypeDocument:
		return "document"
	case TypeRaw:
		return "raw"
	case TypeVariable:
		return "variable"
	case TypeTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Node is one element of the raw Liquid tree.
type Node struct {
	Type Type

	// Name is the tag name ("render", "if", "#"); empty for other types.
	Name string

	// Markup is the trimmed text after the tag name, the expression of a
	// variable, or the literal text of a raw node.
	Markup string

	// Start and End are the byte span of the node. For block tags the span
	// runs through the closing tag.
	Start, End int

	// MarkupStart is the offset of Markup in the source.
	MarkupStart int

	// OpenEnd is where the opening tag ends. Equal to End for inline nodes.
	OpenEnd int

	// CloseStart is the offset of the closing tag of a block, or -1.
	CloseStart int

	// Block is set for tags that take a body and an end tag.
	Block bool

	// Closed is set once the end tag of a block has been seen.
	Closed bool

	// TrimLeft and TrimRight record whitespace control dashes.
	TrimLeft, TrimRight bool

	// InLiquidTag is set for tags written as lines of a {% liquid %} tag.
	InLiquidTag bool

	Children []*Node
}

// Warning is a recoverable syntax problem.
type Warning struct {
	Message string
	Offset  int
}

// Document is the result of parsing one source.
type Document struct {
	Root   *Node
	Source string
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
