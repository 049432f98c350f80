package liquid

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Parse builds the raw tree of source. It never fails: syntax problems are
// returned as warnings next to a tree that covers the whole input.
func Parse(source string) (*Document, []Warning) {
	tokens, warnings := tokenize(source)

	root := &Node{
		Type:       TypeDocument,
		Start:      0,
		End:        len(source),
		OpenEnd:    0,
		CloseStart: -1,
	}

	b := &builder{src: source, root: root, warnings: warnings}
	for _, tok := range tokens {
		b.add(tok)
	}
	b.finish(len(source))

	sortWarnings(b.warnings)
	return &Document{Root: root, Source: source}, b.warnings
}

type frame struct {
	block     *Node
	container *Node
}

type builder struct {
	src      string
	root     *Node
	stack    []frame
	warnings []Warning
}

func (b *builder) warn(offset int, format string, args ...any) {
	b.warnings = append(b.warnings, Warning{Message: fmt.Sprintf(format, args...), Offset: offset})
}

func (b *builder) container() *Node {
	if len(b.stack) == 0 {
		return b.root
	}
	return b.stack[len(b.stack)-1].container
}

func (b *builder) appendNode(n *Node) {
	parent := b.container()
	parent.Children = append(parent.Children, n)
}

func (b *builder) add(tok token) {
	switch tok.kind {
	case tokText:
		b.appendNode(&Node{
			Type:        TypeRaw,
			Markup:      tok.markup,
			Start:       tok.start,
			End:         tok.end,
			MarkupStart: tok.start,
			OpenEnd:     tok.end,
			CloseStart:  -1,
		})
	case tokVariable:
		b.appendNode(newNode(TypeVariable, tok))
	case tokTag:
		if tok.inLiquid && b.inCommentLines(tok) {
			b.add(token{kind: tokText, start: tok.start, end: tok.end, markup: b.src[tok.start:tok.end]})
			return
		}
		b.addTag(tok)
	}
}

// inCommentLines reports whether a {% liquid %} line sits inside a comment
// block and is not its end tag.
func (b *builder) inCommentLines(tok token) bool {
	if len(b.stack) == 0 {
		return false
	}
	return b.stack[len(b.stack)-1].block.Name == "comment" && tok.name != "endcomment"
}

func newNode(typ Type, tok token) *Node {
	return &Node{
		Type:        typ,
		Name:        tok.name,
		Markup:      tok.markup,
		Start:       tok.start,
		End:         tok.end,
		MarkupStart: tok.markupStart,
		OpenEnd:     tok.end,
		CloseStart:  -1,
		TrimLeft:    tok.trimLeft,
		TrimRight:   tok.trimRight,
		InLiquidTag: tok.inLiquid,
	}
}

func (b *builder) addTag(tok token) {
	name := tok.name

	switch {
	case name == "":
		b.warn(tok.start, "Tag name is missing")
		b.appendNode(newNode(TypeTag, tok))

	case strings.HasPrefix(name, "end") && IsBlockTag(name[len("end"):]):
		b.closeBlock(name[len("end"):], tok)

	case isAnyBranch(name):
		b.openBranch(tok)

	case IsBlockTag(name):
		n := newNode(TypeTag, tok)
		n.Block = true
		b.appendNode(n)
		b.stack = append(b.stack, frame{block: n, container: n})

	case name == "liquid":
		n := newNode(TypeTag, tok)
		b.appendNode(n)
		b.expandLiquid(n)

	default:
		if !IsKnownTag(name) {
			b.warn(tok.start, "Unknown tag '%s'", name)
		}
		b.appendNode(newNode(TypeTag, tok))
	}
}

func (b *builder) openBranch(tok token) {
	if len(b.stack) > 0 {
		top := &b.stack[len(b.stack)-1]
		if isBranch(top.block.Name, tok.name) {
			if top.container != top.block {
				top.container.End = tok.start
			}
			branch := newNode(TypeTag, tok)
			top.block.Children = append(top.block.Children, branch)
			top.container = branch
			return
		}
	}

	b.warn(tok.start, "Unknown tag '%s'", tok.name)
	b.appendNode(newNode(TypeTag, tok))
}

func (b *builder) closeBlock(name string, tok token) {
	idx := -1
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].block.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.warn(tok.start, "Unexpected '%s' tag, no '%s' tag is open", tok.name, name)
		return
	}

	for i := len(b.stack) - 1; i > idx; i-- {
		b.unclosed(b.stack[i], tok.start)
	}

	f := b.stack[idx]
	if f.container != f.block {
		f.container.End = tok.start
	}
	f.block.End = tok.end
	f.block.CloseStart = tok.start
	f.block.Closed = true
	b.stack = b.stack[:idx]
}

func (b *builder) unclosed(f frame, end int) {
	b.warn(f.block.Start, "'%s' tag was never closed", f.block.Name)
	if f.container != f.block {
		f.container.End = end
	}
	f.block.End = end
}

// finish closes every block still open at the end of input.
func (b *builder) finish(end int) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		b.unclosed(b.stack[i], end)
	}
	b.stack = nil
}

func (b *builder) expandLiquid(n *Node) {
	sub := &builder{src: b.src, root: n, warnings: b.warnings}
	for _, line := range liquidLines(n.Markup, n.MarkupStart) {
		sub.add(line)
	}
	sub.finish(n.End)
	b.warnings = sub.warnings
}

func sortWarnings(warnings []Warning) {
	slices.SortStableFunc(warnings, func(a, b Warning) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
}
