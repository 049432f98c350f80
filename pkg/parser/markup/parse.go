package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse builds the HTML tree of source. Unmatched end tags are reported as
// warnings; unclosed elements are closed implicitly, as browsers do.
func Parse(source string) (*Node, []Warning) {
	masked := Mask(source)

	root := &Node{Type: TypeDocument, Start: 0, End: len(source)}
	p := &parser{src: source, masked: masked, stack: []*Node{root}}

	z := html.NewTokenizer(strings.NewReader(masked))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.warn(offset, "markup tokenizer: %v", err)
			}
			break
		}

		size := len(z.Raw())
		start, end := offset, offset+size
		offset = end

		switch tt {
		case html.TextToken:
			p.leaf(TypeText, start, end)
		case html.CommentToken:
			p.leaf(TypeComment, start, end)
		case html.DoctypeToken:
			p.leaf(TypeDoctype, start, end)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			p.open(string(name), start, end, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			name, _ := z.TagName()
			p.close(string(name), start, end)
		}
	}

	for len(p.stack) > 1 {
		p.pop(len(source))
	}
	return root, p.warnings
}

type parser struct {
	src      string
	masked   string
	stack    []*Node
	warnings []Warning
}

func (p *parser) warn(offset int, format string, args ...any) {
	p.warnings = append(p.warnings, Warning{Message: fmt.Sprintf(format, args...), Offset: offset})
}

func (p *parser) top() *Node {
	return p.stack[len(p.stack)-1]
}

func (p *parser) leaf(typ Type, start, end int) {
	n := &Node{Type: typ, Data: p.src[start:end], Start: start, End: end, OpenEnd: end}
	p.top().Children = append(p.top().Children, n)
}

func (p *parser) open(tag string, start, end int, selfClosing bool) {
	n := &Node{
		Type:        TypeElement,
		Tag:         tag,
		Attrs:       scanAttrs(p.masked, p.src, start, end),
		Start:       start,
		End:         end,
		OpenEnd:     end,
		SelfClosing: selfClosing,
	}
	p.top().Children = append(p.top().Children, n)

	if !selfClosing && !voidElements[tag] {
		p.stack = append(p.stack, n)
	}
}

func (p *parser) close(tag string, start, end int) {
	if voidElements[tag] {
		return
	}

	idx := -1
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i].Tag == tag {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.warn(start, "Unexpected closing tag </%s>", tag)
		return
	}

	for len(p.stack)-1 > idx {
		p.pop(start)
	}
	p.pop(end)
}

func (p *parser) pop(end int) {
	n := p.top()
	n.End = end
	p.stack = p.stack[:len(p.stack)-1]
}
