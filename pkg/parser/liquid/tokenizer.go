package liquid

import (
	"regexp"
	"strings"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokVariable
	tokTag
)

type token struct {
	kind        tokenKind
	start, end  int
	name        string
	markup      string
	markupStart int
	trimLeft    bool
	trimRight   bool
	inLiquid    bool
}

//nolint:gochecknoglobals // compiled once
var (
	endRawRe     = regexp.MustCompile(`\{%-?\s*endraw\s*-?%\}`)
	commentTagRe = regexp.MustCompile(`\{%-?\s*(end)?comment\s*-?%\}`)
)

const whitespace = " \t\n\r\f\v"

type tokenizer struct {
	src      string
	pos      int
	tokens   []token
	warnings []Warning
}

func tokenize(src string) ([]token, []Warning) {
	t := &tokenizer{src: src}
	t.run()
	return t.tokens, t.warnings
}

func (t *tokenizer) run() {
	for t.pos < len(t.src) {
		open := nextOpener(t.src, t.pos)
		if open < 0 {
			t.text(t.pos, len(t.src))
			return
		}
		if open > t.pos {
			t.text(t.pos, open)
		}

		isVar := t.src[open+1] == '{'
		closer := "%}"
		if isVar {
			closer = "}}"
		}

		closeAt := findCloser(t.src, open+2, closer)
		if closeAt < 0 {
			t.unterminated(open, isVar)
			continue
		}

		tok := t.delimited(open, closeAt, isVar)
		t.tokens = append(t.tokens, tok)
		t.pos = tok.end

		if tok.kind == tokTag && (tok.name == "raw" || tok.name == "comment") {
			t.verbatimBody(tok.name)
		}
	}
}

func (t *tokenizer) text(start, end int) {
	if start >= end {
		return
	}
	t.tokens = append(t.tokens, token{
		kind:        tokText,
		start:       start,
		end:         end,
		markup:      t.src[start:end],
		markupStart: start,
	})
}

// unterminated records a warning for an opener without a closer and keeps
// its text as raw content up to the next opener, so the rest of the file
// still parses.
func (t *tokenizer) unterminated(open int, isVar bool) {
	msg := "Tag '{%' was not properly terminated with '%}'"
	if isVar {
		msg = "Variable '{{' was not properly terminated with '}}'"
	}
	t.warnings = append(t.warnings, Warning{Message: msg, Offset: open})

	next := nextOpener(t.src, open+2)
	if next < 0 {
		next = len(t.src)
	}
	t.text(open, next)
	t.pos = next
}

func (t *tokenizer) delimited(open, closeAt int, isVar bool) token {
	tok := token{kind: tokTag, start: open, end: closeAt + 2}
	if isVar {
		tok.kind = tokVariable
	}

	innerStart, innerEnd := open+2, closeAt
	if innerStart < innerEnd && t.src[innerStart] == '-' {
		tok.trimLeft = true
		innerStart++
	}
	if innerStart < innerEnd && t.src[innerEnd-1] == '-' {
		tok.trimRight = true
		innerEnd--
	}

	inner := t.src[innerStart:innerEnd]
	lead := len(inner) - len(strings.TrimLeft(inner, whitespace))
	markup := strings.TrimSpace(inner)
	markupStart := innerStart + lead

	if isVar {
		tok.markup = markup
		tok.markupStart = markupStart
		return tok
	}

	tok.name, tok.markup, tok.markupStart = splitTag(markup, markupStart)
	return tok
}

// verbatimBody emits the body of a raw or comment block as one text token
// and leaves the position at its end tag, which is tokenized normally.
func (t *tokenizer) verbatimBody(name string) {
	bodyStart := t.pos
	end := -1

	if name == "raw" {
		if loc := endRawRe.FindStringIndex(t.src[bodyStart:]); loc != nil {
			end = bodyStart + loc[0]
		}
	} else {
		depth := 1
		for _, loc := range commentTagRe.FindAllStringSubmatchIndex(t.src[bodyStart:], -1) {
			if loc[2] >= 0 {
				depth--
			} else {
				depth++
			}
			if depth == 0 {
				end = bodyStart + loc[0]
				break
			}
		}
	}

	if end < 0 {
		end = len(t.src)
	}
	t.text(bodyStart, end)
	t.pos = end
}

// splitTag separates the tag name from the rest of the markup.
func splitTag(markup string, markupStart int) (string, string, int) {
	if strings.HasPrefix(markup, "#") {
		rest := markup[1:]
		lead := len(rest) - len(strings.TrimLeft(rest, whitespace))
		return "#", strings.TrimSpace(rest), markupStart + 1 + lead
	}

	nameEnd := strings.IndexAny(markup, whitespace)
	if nameEnd < 0 {
		return markup, "", markupStart + len(markup)
	}
	rest := markup[nameEnd:]
	lead := len(rest) - len(strings.TrimLeft(rest, whitespace))
	return markup[:nameEnd], strings.TrimSpace(rest), markupStart + nameEnd + lead
}

// liquidLines turns the body of a {% liquid %} tag into one tag token per
// non-blank line.
func liquidLines(markup string, markupStart int) []token {
	var tokens []token
	offset := 0
	for _, line := range strings.SplitAfter(markup, "\n") {
		lineStart := markupStart + offset
		offset += len(line)

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		start := lineStart + len(line) - len(strings.TrimLeft(line, whitespace))
		name, rest, restStart := splitTag(trimmed, start)
		tokens = append(tokens, token{
			kind:        tokTag,
			start:       start,
			end:         start + len(trimmed),
			name:        name,
			markup:      rest,
			markupStart: restStart,
			inLiquid:    true,
		})
	}
	return tokens
}

func nextOpener(src string, from int) int {
	for i := from; i+1 < len(src); i++ {
		if src[i] == '{' && (src[i+1] == '{' || src[i+1] == '%') {
			return i
		}
	}
	return -1
}

// findCloser returns the offset of closer, or -1 when another opener or the
// end of input comes first.
func findCloser(src string, from int, closer string) int {
	for i := from; i+1 < len(src); i++ {
		if src[i] == closer[0] && src[i+1] == closer[1] {
			return i
		}
		if src[i] == '{' && (src[i+1] == '{' || src[i+1] == '%') {
			return -1
		}
	}
	return -1
}
