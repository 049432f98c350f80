// Package ast provides the position-resolved view of a project file that
// checks traverse: the File with its line table and the Node tagged
// variant over Liquid, HTML and data trees.
package ast

import (
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/yaklabco/poscheck/pkg/filetype"
)

// EOL styles.
const (
	LF   = "\n"
	CRLF = "\r\n"
)

const bom = "\uFEFF"

// WarningSource names the parser that produced a warning.
type WarningSource string

// Warning sources.
const (
	FromLiquid WarningSource = "liquid"
	FromHTML   WarningSource = "html"
	FromYAML   WarningSource = "yaml"
)

// Warning is a recoverable parse problem attached to a file.
type Warning struct {
	Source  WarningSource
	Message string
	Offset  int
}

// LineInfo is the byte range of one line, excluding its line break.
type LineInfo struct {
	Start int
	End   int
}

// Position is a resolved source location. Line and Column are zero-based;
// Column counts bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Span is a half-open byte range.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// File is the immutable, parsed view of one project file for one analysis
// run.
type File struct {
	// Path is the project-relative slash path.
	Path string

	// Source is the content with a leading BOM removed and CRLF folded to LF.
	Source string

	// EOL is the line break style detected in the stored content.
	EOL string

	// BOM is set when the stored content began with a byte order mark.
	BOM bool

	Category filetype.Category
	Kind     filetype.Kind

	// Name is the logical name other files use to reference this one.
	Name   string
	Module string

	// Version is the storage version the content was read at.
	Version int

	Lines    []LineInfo
	Warnings []Warning

	roots []*Node
}

// NewFile prepares content for parsing: it detects the line break style,
// strips a BOM and builds the line table.
func NewFile(path, content string, version int) *File {
	info := filetype.Classify(path)

	f := &File{
		Path:     path,
		EOL:      DetectEOL(content),
		BOM:      strings.HasPrefix(content, bom),
		Category: info.Category,
		Kind:     info.Kind,
		Name:     info.Name,
		Module:   info.Module,
		Version:  version,
	}

	if f.BOM {
		if decoded, err := unicode.UTF8BOM.NewDecoder().String(content); err == nil {
			content = decoded
		} else {
			content = strings.TrimPrefix(content, bom)
		}
	}
	f.Source = strings.ReplaceAll(content, CRLF, LF)
	f.Lines = buildLines(f.Source)
	return f
}

// DetectEOL returns CRLF when content contains any CRLF sequence.
func DetectEOL(content string) string {
	if strings.Contains(content, CRLF) {
		return CRLF
	}
	return LF
}

// Encode converts LF-normalized content back to the file's stored form.
func (f *File) Encode(content string) string {
	if f.EOL == CRLF {
		content = strings.ReplaceAll(content, LF, CRLF)
	}
	if f.BOM {
		content = bom + content
	}
	return content
}

func buildLines(src string) []LineInfo {
	lines := make([]LineInfo, 0, strings.Count(src, LF)+1)
	start := 0
	for i := range len(src) {
		if src[i] == '\n' {
			lines = append(lines, LineInfo{Start: start, End: i})
			start = i + 1
		}
	}
	return append(lines, LineInfo{Start: start, End: len(src)})
}

// LineCount returns the number of lines. An empty file has one empty line.
func (f *File) LineCount() int {
	return len(f.Lines)
}

// Position resolves offset against the line table. Offsets outside the
// source are clamped to its bounds.
func (f *File) Position(offset int) Position {
	offset = clamp(offset, 0, len(f.Source))

	line := sort.Search(len(f.Lines), func(i int) bool {
		return f.Lines[i].End >= offset
	})
	if line >= len(f.Lines) {
		line = len(f.Lines) - 1
	}

	return Position{Offset: offset, Line: line, Column: offset - f.Lines[line].Start}
}

// Offset converts a zero-based line and column back to a byte offset,
// clamped to the line.
func (f *File) Offset(line, column int) int {
	li := f.Lines[clamp(line, 0, len(f.Lines)-1)]
	return li.Start + clamp(column, 0, li.End-li.Start)
}

// Line returns the text of a zero-based line without its line break, or ""
// when line is out of range.
func (f *File) Line(line int) string {
	if line < 0 || line >= len(f.Lines) {
		return ""
	}
	li := f.Lines[line]
	return f.Source[li.Start:li.End]
}

// SourceExcerpt returns the trimmed text of a zero-based line. Out of range
// lines are clamped to the first or last line, so it never fails.
func (f *File) SourceExcerpt(line int) string {
	return strings.TrimSpace(f.Line(clamp(line, 0, len(f.Lines)-1)))
}

// Slice returns the source text of span, clamped to the source.
func (f *File) Slice(s Span) string {
	start := clamp(s.Start, 0, len(f.Source))
	end := clamp(s.End, start, len(f.Source))
	return f.Source[start:end]
}

// Roots returns the trees of the file in traversal order: the Liquid tree
// first, then the HTML tree, then a data document. Unparsed files have none.
func (f *File) Roots() []*Node {
	return f.roots
}

// Root returns the first tree of the file, or nil.
func (f *File) Root() *Node {
	if len(f.roots) == 0 {
		return nil
	}
	return f.roots[0]
}

// Parsed reports whether Parse built at least one tree.
func (f *File) Parsed() bool {
	return len(f.roots) > 0
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
