package ast

import (
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/poscheck/pkg/filetype"
	"github.com/yaklabco/poscheck/pkg/parser/liquid"
	"github.com/yaklabco/poscheck/pkg/parser/markup"
)

// Parse reads content into a File and builds its trees according to the
// file category. It never fails; parser problems become Warnings.
func Parse(path, content string, version int) *File {
	f := NewFile(path, content, version)

	switch f.Category {
	case filetype.Liquid:
		doc, warnings := liquid.Parse(f.Source)
		for _, w := range warnings {
			f.Warnings = append(f.Warnings, Warning{Source: FromLiquid, Message: w.Message, Offset: w.Offset})
		}
		f.roots = append(f.roots, newLiquidNode(f, nil, doc.Root))
		f.addHTML()

	case filetype.HTML:
		f.addHTML()

	case filetype.YAML:
		doc, err := decodeYAML(f.Source)
		if err != nil {
			f.Warnings = append(f.Warnings, Warning{
				Source:  FromYAML,
				Message: yamlMessage(err),
				Offset:  yamlErrorOffset(f, err),
			})
		}
		f.roots = append(f.roots, newDataNode(f, KindYAMLDocument, doc))

	case filetype.GraphQL:
		f.roots = append(f.roots, newDataNode(f, KindGraphQLDocument, nil))
	}

	return f
}

func (f *File) addHTML() {
	root, warnings := markup.Parse(f.Source)
	for _, w := range warnings {
		f.Warnings = append(f.Warnings, Warning{Source: FromHTML, Message: w.Message, Offset: w.Offset})
	}
	f.roots = append(f.roots, newHTMLNode(f, nil, root))
}

// WarningsFrom returns the warnings produced by one parser.
func (f *File) WarningsFrom(source WarningSource) []Warning {
	var out []Warning
	for _, w := range f.Warnings {
		if w.Source == source {
			out = append(out, w)
		}
	}
	return out
}

// decodeYAML parses every document of a multi-document stream and returns
// the first one.
func decodeYAML(src string) (*yaml.Node, error) {
	dec := yaml.NewDecoder(strings.NewReader(src))

	var first *yaml.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return first, nil
		}
		if err != nil {
			return first, err
		}
		if first == nil {
			first = &doc
		}
	}
}

//nolint:gochecknoglobals // compiled once
var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func yamlMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "yaml: ")
}

// yamlErrorOffset extracts the one-based line yaml.v3 embeds in its error
// messages and returns the offset of that line's start.
func yamlErrorOffset(f *File, err error) int {
	var typeErr *yaml.TypeError
	msg := err.Error()
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		msg = typeErr.Errors[0]
	}

	m := yamlLineRe.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	line, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0
	}
	return f.Offset(line-1, 0)
}
