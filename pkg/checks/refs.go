package checks

import (
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/filetype"
	"github.com/yaklabco/poscheck/pkg/parser/liquid"
)

// reference is a literal template name used by a tag.
type reference struct {
	file *ast.File
	tag  string
	name string
	span ast.Span
}

// targetKind is the kind of file a referencing tag resolves to.
func (r reference) targetKind() filetype.Kind {
	if r.tag == "include_form" {
		return filetype.KindForm
	}
	return filetype.KindPartial
}

// referenceIndex is the per-file fact store shared by the cross-file
// checks: collected while files are visited, read once every file is done.
type referenceIndex struct {
	refs    map[string][]reference
	dynamic map[string]bool
}

func newReferenceIndex() *referenceIndex {
	return &referenceIndex{refs: make(map[string][]reference), dynamic: make(map[string]bool)}
}

// collect records the references of f, replacing earlier facts for it.
func (idx *referenceIndex) collect(f *ast.File) {
	var refs []reference
	dynamic := false
	for _, root := range f.Roots() {
		if root.Family() != ast.FamilyLiquid {
			continue
		}
		ast.Walk(root, func(n *ast.Node) {
			if !n.IsTag() {
				return
			}
			ref, ok := liquid.ReferencedTemplate(n.Liquid())
			if !ok {
				if isReferencingTag(n.TagName()) {
					dynamic = true
				}
				return
			}
			refs = append(refs, reference{
				file: f,
				tag:  n.TagName(),
				name: ref.Name,
				span: ast.Span{Start: ref.Start, End: ref.End},
			})
		}, nil)
	}
	idx.refs[f.Path] = refs
	idx.dynamic[f.Path] = dynamic
}

// complete collects every file the single-file pass did not cover.
func (idx *referenceIndex) complete(files []*ast.File) {
	for _, f := range files {
		if _, ok := idx.refs[f.Path]; !ok && f.Category == filetype.Liquid {
			idx.collect(f)
		}
	}
}

// hasDynamic reports whether any file references a template by a computed
// name.
func (idx *referenceIndex) hasDynamic() bool {
	for _, d := range idx.dynamic {
		if d {
			return true
		}
	}
	return false
}

func isReferencingTag(name string) bool {
	switch name {
	case "render", "include", "theme_render", "include_form", "function":
		return true
	default:
		return false
	}
}

// definedNames indexes the logical names of project paths by kind.
func definedNames(paths []string) map[filetype.Kind]map[string]bool {
	out := make(map[filetype.Kind]map[string]bool)
	for _, p := range paths {
		info := filetype.Classify(p)
		if info.Name == "" {
			continue
		}
		if out[info.Kind] == nil {
			out[info.Kind] = make(map[string]bool)
		}
		out[info.Kind][info.Name] = true
	}
	return out
}
