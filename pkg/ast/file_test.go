package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/filetype"
)

func TestNewFileNormalizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		source  string
		eol     string
		bom     bool
	}{
		{name: "lf", content: "a\nb\n", source: "a\nb\n", eol: ast.LF},
		{name: "crlf", content: "a\r\nb\r\n", source: "a\nb\n", eol: ast.CRLF},
		{name: "bom", content: "\uFEFFa\r\n", source: "a\n", eol: ast.CRLF, bom: true},
		{name: "empty", content: "", source: "", eol: ast.LF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := ast.NewFile("app/views/pages/a.liquid", tt.content, 1)
			assert.Equal(t, tt.source, f.Source)
			assert.Equal(t, tt.eol, f.EOL)
			assert.Equal(t, tt.bom, f.BOM)
			assert.Equal(t, tt.content, f.Encode(f.Source), "encode must restore the stored form")
		})
	}
}

func TestFileClassification(t *testing.T) {
	t.Parallel()

	f := ast.NewFile("app/views/partials/shared/card.liquid", "", 3)
	assert.Equal(t, filetype.Liquid, f.Category)
	assert.Equal(t, filetype.KindPartial, f.Kind)
	assert.Equal(t, "shared/card", f.Name)
	assert.Equal(t, 3, f.Version)
}

func TestPosition(t *testing.T) {
	t.Parallel()

	f := ast.NewFile("a.liquid", "ab\ncd\n\nef", 1)
	require.Equal(t, 4, f.LineCount())

	tests := []struct {
		offset int
		want   ast.Position
	}{
		{0, ast.Position{Offset: 0, Line: 0, Column: 0}},
		{2, ast.Position{Offset: 2, Line: 0, Column: 2}},
		{3, ast.Position{Offset: 3, Line: 1, Column: 0}},
		{6, ast.Position{Offset: 6, Line: 2, Column: 0}},
		{8, ast.Position{Offset: 8, Line: 3, Column: 1}},
		{9, ast.Position{Offset: 9, Line: 3, Column: 2}},
		{-5, ast.Position{Offset: 0, Line: 0, Column: 0}},
		{99, ast.Position{Offset: 9, Line: 3, Column: 2}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Position(tt.offset), "offset %d", tt.offset)
	}

	assert.Equal(t, 4, f.Offset(1, 1))
	assert.Equal(t, 5, f.Offset(1, 99))
}

func TestSourceExcerptClamps(t *testing.T) {
	t.Parallel()

	f := ast.NewFile("a.liquid", "  first  \nsecond\n  last ", 1)

	assert.Equal(t, "first", f.SourceExcerpt(0))
	assert.Equal(t, "second", f.SourceExcerpt(1))
	assert.Equal(t, "last", f.SourceExcerpt(2))
	assert.Equal(t, "first", f.SourceExcerpt(-3))
	assert.Equal(t, "last", f.SourceExcerpt(42))

	empty := ast.NewFile("b.liquid", "", 1)
	assert.Empty(t, empty.SourceExcerpt(10))
}
