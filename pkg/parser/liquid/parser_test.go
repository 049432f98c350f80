package liquid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/poscheck/pkg/parser/liquid"
)

func collect(root *liquid.Node) []*liquid.Node {
	var nodes []*liquid.Node
	liquid.Walk(root, func(n *liquid.Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

func TestParseInline(t *testing.T) {
	t.Parallel()

	src := "<p>{{ title | upcase }}</p>{% render 'card', item: item %}"
	doc, warnings := liquid.Parse(src)
	require.Empty(t, warnings)
	require.Len(t, doc.Root.Children, 4)

	raw := doc.Root.Children[0]
	assert.Equal(t, liquid.TypeRaw, raw.Type)
	assert.Equal(t, "<p>", raw.Markup)

	variable := doc.Root.Children[1]
	assert.Equal(t, liquid.TypeVariable, variable.Type)
	assert.Equal(t, "title | upcase", variable.Markup)
	assert.Equal(t, 3, variable.Start)
	assert.Equal(t, 23, variable.End)
	assert.Equal(t, "title | upcase", src[variable.MarkupStart:variable.MarkupStart+len(variable.Markup)])

	tag := doc.Root.Children[3]
	assert.Equal(t, liquid.TypeTag, tag.Type)
	assert.Equal(t, "render", tag.Name)
	assert.Equal(t, "'card', item: item", tag.Markup)
	assert.Equal(t, len(src), tag.End)
}

func TestParseBlocks(t *testing.T) {
	t.Parallel()

	src := "{% if a %}A{% elsif b %}B{% else %}C{% endif %}"
	doc, warnings := liquid.Parse(src)
	require.Empty(t, warnings)
	require.Len(t, doc.Root.Children, 1)

	block := doc.Root.Children[0]
	assert.True(t, block.Block)
	assert.True(t, block.Closed)
	assert.Equal(t, 0, block.Start)
	assert.Equal(t, len(src), block.End)
	assert.Equal(t, 10, block.OpenEnd)
	assert.Equal(t, 36, block.CloseStart)

	require.Len(t, block.Children, 3)
	assert.Equal(t, "A", block.Children[0].Markup)

	elsif := block.Children[1]
	assert.Equal(t, "elsif", elsif.Name)
	assert.Equal(t, "b", elsif.Markup)
	require.Len(t, elsif.Children, 1)
	assert.Equal(t, "B", elsif.Children[0].Markup)
	assert.Equal(t, 25, elsif.End)

	elseBranch := block.Children[2]
	assert.Equal(t, "else", elseBranch.Name)
	assert.Equal(t, 36, elseBranch.End)
}

func TestParseWhitespaceControl(t *testing.T) {
	t.Parallel()

	doc, warnings := liquid.Parse("{%- assign x = 1 -%}{{- x -}}")
	require.Empty(t, warnings)
	require.Len(t, doc.Root.Children, 2)

	tag := doc.Root.Children[0]
	assert.True(t, tag.TrimLeft)
	assert.True(t, tag.TrimRight)
	assert.Equal(t, "assign", tag.Name)
	assert.Equal(t, "x = 1", tag.Markup)

	variable := doc.Root.Children[1]
	assert.Equal(t, "x", variable.Markup)
	assert.Equal(t, 24, variable.MarkupStart)
}

func TestParseRawAndComment(t *testing.T) {
	t.Parallel()

	src := "{% raw %}{{ not parsed {% x %}{% endraw %}" +
		"{% comment %}a {% comment %}b{% endcomment %} c{% endcomment %}"
	doc, warnings := liquid.Parse(src)
	require.Empty(t, warnings)
	require.Len(t, doc.Root.Children, 2)

	raw := doc.Root.Children[0]
	require.Len(t, raw.Children, 1)
	assert.Equal(t, "{{ not parsed {% x %}", raw.Children[0].Markup)

	comment := doc.Root.Children[1]
	assert.Equal(t, "comment", comment.Name)
	assert.True(t, comment.Closed)
	require.Len(t, comment.Children, 1)
	assert.Equal(t, "a {% comment %}b{% endcomment %} c", comment.Children[0].Markup)
}

func TestParseLiquidTag(t *testing.T) {
	t.Parallel()

	src := "{% liquid\n  assign x = 1\n  if x\n    echo x\n  endif\n%}"
	doc, warnings := liquid.Parse(src)
	require.Empty(t, warnings)
	require.Len(t, doc.Root.Children, 1)

	tag := doc.Root.Children[0]
	assert.Equal(t, "liquid", tag.Name)
	require.Len(t, tag.Children, 2)

	assign := tag.Children[0]
	assert.Equal(t, "assign", assign.Name)
	assert.True(t, assign.InLiquidTag)
	assert.Equal(t, "assign x = 1", src[assign.Start:assign.End])

	ifTag := tag.Children[1]
	assert.True(t, ifTag.Closed)
	require.Len(t, ifTag.Children, 1)
	assert.Equal(t, "echo", ifTag.Children[0].Name)
}

func TestParseWarnings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		message string
		offset  int
	}{
		{
			name:    "unterminated tag",
			src:     "a\n{% if x\n{{ y }}",
			message: "Tag '{%' was not properly terminated with '%}'",
			offset:  2,
		},
		{
			name:    "unterminated variable",
			src:     "{{ y",
			message: "Variable '{{' was not properly terminated with '}}'",
			offset:  0,
		},
		{
			name:    "never closed",
			src:     "x{% for a in b %}",
			message: "'for' tag was never closed",
			offset:  1,
		},
		{
			name:    "unexpected end",
			src:     "{% endif %}",
			message: "Unexpected 'endif' tag, no 'if' tag is open",
			offset:  0,
		},
		{
			name:    "unknown tag",
			src:     "ab{% frobnicate %}",
			message: "Unknown tag 'frobnicate'",
			offset:  2,
		},
		{
			name:    "stray branch",
			src:     "{% else %}",
			message: "Unknown tag 'else'",
			offset:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, warnings := liquid.Parse(tt.src)
			require.Len(t, warnings, 1)
			assert.Equal(t, tt.message, warnings[0].Message)
			assert.Equal(t, tt.offset, warnings[0].Offset)
			assert.Equal(t, len(tt.src), doc.Root.End)
		})
	}
}

func TestParseRecoversAfterUnterminatedTag(t *testing.T) {
	t.Parallel()

	src := "{% assign a = 1\n{% assign b = 2 %}{{ b }}"
	doc, warnings := liquid.Parse(src)
	require.Len(t, warnings, 1)

	var names []string
	for _, n := range collect(doc.Root) {
		if n.Type == liquid.TypeTag {
			names = append(names, n.Name)
		}
	}
	assert.Equal(t, []string{"assign"}, names)
	assert.Equal(t, liquid.TypeRaw, doc.Root.Children[0].Type)
	assert.Equal(t, liquid.TypeVariable, doc.Root.Children[2].Type)
}

func TestParseMismatchedNesting(t *testing.T) {
	t.Parallel()

	doc, warnings := liquid.Parse("{% if a %}{% for x in y %}{% endif %}")
	require.Len(t, warnings, 1)
	assert.Equal(t, "'for' tag was never closed", warnings[0].Message)

	ifTag := doc.Root.Children[0]
	assert.True(t, ifTag.Closed)
	forTag := ifTag.Children[0]
	assert.False(t, forTag.Closed)
	assert.Equal(t, 26, forTag.End)
}

func TestSpansStayInBounds(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"{%",
		"{{",
		"{% if %}{% for %}",
		"{% liquid\n if a\n%}",
		"{% comment %}never",
		"}}%}{{ }}{% %}",
	}

	for _, src := range inputs {
		doc, _ := liquid.Parse(src)
		for _, n := range collect(doc.Root) {
			assert.GreaterOrEqual(t, n.Start, 0, "source %q", src)
			assert.LessOrEqual(t, n.Start, n.End, "source %q", src)
			assert.LessOrEqual(t, n.End, len(src), "source %q", src)
		}
	}
}
