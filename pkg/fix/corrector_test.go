package fix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/fix"
)

func newCorrector(content string) (*fix.Corrector, *ast.File) {
	f := ast.Parse("app/views/pages/index.liquid", content, 1)
	return fix.NewCorrector(f), f
}

func TestApplyNoEditsLeavesContent(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"", "a\nb", "a\r\nb\r\n", "\uFEFFa\r\n", "mixed\r\nends\n"} {
		c, _ := newCorrector(content)
		out, err := c.Apply(content)
		require.NoError(t, err)
		assert.False(t, out.Changed)
		assert.Equal(t, content, out.Content)
	}
}

func TestApplySplicesRightToLeft(t *testing.T) {
	t.Parallel()

	c, _ := newCorrector("{{a}} {{b}} {{c}}")
	c.SetCheck("SpaceInsideBraces")
	c.Replace(0, 5, "{{ a }}")
	c.Replace(12, 17, "{{ c }}")
	c.Replace(6, 11, "{{ b }}")

	out, err := c.Apply("{{a}} {{b}} {{c}}")
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, "{{ a }} {{ b }} {{ c }}", out.Content)
	assert.Len(t, out.Applied, 3)
	assert.Empty(t, out.Conflicts)
}

func TestApplyFirstRegisteredWins(t *testing.T) {
	t.Parallel()

	c, _ := newCorrector("hello world")
	c.SetCheck("First")
	c.Replace(0, 5, "HELLO")
	c.SetCheck("Second")
	c.Replace(3, 8, "XXXXX")

	out, err := c.Apply("hello world")
	require.NoError(t, err)
	assert.Equal(t, "HELLO world", out.Content)

	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, "Second", out.Conflicts[0].Dropped.Check)
	assert.Equal(t, "First", out.Conflicts[0].Kept.Check)
	assert.Contains(t, out.Conflicts[0].String(), "dropped")
}

func TestApplyFirstRegisteredWinsRegardlessOfPosition(t *testing.T) {
	t.Parallel()

	c, _ := newCorrector("abcdef")
	c.Replace(2, 6, "X")
	c.Replace(0, 4, "Y")

	out, err := c.Apply("abcdef")
	require.NoError(t, err)
	assert.Equal(t, "abX", out.Content)
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, 0, out.Conflicts[0].Dropped.Start)
}

func TestOverlapRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		edits     [][3]any
		want      string
		conflicts int
	}{
		{
			name:  "adjacent replacements",
			edits: [][3]any{{0, 2, "X"}, {2, 4, "Y"}},
			want:  "XYef",
		},
		{
			name:  "insertions at one offset keep registration order",
			edits: [][3]any{{2, 2, "1"}, {2, 2, "2"}},
			want:  "ab12cdef",
		},
		{
			name:  "insertion at start of replacement",
			edits: [][3]any{{2, 4, "X"}, {2, 2, "<"}},
			want:  "ab<Xef",
		},
		{
			name:  "insertion at end of replacement",
			edits: [][3]any{{2, 4, "X"}, {4, 4, ">"}},
			want:  "abX>ef",
		},
		{
			name:      "insertion inside replacement",
			edits:     [][3]any{{1, 5, "X"}, {3, 3, "!"}},
			want:      "aXf",
			conflicts: 1,
		},
		{
			name:  "duplicate edit applies once",
			edits: [][3]any{{0, 1, "Z"}, {0, 1, "Z"}},
			want:  "Zbcdef",
		},
		{
			name:      "same range different text",
			edits:     [][3]any{{0, 1, "Z"}, {0, 1, "Q"}},
			want:      "Zbcdef",
			conflicts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _ := newCorrector("abcdef")
			for _, e := range tt.edits {
				c.Replace(e[0].(int), e[1].(int), e[2].(string))
			}
			out, err := c.Apply("abcdef")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Content)
			assert.Len(t, out.Conflicts, tt.conflicts)
		})
	}
}

func TestApplyRestoresLineEndings(t *testing.T) {
	t.Parallel()

	original := "\uFEFF{{a}}\r\n<p>\r\n"
	c, f := newCorrector(original)
	require.Equal(t, "{{a}}\n<p>\n", f.Source)

	c.Replace(0, 5, "{{ a }}")
	out, err := c.Apply(original)
	require.NoError(t, err)
	assert.Equal(t, "\uFEFF{{ a }}\r\n<p>\r\n", out.Content)
}

func TestApplyNoOpEditIsUnchanged(t *testing.T) {
	t.Parallel()

	original := "a\r\nb\r\n"
	c, _ := newCorrector(original)
	c.Replace(0, 1, "a")

	out, err := c.Apply(original)
	require.NoError(t, err)
	assert.False(t, out.Changed)
}

func TestInvalidEditsAreRejected(t *testing.T) {
	t.Parallel()

	c, _ := newCorrector("abc")
	c.SetCheck("Broken")
	c.Replace(-1, 1, "x")
	c.Replace(2, 1, "x")
	c.Replace(0, 10, "x")
	c.Insert(3, "!")

	out, err := c.Apply("abc")
	require.ErrorIs(t, err, fix.ErrInvalidEdit)
	assert.Equal(t, "abc!", out.Content)

	var verr *fix.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Broken", verr.Edit.Check)

	assert.Len(t, c.TakeErrors(), 3)
	assert.Empty(t, c.TakeErrors())
}

func TestSeqKeepsGrowingAfterTakeErrors(t *testing.T) {
	t.Parallel()

	c, _ := newCorrector("abc")
	c.Insert(0, "a")
	c.Replace(5, 1, "x")
	require.Len(t, c.TakeErrors(), 1)
	c.Insert(1, "b")

	edits := c.Edits()
	require.Len(t, edits, 2)
	assert.Equal(t, 0, edits[0].Seq)
	assert.Equal(t, 2, edits[1].Seq)
}

func TestNodeHelpers(t *testing.T) {
	t.Parallel()

	c, f := newCorrector("{% include 'a' %}")
	var tag *ast.Node
	for child := range f.Root().Children() {
		tag = child
	}
	require.NotNil(t, tag)

	c.InsertBefore(tag, "<")
	c.InsertAfter(tag, ">")
	c.ReplaceNode(tag, "{% render 'a' %}")
	assert.True(t, c.Pending())
	assert.Len(t, c.Edits(), 3)

	out, err := c.Apply(f.Source)
	require.NoError(t, err)
	assert.Equal(t, "<{% render 'a' %}>", out.Content)
}
