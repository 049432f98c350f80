package fix_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/poscheck/pkg/fix"
)

func TestGenerateDiff(t *testing.T) {
	t.Parallel()

	t.Run("identical content", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, fix.GenerateDiff("a.liquid", "x\ny\n", "x\ny\n"))
		assert.Nil(t, fix.GenerateDiff("a.liquid", "", ""))
	})

	t.Run("single line change", func(t *testing.T) {
		t.Parallel()

		d := fix.GenerateDiff("a.liquid", "{{x}}\nb\n", "{{ x }}\nb\n")
		require.NotNil(t, d)
		assert.True(t, d.HasChanges())
		assert.Equal(t, 1, d.Additions)
		assert.Equal(t, 1, d.Deletions)
		assert.Equal(t,
			"--- a/a.liquid\n+++ b/a.liquid\n@@ -1,2 +1,2 @@\n-{{x}}\n+{{ x }}\n b\n",
			d.String())
	})

	t.Run("removed line", func(t *testing.T) {
		t.Parallel()

		d := fix.GenerateDiff("a.liquid", "a\n{% assign x = 1 %}\nb\n", "a\nb\n")
		require.NotNil(t, d)
		assert.Equal(t, 0, d.Additions)
		assert.Equal(t, 1, d.Deletions)
		require.Len(t, d.Hunks, 1)
		assert.Equal(t, 3, d.Hunks[0].OriginalCount)
		assert.Equal(t, 2, d.Hunks[0].ModifiedCount)
	})

	t.Run("distant changes make separate hunks", func(t *testing.T) {
		t.Parallel()

		var orig, mod []string
		for i := range 20 {
			line := strings.Repeat("x", i+1)
			orig = append(orig, line)
			if i == 0 || i == 19 {
				line += "!"
			}
			mod = append(mod, line)
		}

		d := fix.GenerateDiff("a.liquid", strings.Join(orig, "\n")+"\n", strings.Join(mod, "\n")+"\n")
		require.NotNil(t, d)
		require.Len(t, d.Hunks, 2)
		assert.Equal(t, 1, d.Hunks[0].OriginalStart)
		assert.Equal(t, 17, d.Hunks[1].OriginalStart)
	})

	t.Run("crlf lines compare by content", func(t *testing.T) {
		t.Parallel()

		d := fix.GenerateDiff("a.liquid", "a\r\nb\r\n", "a\r\nc\r\n")
		require.NotNil(t, d)
		assert.Contains(t, d.String(), "-b\n+c\n")
	})
}
