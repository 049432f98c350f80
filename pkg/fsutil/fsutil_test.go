package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/poscheck/pkg/fsutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("returns content and metadata", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page.liquid")
		writeFile(t, path, "{{ title }}\n")

		content, info, err := fsutil.ReadFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "{{ title }}\n", string(content))
		assert.Equal(t, path, info.Path)
		assert.Equal(t, int64(12), info.Size)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope"))
		require.ErrorIs(t, err, fsutil.ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), t.TempDir())
		require.ErrorIs(t, err, fsutil.ErrIsDirectory)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := fsutil.ReadFile(ctx, filepath.Join(t.TempDir(), "x"))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCheckModified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unchanged", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.liquid")
		writeFile(t, path, "a")
		_, info, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)

		modified, err := fsutil.CheckModified(ctx, info)
		require.NoError(t, err)
		assert.False(t, modified)
	})

	t.Run("content changed", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.liquid")
		writeFile(t, path, "a")
		_, info, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)

		writeFile(t, path, "bb")
		require.NoError(t, os.Chtimes(path, time.Now(), info.ModTime.Add(time.Second)))

		modified, err := fsutil.CheckModified(ctx, info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.liquid")
		writeFile(t, path, "a")
		_, info, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)
		require.NoError(t, os.Remove(path))

		modified, err := fsutil.CheckModified(ctx, info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("nil info", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.CheckModified(ctx, nil)
		require.ErrorIs(t, err, fsutil.ErrNilFileInfo)
	})
}

func TestListFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", "views", "pages", "index.liquid"), "")
	writeFile(t, filepath.Join(root, "app", "views", "partials", "card.liquid"), "")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "")
	writeFile(t, filepath.Join(root, ".platformos-check.yml"), "")

	files, err := fsutil.ListFiles(context.Background(), root, fsutil.WalkOptions{
		SkipDirs: fsutil.DefaultSkipDirs(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"app/views/pages/index.liquid",
		"app/views/partials/card.liquid",
	}, files)

	files, err = fsutil.ListFiles(context.Background(), root, fsutil.WalkOptions{
		SkipDirs:      fsutil.DefaultSkipDirs(),
		IncludeHidden: true,
	})
	require.NoError(t, err)
	assert.Contains(t, files, ".platformos-check.yml")
	assert.NotContains(t, files, ".git/HEAD")
}
