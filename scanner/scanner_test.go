package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()
	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
	return tempDir
}

func TestScanDefaultExtensions(t *testing.T) {
	t.Parallel()

	tempDir := writeTree(t, map[string]string{
		"index.html":         "<p>x</p>",
		"legacy.HTM":         "<p>y</p>",
		"feed.xml":           "<rss/>",
		"notes.txt":          "plain",
		"sub/page.xhtml":     "<html/>",
		".cache/cached.html": "<p>hidden</p>",
	})

	files, err := New(tempDir).Scan()
	require.NoError(t, err)

	paths := make([]string, 0, len(files))
	for _, file := range files {
		rel, err := filepath.Rel(tempDir, file.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
		assert.Greater(t, file.Size, int64(0), "File size should be greater than 0")
	}
	assert.Equal(t, []string{"feed.xml", "index.html", "legacy.HTM", "sub/page.xhtml"}, paths)
}

func TestScanCustomExtensions(t *testing.T) {
	t.Parallel()

	tempDir := writeTree(t, map[string]string{
		"a.tpl":  "<p>",
		"b.html": "<p>",
	})

	files, err := New(tempDir, "tpl").Scan()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(tempDir, "a.tpl"), files[0].Path)
}

func TestScanMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "nope")).Scan()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMatch(t *testing.T) {
	t.Parallel()

	s := New(".")
	assert.True(t, s.Match("a/b/index.HTML"))
	assert.True(t, s.Match("feed.xml"))
	assert.False(t, s.Match("main.go"))
	assert.False(t, s.Match("html"))
}
