package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gnolang/tagscan/rules"
	"github.com/gnolang/tagscan/scrape"
	"github.com/gnolang/tagscan/token"
)

func sampleResults(path string) []rules.Result {
	return []rules.Result{{
		Rule:   "title",
		Source: path,
		Span:   scrape.Span{Start: 2, End: 5},
		Tokens: []token.Token{
			token.NewTag("title"),
			token.NewText("Plan"),
			token.NewTag("/title"),
		},
	}}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCache(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")
	cache, err := New(zaptest.NewLogger(t), cacheDir)
	require.NoError(t, err)

	t.Run("SaveAndLoad", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "page.html")
		writeFile(t, filename, "<html><head><title>Plan</title></head></html>")

		require.NoError(t, cache.Set(filename, sampleResults(filename)))

		loaded, found := cache.Get(filename)
		require.True(t, found)
		require.Len(t, loaded, 1)
		assert.Equal(t, "title", loaded[0].Rule)
		assert.Equal(t, filename, loaded[0].Source)
		assert.Equal(t, scrape.Span{Start: 2, End: 5}, loaded[0].Span)
		assert.Equal(t, "<title>Plan</title>", loaded[0].Markup())
		assert.Equal(t, "Plan", loaded[0].Text())
	})

	t.Run("NotFound", func(t *testing.T) {
		_, found := cache.Get("nonexistent.html")
		assert.False(t, found)
	})

	t.Run("FileModified", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "modified.html")
		writeFile(t, filename, "<p>one</p>")
		require.NoError(t, cache.Set(filename, nil))

		_, found := cache.Get(filename)
		require.True(t, found)

		writeFile(t, filename, "<p>two</p>")
		_, found = cache.Get(filename)
		assert.False(t, found)
	})

	t.Run("InvalidateAll", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "invalidate.html")
		writeFile(t, filename, "<p>x</p>")
		require.NoError(t, cache.Set(filename, nil))

		require.NoError(t, cache.InvalidateAll())
		_, found := cache.Get(filename)
		assert.False(t, found)
	})
}

func TestCacheMaxAge(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	cache, err := New(nil, filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	filename := filepath.Join(tmpDir, "page.html")
	writeFile(t, filename, "<p>x</p>")
	require.NoError(t, cache.Set(filename, nil))

	cache.SetMaxAge(-time.Second)
	_, found := cache.Get(filename)
	assert.False(t, found)
}

func TestCachePersistsAcrossRuns(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")
	rulesFile := filepath.Join(tmpDir, "rules.yaml")
	writeFile(t, rulesFile, "name: a\n")
	filename := filepath.Join(tmpDir, "page.html")
	writeFile(t, filename, "<title>Plan</title>")

	first, err := New(nil, cacheDir, rulesFile)
	require.NoError(t, err)
	require.NoError(t, first.Set(filename, sampleResults(filename)))

	second, err := New(nil, cacheDir, rulesFile)
	require.NoError(t, err)
	loaded, found := second.Get(filename)
	require.True(t, found)
	assert.Len(t, loaded, 1)

	// a changed rules file drops everything
	writeFile(t, rulesFile, "name: b\n")
	third, err := New(nil, cacheDir, rulesFile)
	require.NoError(t, err)
	_, found = third.Get(filename)
	assert.False(t, found)
}

func TestCacheMissingDependency(t *testing.T) {
	t.Parallel()

	_, err := New(nil, t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestProcessor(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	cache, err := New(zaptest.NewLogger(t), filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	filename := filepath.Join(tmpDir, "page.html")
	writeFile(t, filename, "<title>Plan</title>")

	calls := 0
	process := cache.Processor(func(path string) ([]rules.Result, error) {
		calls++
		return sampleResults(path), nil
	})

	for i := 0; i < 3; i++ {
		results, err := process(filename)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Plan", results[0].Text())
	}
	assert.Equal(t, 1, calls)

	failing := cache.Processor(func(path string) ([]rules.Result, error) {
		return nil, os.ErrPermission
	})
	_, err = failing(filepath.Join(tmpDir, "other.html"))
	assert.ErrorIs(t, err, os.ErrPermission)
}
