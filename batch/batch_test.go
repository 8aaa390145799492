package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gnolang/tagscan/rules"
	"github.com/gnolang/tagscan/token"
)

const departures = `<table>
<tr><td class="time">Uhrzeit</td><td>%02d:15</td></tr>
<tr><td class="time">Uhrzeit</td><td>%02d:45</td></tr>
</table>`

func writePages(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		name := filepath.Join(dir, fmt.Sprintf("page%d.html", i))
		require.NoError(t, os.WriteFile(name, []byte(fmt.Sprintf(departures, i, i)), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("<p>skip</p>"), 0o644))
	return dir
}

func departureRules(t *testing.T) []rules.Compiled {
	t.Helper()
	compiled, err := rules.DefaultConfig().Compile(token.DefaultOptions())
	require.NoError(t, err)
	return compiled
}

func TestProcessPathDirectory(t *testing.T) {
	t.Parallel()

	dir := writePages(t, 5)
	var progress bytes.Buffer
	cfg := Config{Workers: 2, Progress: &progress}

	results, err := ProcessPath(context.Background(), zaptest.NewLogger(t), cfg, dir, FileProcessor(departureRules(t), nil))
	require.NoError(t, err)
	require.Len(t, results, 10)

	for i, r := range results {
		page := i / 2
		assert.Equal(t, filepath.Join(dir, fmt.Sprintf("page%d.html", page)), r.Source)
		assert.Equal(t, "departure", r.Rule)
		minute := "15"
		if i%2 == 1 {
			minute = "45"
		}
		assert.Equal(t, fmt.Sprintf("Uhrzeit %02d:%s", page, minute), r.Text())
	}
	assert.NotEmpty(t, progress.String())
}

func TestProcessPathSingleFile(t *testing.T) {
	t.Parallel()

	dir := writePages(t, 1)
	results, err := ProcessPath(context.Background(), nil, Config{}, filepath.Join(dir, "notes.txt"), FileProcessor(departureRules(t), nil))
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = ProcessPath(context.Background(), nil, Config{}, filepath.Join(dir, "page0.html"), FileProcessor(departureRules(t), nil))
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestProcessPathMissing(t *testing.T) {
	t.Parallel()

	_, err := ProcessPath(context.Background(), nil, Config{}, filepath.Join(t.TempDir(), "missing"), FileProcessor(nil, nil))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessPathFileErrors(t *testing.T) {
	t.Parallel()

	dir := writePages(t, 4)
	boom := errors.New("boom")
	failing := filepath.Join(dir, "page2.html")
	processor := func(path string) ([]rules.Result, error) {
		if path == failing {
			return nil, boom
		}
		return []rules.Result{{Rule: "seen", Source: path}}, nil
	}

	results, err := ProcessPath(context.Background(), zaptest.NewLogger(t), Config{}, dir, processor)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, results, 3)
}

func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()

	dir := writePages(t, 20)
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	processor := func(path string) ([]rules.Result, error) {
		if calls.Add(1) == 2 {
			cancel()
		}
		time.Sleep(5 * time.Millisecond)
		return []rules.Result{{Rule: "seen", Source: path}}, nil
	}

	results, err := ProcessPath(ctx, nil, Config{Workers: 1}, dir, processor)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotEmpty(t, results, "partial results are kept")
	assert.Less(t, len(results), 20)
}

func TestProcessFiles(t *testing.T) {
	t.Parallel()

	first := writePages(t, 2)
	second := writePages(t, 1)
	missing := filepath.Join(t.TempDir(), "missing.html")

	results, err := ProcessFiles(context.Background(), nil, Config{}, []string{first, missing, second}, FileProcessor(departureRules(t), nil))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Len(t, results, 6)
}

func TestScanFileLatin1(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "latin1.html")
	page := "<meta charset=\"iso-8859-1\"><title>Gr\xfc\xdfe</title>"
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))

	results, err := ScanFile(path, departureRules(t), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "title", results[0].Rule)
	assert.Equal(t, "Grüße", results[0].Text())
	assert.Equal(t, path, results[0].Source)
}

func TestProcessPathIgnorePaths(t *testing.T) {
	t.Parallel()

	dir := writePages(t, 3)
	sub := filepath.Join(dir, "archive")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "old.html"), []byte(fmt.Sprintf(departures, 9, 9)), 0o644))

	cfg := Config{IgnorePaths: []string{
		filepath.Join(dir, "page1.html"),
		sub + string(filepath.Separator),
		" ",
	}}
	results, err := ProcessPath(context.Background(), nil, cfg, dir, FileProcessor(departureRules(t), nil))
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.NotEqual(t, filepath.Join(dir, "page1.html"), r.Source)
		assert.NotContains(t, r.Source, "archive")
	}

	results, err = ProcessPath(context.Background(), nil, Config{IgnorePaths: []string{dir}}, dir, FileProcessor(departureRules(t), nil))
	require.NoError(t, err)
	assert.Empty(t, results)
}
