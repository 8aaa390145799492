package cache

import (
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gnolang/tagscan/batch"
	"github.com/gnolang/tagscan/lexer"
	"github.com/gnolang/tagscan/rules"
	"github.com/gnolang/tagscan/scrape"
)

const (
	cacheFileName = "results.gob"
	DefaultMaxAge = 24 * time.Hour
)

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

type storedResult struct {
	Rule   string
	Start  int
	End    int
	Markup string
}

type CacheEntry struct {
	Metadata     fileMetadata
	Results      []storedResult
	CreatedAt    time.Time
	LastAccessed time.Time
}

// cacheFile is the on-disk form of the cache.
type cacheFile struct {
	Dependencies map[string]string
	Entries      map[string]CacheEntry
}

// Cache keeps the rule results of files between runs. An entry is reused
// while the file content is unchanged and the dependency files, usually
// the rules file, still have the hashes they had when it was stored.
type Cache struct {
	CacheDir         string
	logger           *zap.Logger
	entries          map[string]CacheEntry
	mutex            sync.Mutex
	maxAge           time.Duration
	dependencyFiles  []string
	dependencyHashes map[string]string
}

func New(logger *zap.Logger, cacheDir string, dependencies ...string) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir:         cacheDir,
		logger:           logger,
		entries:          make(map[string]CacheEntry),
		maxAge:           DefaultMaxAge,
		dependencyFiles:  dependencies,
		dependencyHashes: make(map[string]string, len(dependencies)),
	}
	if err := cache.updateDependencyHashes(); err != nil {
		return nil, err
	}
	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return cache, nil
}

func (c *Cache) load() error {
	file, err := os.Open(filepath.Join(c.CacheDir, cacheFileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	var stored cacheFile
	if err := gob.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}

	if !maps.Equal(stored.Dependencies, c.dependencyHashes) {
		c.logger.Debug("cache dependencies changed, discarding entries", zap.String("dir", c.CacheDir))
		return nil
	}
	if stored.Entries != nil {
		c.entries = stored.Entries
	}
	return nil
}

// save must be called with the mutex held.
func (c *Cache) save() error {
	path := filepath.Join(c.CacheDir, cacheFileName)
	tmp, err := os.CreateTemp(c.CacheDir, cacheFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	stored := cacheFile{
		Dependencies: c.dependencyHashes,
		Entries:      c.entries,
	}
	if err := gob.NewEncoder(tmp).Encode(stored); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Set stores the results of filename.
func (c *Cache) Set(filename string, results []rules.Result) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	metadata, err := getFileMetadata(filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	stored := make([]storedResult, len(results))
	for i, r := range results {
		stored[i] = storedResult{
			Rule:   r.Rule,
			Start:  r.Span.Start,
			End:    r.Span.End,
			Markup: r.Markup(),
		}
	}

	now := time.Now()
	c.entries[filename] = CacheEntry{
		Metadata:     metadata,
		Results:      stored,
		CreatedAt:    now,
		LastAccessed: now,
	}
	return c.save()
}

// Get returns the stored results of filename if they are still valid. The
// matched tokens are lexed again from the stored markup.
func (c *Cache) Get(filename string) ([]rules.Result, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return nil, false
	}
	if c.isEntryInvalid(filename, entry) {
		delete(c.entries, filename)
		return nil, false
	}

	results := make([]rules.Result, 0, len(entry.Results))
	for _, r := range entry.Results {
		tokens, err := lexer.TokenizeString(r.Markup)
		if err != nil {
			delete(c.entries, filename)
			return nil, false
		}
		results = append(results, rules.Result{
			Rule:   r.Rule,
			Source: filename,
			Span:   scrape.Span{Start: r.Start, End: r.End},
			Tokens: tokens,
		})
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry
	return results, true
}

func (c *Cache) isEntryInvalid(filename string, entry CacheEntry) bool {
	// too old
	if time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}

	current, err := getFileMetadata(filename)
	if err != nil {
		return true
	}
	return current.Hash != entry.Metadata.Hash ||
		!current.LastModified.Equal(entry.Metadata.LastModified)
}

func (c *Cache) updateDependencyHashes() error {
	for _, file := range c.dependencyFiles {
		hash, err := getFileHash(file)
		if err != nil {
			return fmt.Errorf("failed to get hash for %s: %w", file, err)
		}
		c.dependencyHashes[file] = hash
	}
	return nil
}

func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

func (c *Cache) InvalidateAll() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	return c.save()
}

// Processor serves results from the cache and runs next for files without
// a valid entry, storing what it returns.
func (c *Cache) Processor(next batch.Processor) batch.Processor {
	return func(path string) ([]rules.Result, error) {
		if results, ok := c.Get(path); ok {
			c.logger.Debug("cache hit", zap.String("file", path))
			return results, nil
		}
		results, err := next(path)
		if err != nil {
			return nil, err
		}
		if err := c.Set(path, results); err != nil {
			c.logger.Warn("failed to cache results", zap.String("file", path), zap.Error(err))
		}
		return results, nil
	}
}

func getFileMetadata(filename string) (fileMetadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileMetadata{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to get file info: %w", err)
	}

	return fileMetadata{
		Hash:         fmt.Sprintf("%x", hash.Sum(nil)),
		LastModified: info.ModTime(),
	}, nil
}

func getFileHash(filename string) (string, error) {
	metadata, err := getFileMetadata(filename)
	if err != nil {
		return "", err
	}
	return metadata.Hash, nil
}
