package scanner

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions are the markup file types scanned when none are given.
var DefaultExtensions = []string{".html", ".htm", ".xhtml", ".xml"}

type FileInfo struct {
	Path string
	Size int64
}

type Scanner struct {
	rootDir    string
	extensions []string
}

// New returns a scanner for files below rootDir with one of extensions,
// compared case-insensitively. Without extensions DefaultExtensions apply.
func New(rootDir string, extensions ...string) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return &Scanner{
		rootDir:    rootDir,
		extensions: exts,
	}
}

// Scan walks the root directory and returns the matching files sorted by
// path. Hidden directories are not entered.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.Match(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Size: info.Size()})
		return nil
	})

	slices.SortFunc(files, func(a, b FileInfo) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, err
}

// Match reports whether path has one of the scanner's extensions.
func (s *Scanner) Match(path string) bool {
	return slices.Contains(s.extensions, strings.ToLower(filepath.Ext(path)))
}
