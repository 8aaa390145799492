package batch

import (
	"path/filepath"
	"strings"

	"github.com/gnolang/tagscan/internal/trie"
)

// ignoreSet holds paths excluded from a run. A path is excluded when it or
// one of its parent directories was given.
type ignoreSet struct {
	paths *trie.Trie
}

func newIgnoreSet(paths []string) ignoreSet {
	set := ignoreSet{paths: trie.New()}
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		set.paths.Insert(splitPath(p))
	}
	return set
}

func (s ignoreSet) covers(path string) bool {
	return s.paths.HasPrefix(splitPath(path))
}

func splitPath(path string) []string {
	return strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
}
