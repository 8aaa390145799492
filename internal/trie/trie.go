package trie

import (
	"sort"
	"strings"
)

// NodeIndex represents the index of a trie node.
type NodeIndex int

// Arena stores all trie nodes in one slice; children are referenced by
// index rather than by pointer.
type Arena struct {
	nodes []arenaNode
}

// arenaNode is the internal representation of a trie node stored in the arena.
type arenaNode struct {
	// children maps a path segment to the index of the child node.
	children map[string]NodeIndex
	// isEnd indicates whether an inserted sequence ends at this node.
	isEnd bool
}

// NewArena creates a new arena holding only the root node.
func NewArena() *Arena {
	arena := &Arena{
		nodes: make([]arenaNode, 0, 64),
	}
	arena.newNode()
	return arena
}

// newNode adds a new node to the arena and returns its index.
func (a *Arena) newNode() NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, arenaNode{
		children: make(map[string]NodeIndex),
	})
	return idx
}

// Insert inserts a sequence of path segments into the trie.
func (a *Arena) Insert(sequence []string) {
	current := NodeIndex(0)
	for _, part := range sequence {
		childIdx, exists := a.nodes[current].children[part]
		if !exists {
			childIdx = a.newNode()
			a.nodes[current].children[part] = childIdx
		}
		current = childIdx
	}
	a.nodes[current].isEnd = true
}

// HasPrefix reports whether an inserted sequence is a prefix of sequence,
// including sequence itself.
func (a *Arena) HasPrefix(sequence []string) bool {
	current := NodeIndex(0)
	if a.nodes[current].isEnd {
		return true
	}
	for _, part := range sequence {
		childIdx, exists := a.nodes[current].children[part]
		if !exists {
			return false
		}
		if a.nodes[childIdx].isEnd {
			return true
		}
		current = childIdx
	}
	return false
}

// Equal checks whether two tries are identical in structure and content.
func (a *Arena) Equal(b *Arena) bool {
	if len(a.nodes) != len(b.nodes) {
		return false
	}
	return a.equalNodes(NodeIndex(0), b, NodeIndex(0))
}

func (a *Arena) equalNodes(aIdx NodeIndex, b *Arena, bIdx NodeIndex) bool {
	nodeA := a.nodes[aIdx]
	nodeB := b.nodes[bIdx]

	if nodeA.isEnd != nodeB.isEnd || len(nodeA.children) != len(nodeB.children) {
		return false
	}
	for key, childA := range nodeA.children {
		childB, exists := nodeB.children[key]
		if !exists || !a.equalNodes(childA, b, childB) {
			return false
		}
	}
	return true
}

// String renders the trie with sorted keys, marking sequence ends with "*".
func (a *Arena) String() string {
	var sb strings.Builder
	a.writeNode(&sb, NodeIndex(0))
	return sb.String()
}

func (a *Arena) writeNode(sb *strings.Builder, idx NodeIndex) {
	node := a.nodes[idx]
	if node.isEnd {
		sb.WriteString("*")
	}

	keys := make([]string, 0, len(node.children))
	for key := range node.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sb.WriteString(key)
		sb.WriteString("(")
		a.writeNode(sb, node.children[key])
		sb.WriteString(")")
	}
}

// Trie is a set of segment sequences, such as file paths split at the
// separator.
type Trie struct {
	arena *Arena
}

// New returns an initialized Trie.
func New() *Trie {
	return &Trie{
		arena: NewArena(),
	}
}

func (t *Trie) Insert(sequence []string) {
	t.arena.Insert(sequence)
}

func (t *Trie) HasPrefix(sequence []string) bool {
	return t.arena.HasPrefix(sequence)
}

func (t *Trie) Equal(other *Trie) bool {
	return t.arena.Equal(other.arena)
}

func (t *Trie) String() string {
	return t.arena.String()
}
