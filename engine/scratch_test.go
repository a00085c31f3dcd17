package engine

import (
	"testing"

	"github.com/LDAP/parallel-levenshtein/buildtrie"
	"github.com/LDAP/parallel-levenshtein/stats"
	"github.com/LDAP/parallel-levenshtein/vectortrie"
	"github.com/LDAP/parallel-levenshtein/word"
)

func buildTestTrie(t *testing.T, words ...string) *vectortrie.Trie {
	t.Helper()
	var ws []word.Word
	for _, s := range words {
		w, err := word.New(s)
		if err != nil {
			t.Fatalf("word.New(%q): %v", s, err)
		}
		ws = append(ws, w)
	}
	b := buildtrie.Build(ws, 4, stats.Noop{})
	return vectortrie.FromBuilder(b, 4)
}

func TestScratchRootSubtreeSizeEqualsNumNodes(t *testing.T) {
	trie := buildTestTrie(t, "cat", "car", "cart", "dog")
	s := NewScratch(trie)
	s.Resize(3)

	var total int32
	for i := 0; i < trie.NumNodes(); i++ {
		total += s.SubtreeSize(int32(i))
	}
	// Every node's subtree size is counted once per ancestor, so summing
	// all of them double counts; instead check the root alone covers every
	// node, which is the invariant the pruning bookkeeping actually needs.
	if s.SubtreeSize(0) != int32(trie.NumNodes()) {
		t.Errorf("root SubtreeSize = %d, want %d (NumNodes)", s.SubtreeSize(0), trie.NumNodes())
	}
}

func TestScratchLeafSubtreeSizeIsOne(t *testing.T) {
	trie := buildTestTrie(t, "a", "b")
	s := NewScratch(trie)
	s.Resize(2)

	for i := 0; i < trie.NumNodes(); i++ {
		begin, end := trie.Children(int32(i))
		if begin == end && s.SubtreeSize(int32(i)) != 1 {
			t.Errorf("leaf node %d has SubtreeSize %d, want 1", i, s.SubtreeSize(int32(i)))
		}
	}
}

func TestScratchResizeGrowsOnly(t *testing.T) {
	trie := buildTestTrie(t, "alpha", "beta")
	s := NewScratch(trie)
	s.Resize(2)
	row := s.Row(0)
	if len(row) != 3 {
		t.Fatalf("Row(0) length = %d, want 3", len(row))
	}

	s.Resize(5)
	row = s.Row(0)
	if len(row) != 6 {
		t.Fatalf("Row(0) length after growth = %d, want 6", len(row))
	}

	s.Resize(1)
	row = s.Row(0)
	if len(row) != 2 {
		t.Fatalf("Row(0) length after shrink request = %d, want 2", len(row))
	}
}

func TestScratchRowsAreDisjoint(t *testing.T) {
	trie := buildTestTrie(t, "ab", "ac")
	s := NewScratch(trie)
	s.Resize(2)

	row0 := s.Row(0)
	row1 := s.Row(1)
	row0[0] = 99
	if row1[0] == 99 {
		t.Errorf("Row(0) and Row(1) alias the same memory")
	}
}
