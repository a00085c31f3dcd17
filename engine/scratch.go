package engine

import (
	"github.com/LDAP/parallel-levenshtein/vectortrie"
)

// Payload is the per-node, per-query pruning state described in
// spec.md §4.4: a lower bound on any descendant's distance, the node's
// own distance (meaningful only when the node is a leaf), and the
// precomputed size of its subtree.
type Payload struct {
	MinDistance float32
	Distance    float32
	SubtreeSize int32
}

// Scratch is the per-query dynamic-programming table and payload array,
// sized to the trie once and reused across queries by growing (never
// shrinking) when a longer query arrives.
type Scratch struct {
	trie        *vectortrie.Trie
	dp          []float32
	payload     []Payload
	rowStride   int
	queryLen    int
	subtreeDone bool
}

// NewScratch allocates a Scratch bound to trie. It holds no query-sized
// state until the first Resize call.
func NewScratch(trie *vectortrie.Trie) *Scratch {
	return &Scratch{trie: trie}
}

// Resize grows the DP table and payload array to fit a query of length
// queryLen, reusing the existing backing array when it is already large
// enough. It also triggers the one-time SubtreeSize precomputation the
// first time it is called.
//
// Complexity: O(NumNodes * queryLen) only when growing; O(1) amortized
// across repeated queries of non-increasing length.
func (s *Scratch) Resize(queryLen int) {
	n := s.trie.NumNodes()
	stride := queryLen + 1
	needed := n * stride
	if cap(s.dp) < needed {
		s.dp = make([]float32, needed)
	} else {
		s.dp = s.dp[:needed]
	}
	if len(s.payload) < n {
		s.payload = make([]Payload, n)
	}
	s.rowStride = stride
	s.queryLen = queryLen

	if !s.subtreeDone {
		s.computeSubtreeSizes()
		s.subtreeDone = true
	}
}

// computeSubtreeSizes performs the one-time reverse linear sweep over the
// BFS-ordered node array described in spec.md §9 "recursion replaced by
// queues": because children always have a larger index than their
// parent, iterating indices from N-1 down to 0 and accumulating into the
// parent's counter computes every subtree size in one linear pass, with
// no explicit queue or recursion needed at all.
func (s *Scratch) computeSubtreeSizes() {
	nodes := s.trie.Nodes
	for i := range s.payload {
		s.payload[i].SubtreeSize = 1
	}
	for i := len(nodes) - 1; i > 0; i-- {
		s.payload[nodes[i].Parent].SubtreeSize += s.payload[i].SubtreeSize
	}
}

// Row returns the mutable DP row slice for node i.
func (s *Scratch) Row(i int32) []float32 {
	off := int(i) * s.rowStride
	return s.dp[off : off+s.rowStride]
}

// SubtreeSize returns the precomputed subtree size of node i.
func (s *Scratch) SubtreeSize(i int32) int32 {
	return s.payload[i].SubtreeSize
}
