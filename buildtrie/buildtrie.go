/*
Package buildtrie implements the concurrent, mutable trie used only during
dictionary construction. Nodes are keyed by a fixed 128-wide child-slot
array of atomic pointers, which lets many goroutines insert words into the
same trie with no lock: a child slot is claimed with a single
compare-and-swap, and the loser of a race discards its allocation and
follows the winner.

A Builder is write-mostly and short-lived: once every word has been
inserted, vectortrie.FromBuilder walks it once (via BFS, using the adapted
queue.Queue as its frontier) and produces the read-only, cache-friendly
representation the search engine actually runs against. The Builder itself
is discarded afterward; nothing in vectortrie keeps a pointer back into it.

Use Cases:
  - The dictionary-load step of a trie-accelerated approximate string search
    engine, where thousands of words must be inserted concurrently.

Time Complexity:
  - Insert: O(len(w)) per word, amortized O(1) per character under low
    contention.

Space Complexity:
  - O(total characters across all distinct prefixes).
*/
package buildtrie

import (
	"sync"
	"sync/atomic"

	"github.com/LDAP/parallel-levenshtein/queue"
	"github.com/LDAP/parallel-levenshtein/stats"
	"github.com/LDAP/parallel-levenshtein/word"
)

// CharSize is the number of child slots every node carries: one per
// possible byte value in (0, 128).
const CharSize = 128

// Node is a single node of the concurrent builder trie.
//
// children holds one atomic pointer per possible byte value; a worker
// claims a slot with CompareAndSwap before descending into it. leaf can
// only ever transition false->true, so it needs no atomic: a plain bool
// write racing with another identical write is harmless.
type Node struct {
	children  [CharSize]atomic.Pointer[Node]
	parent    *Node
	character byte
	leaf      bool
}

// newNode allocates a detached node for the given parent/character edge.
func newNode(parent *Node, character byte) *Node {
	return &Node{parent: parent, character: character}
}

// Builder is the concurrent trie under construction.
type Builder struct {
	root       *Node
	numNodes   atomic.Int64
	collisions atomic.Int64
}

// NewBuilder returns an empty Builder with only its root node allocated.
func NewBuilder() *Builder {
	b := &Builder{root: newNode(nil, 0)}
	b.numNodes.Store(1)
	return b
}

// Root returns the builder's root node.
func (b *Builder) Root() *Node {
	return b.root
}

// NumNodes returns the total number of nodes allocated into the trie so
// far, including the root.
func (b *Builder) NumNodes() int {
	return int(b.numNodes.Load())
}

// Insert walks from the root following w's bytes, allocating and
// CAS-installing any missing child nodes, then idempotently marks the
// terminal node as a leaf.
//
// Complexity: O(len(w))
func (b *Builder) Insert(w word.Word) {
	current := b.root
	for _, c := range w {
		current = b.childFor(current, c)
	}
	current.leaf = true
}

// childFor returns the child of n labeled c, allocating and
// compare-and-swapping a new node into the slot if none exists yet.
func (b *Builder) childFor(n *Node, c byte) *Node {
	slot := &n.children[c]
	if child := slot.Load(); child != nil {
		return child
	}
	candidate := newNode(n, c)
	if slot.CompareAndSwap(nil, candidate) {
		b.numNodes.Add(1)
		return candidate
	}
	b.collisions.Add(1)
	return slot.Load()
}

// Build partitions words across workers goroutines and inserts each
// partition concurrently, then reports the build as a single named
// interval and the collision count as a counter on sink (a no-op sink
// costs nothing beyond the interface call).
//
// Complexity: O(sum(len(w)) / workers) under low contention.
func Build(words []word.Word, workers int, sink stats.Sink) *Builder {
	if workers < 1 {
		workers = 1
	}
	sink.Start("buildtrie.Build")
	defer sink.Stop("buildtrie.Build")

	b := NewBuilder()
	if len(words) == 0 {
		return b
	}
	if workers > len(words) {
		workers = len(words)
	}

	chunk := (len(words) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(words); start += chunk {
		end := start + chunk
		if end > len(words) {
			end = len(words)
		}
		wg.Add(1)
		go func(part []word.Word) {
			defer wg.Done()
			for _, w := range part {
				b.Insert(w)
			}
		}(words[start:end])
	}
	wg.Wait()

	sink.Count("buildtrie.collisions", b.collisions.Load())
	return b
}

// CompactChild is a single entry of a node's compacted child list: the
// edge character and the child node it leads to. Children() returns these
// in ascending character order, which is the visitation order the BFS
// vectorization step (vectortrie.FromBuilder) relies on.
type CompactChild struct {
	Node      *Node
	Character byte
}

// Children returns n's populated child slots in ascending character
// order, discarding empty slots from the fixed 128-wide array.
//
// Complexity: O(CharSize)
func (n *Node) Children() []CompactChild {
	out := make([]CompactChild, 0, 4)
	for c := 0; c < CharSize; c++ {
		if child := n.children[c].Load(); child != nil {
			out = append(out, CompactChild{Character: byte(c), Node: child})
		}
	}
	return out
}

// IsLeaf reports whether n terminates a dictionary word.
func (n *Node) IsLeaf() bool {
	return n.leaf
}

// Character returns the edge label leading into n from its parent. The
// root's character is 0.
func (n *Node) Character() byte {
	return n.character
}

// ParentNode returns n's parent, or nil if n is the root.
func (n *Node) ParentNode() *Node {
	return n.parent
}

// BFSOrder walks the builder trie breadth-first using the adapted
// queue.Queue as its frontier, invoking visit(n) for every node including
// the root, in visitation order. This is the compaction pass described in
// the package doc: the order visit is called in is the index assignment
// order vectortrie.FromBuilder uses.
//
// Complexity: O(N), N = total nodes.
func (b *Builder) BFSOrder(visit func(n *Node)) {
	q := queue.NewQueue[*Node]()
	visit(b.root)
	for _, cc := range b.root.Children() {
		q.Enqueue(cc.Node)
	}
	for !q.IsEmpty() {
		n, err := q.Dequeue()
		if err != nil {
			break
		}
		visit(n)
		for _, cc := range n.Children() {
			q.Enqueue(cc.Node)
		}
	}
}
