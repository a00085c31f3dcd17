/*
Package vectortrie implements the read-only, cache-friendly rendering of a
buildtrie.Builder: a single flat array of nodes in breadth-first order, so
that every node's children occupy one contiguous index range. This is the
representation the search engine actually walks; the mutable builder trie
is discarded once FromBuilder returns.

Use Cases:
  - The shared, immutable trie every concurrent query reads without any
    synchronization, since nodes is never mutated after construction.
*/
package vectortrie

import (
	"sync"

	"github.com/LDAP/parallel-levenshtein/buildtrie"
	"github.com/LDAP/parallel-levenshtein/queue"
	"github.com/LDAP/parallel-levenshtein/word"
)

// Node is one entry of the flat, BFS-ordered node array.
//
// ChildrenBegin and ChildrenEnd delimit a contiguous range [begin, end) of
// indices into the same array: Trie.Nodes[ChildrenBegin:ChildrenEnd] are
// exactly this node's children, in ascending edge-character order.
type Node struct {
	Parent        int32
	ChildrenBegin int32
	ChildrenEnd   int32
	Character     byte
	Leaf          bool
}

// Trie is the immutable vectorized trie. The zero value is not usable;
// construct one with FromBuilder.
type Trie struct {
	Nodes []Node
}

// FromBuilder renders b into a flat BFS-ordered array. Index assignment
// is sequential (a single BFS pass using the adapted queue.Queue as its
// frontier, per buildtrie.Builder.BFSOrder), but once every node's final
// index and child range is known, the per-node Character/Leaf/Parent
// fields are populated in parallel across workers goroutines over
// disjoint index ranges, matching "index assignment sequential, field
// population independent".
//
// Complexity: O(N) for index assignment, O(N/workers) for field
// population, N = number of nodes.
func FromBuilder(b *buildtrie.Builder, workers int) *Trie {
	if workers < 1 {
		workers = 1
	}

	numNodes := b.NumNodes()
	nodes := make([]Node, numNodes)
	orderedBuilderNodes := make([]*buildtrie.Node, numNodes)

	// Sequential BFS: assign final indices in visitation order and record
	// each node's contiguous child range.
	idx := int32(0)
	assign := func(n *buildtrie.Node) int32 {
		i := idx
		orderedBuilderNodes[i] = n
		idx++
		return i
	}

	nodeIndex := make(map[*buildtrie.Node]int32, numNodes)
	q := queue.NewQueue[*buildtrie.Node]()

	rootIdx := assign(b.Root())
	nodeIndex[b.Root()] = rootIdx

	children := b.Root().Children()
	begin := idx
	for _, cc := range children {
		ci := assign(cc.Node)
		nodeIndex[cc.Node] = ci
		q.Enqueue(cc.Node)
	}
	nodes[rootIdx].ChildrenBegin = begin
	nodes[rootIdx].ChildrenEnd = idx

	for !q.IsEmpty() {
		n, err := q.Dequeue()
		if err != nil {
			break
		}
		ni := nodeIndex[n]
		childBegin := idx
		for _, cc := range n.Children() {
			ci := assign(cc.Node)
			nodeIndex[cc.Node] = ci
			q.Enqueue(cc.Node)
		}
		nodes[ni].ChildrenBegin = childBegin
		nodes[ni].ChildrenEnd = idx
	}

	// Parallel field population: every node's Character/Leaf/Parent is
	// independent of every other node's, so the ordered slice can be
	// split into contiguous chunks across workers.
	if workers > numNodes {
		workers = numNodes
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (numNodes + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < numNodes; start += chunk {
		end := start + chunk
		if end > numNodes {
			end = numNodes
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				bn := orderedBuilderNodes[i]
				nodes[i].Character = bn.Character()
				nodes[i].Leaf = bn.IsLeaf()
				if i == 0 {
					nodes[i].Parent = 0
				} else {
					nodes[i].Parent = nodeIndex[parentOf(bn)]
				}
			}
		}(start, end)
	}
	wg.Wait()

	return &Trie{Nodes: nodes}
}

// parentOf returns the builder node's parent, as reported by
// buildtrie.Node.ParentNode, for vectorization.
func parentOf(n *buildtrie.Node) *buildtrie.Node {
	return n.ParentNode()
}

// NumNodes returns the total number of nodes, including the root.
func (t *Trie) NumNodes() int {
	return len(t.Nodes)
}

// Word reconstructs the dictionary word spelled by the root-to-i path by
// chasing Parent and prepending characters until index 0 is reached.
//
// Complexity: O(depth)
func (t *Trie) Word(i int32) word.Word {
	var buf []byte
	for i != 0 {
		n := t.Nodes[i]
		buf = append(buf, n.Character)
		i = n.Parent
	}
	for l, r := 0, len(buf)-1; l < r; l, r = l+1, r-1 {
		buf[l], buf[r] = buf[r], buf[l]
	}
	return word.Word(buf)
}

// Children returns the [begin, end) child index range of node i.
func (t *Trie) Children(i int32) (begin, end int32) {
	n := t.Nodes[i]
	return n.ChildrenBegin, n.ChildrenEnd
}
