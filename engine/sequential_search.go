package engine

import (
	"math"

	"github.com/LDAP/parallel-levenshtein/penalty"
	"github.com/LDAP/parallel-levenshtein/priorityqueue"
	"github.com/LDAP/parallel-levenshtein/vectortrie"
	"github.com/LDAP/parallel-levenshtein/word"
)

// newBoundedHeap returns a max-heap over Candidate.Distance: the root is
// always the current n-th best (i.e. worst kept) distance, which is
// exactly what a bounded top-n heap needs to cheaply test "is this new
// candidate better than my current worst kept one".
func newBoundedHeap() *priorityqueue.BinaryHeap[Candidate] {
	return priorityqueue.NewBinaryHeapWithComparator(func(a, b Candidate) bool {
		return a.Distance > b.Distance
	})
}

// pushBounded offers cand to heap, bounded to capacity n: once full, it
// only replaces the current worst kept candidate if cand is strictly
// better.
func pushBounded(heap *priorityqueue.BinaryHeap[Candidate], cand Candidate, n int) {
	if heap.Size() < n {
		heap.Add(cand)
		return
	}
	worst, err := heap.Peek()
	if err != nil {
		heap.Add(cand)
		return
	}
	if cand.Distance < worst.Distance {
		_, _ = heap.Poll()
		heap.Add(cand)
	}
}

// heapMax returns the current worst-kept distance, or +Inf if the heap
// is not yet at capacity n.
func heapMax(heap *priorityqueue.BinaryHeap[Candidate], n int) float32 {
	if heap.Size() < n {
		return float32PosInf
	}
	worst, err := heap.Peek()
	if err != nil {
		return float32PosInf
	}
	return worst.Distance
}

var float32PosInf = float32(math.Inf(1))

// runSequential implements spec.md §4.6: same DP and heap-based pruning
// as the parallel search, but single-threaded with a plain FIFO slice
// queue instead of a shared mutex-guarded one. This is the reference
// oracle used by property tests.
func runSequential(t *vectortrie.Trie, s *Scratch, m *penalty.Model, q word.Word, n int, cfg Config) []Candidate {
	top := newBoundedHeap()

	if t.Nodes[0].Leaf {
		root := s.Row(0)
		pushBounded(top, Candidate{Distance: root[len(root)-1], NodeIndex: 0}, n)
	}

	queue := make([]int32, 0, 64)
	begin, end := t.Children(0)
	parentRow := s.Row(0)
	for c := begin; c < end; c++ {
		childRow := s.Row(c)
		computeChildRow(parentRow, childRow, t.Nodes[c].Character, q, m)
		if t.Nodes[c].Leaf {
			pushBounded(top, Candidate{Distance: childRow[len(childRow)-1], NodeIndex: c}, n)
		}
		queue = append(queue, c)
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		row := s.Row(v)

		bound := heapMax(top, n)
		armed := cfg.EarlyBreak && top.Size() == n

		cbegin, cend := t.Children(v)
		for c := cbegin; c < cend; c++ {
			childRow := s.Row(c)
			computeChildRow(row, childRow, t.Nodes[c].Character, q, m)

			if t.Nodes[c].Leaf {
				pushBounded(top, Candidate{Distance: childRow[len(childRow)-1], NodeIndex: c}, n)
			}

			if !armed {
				queue = append(queue, c)
				continue
			}
			childMin := rowMin(childRow)
			if childMin > bound {
				continue
			}
			queue = append(queue, c)
		}
	}

	return top.Sort()
}
