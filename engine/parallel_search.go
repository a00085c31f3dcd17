package engine

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/LDAP/parallel-levenshtein/penalty"
	"github.com/LDAP/parallel-levenshtein/priorityqueue"
	"github.com/LDAP/parallel-levenshtein/queue"
	"github.com/LDAP/parallel-levenshtein/stats"
	"github.com/LDAP/parallel-levenshtein/vectortrie"
	"github.com/LDAP/parallel-levenshtein/word"
)

// loadShedThreshold is the local-queue depth that triggers donating half
// of it to the shared global queue, taken directly from
// original_source/implementation/trie.hpp's bfs_trie (`size > 1000`).
const loadShedThreshold = 1000

// workAcquireBatch is how many nodes a worker pulls from the global queue
// per lock acquisition when its local queue runs dry. This is an
// adaptation on top of the original's single-node acquire, made possible
// by queue.Queue.DequeueMany's single-lock batch semantics.
const workAcquireBatch = 8

// paddedFlag is an atomic.Bool padded to a full cache line so that
// neighboring workers' needs_work flags never false-share, per spec.md §9.
type paddedFlag struct {
	flag atomic.Bool
	_     [64 - 1]byte
}

// globalBound is the shared, monotonically-decreasing pruning bound. It
// is stored as the bit pattern of a float32 in an atomic.Uint32 because
// sync/atomic has no atomic float type; since every distance is finite
// and non-negative, comparing raw uint32 bit patterns agrees with
// comparing the floats, so a plain CAS loop implements the "relaxed
// read-compare-write" update spec.md §5 describes.
type globalBound struct {
	bits atomic.Uint32
}

func newGlobalBound() *globalBound {
	g := &globalBound{}
	g.bits.Store(math.Float32bits(float32PosInf))
	return g
}

func (g *globalBound) Load() float32 {
	return math.Float32frombits(g.bits.Load())
}

// LowerTo stores v if it is smaller than the current bound, retrying
// under races; a losing racer's "worse" write is simply ignored on the
// next read, matching spec.md §5's correctness argument.
func (g *globalBound) LowerTo(v float32) {
	for {
		cur := g.bits.Load()
		if v >= math.Float32frombits(cur) {
			return
		}
		if g.bits.CompareAndSwap(cur, math.Float32bits(v)) {
			return
		}
	}
}

// runParallel implements spec.md §4.5: a work-stealing pool of workers
// draining a shared FIFO of trie nodes, each maintaining a local bounded
// top-n heap, pruning subtrees whose row-minimum exceeds the shared
// global_bound.
func runParallel(t *vectortrie.Trie, s *Scratch, m *penalty.Model, q word.Word, n int, workers int, cfg Config, sink stats.Sink) []Candidate {
	sink.Start("engine.runParallel")
	defer sink.Stop("engine.runParallel")

	global := queue.NewQueue[int32]()
	seedTop := newBoundedHeap()
	root := s.Row(0)
	if t.Nodes[0].Leaf {
		pushBounded(seedTop, Candidate{Distance: root[len(root)-1], NodeIndex: 0}, n)
	}

	begin, end := t.Children(0)
	for c := begin; c < end; c++ {
		childRow := s.Row(c)
		computeChildRow(root, childRow, t.Nodes[c].Character, q, m)
		if t.Nodes[c].Leaf {
			pushBounded(seedTop, Candidate{Distance: childRow[len(childRow)-1], NodeIndex: c}, n)
		}
		global.Enqueue(c)
	}

	bound := newGlobalBound()
	var nodesRemaining atomic.Int64
	nodesRemaining.Store(int64(t.NumNodes() - 1))

	signals := make([]paddedFlag, workers)
	localTops := make([]*priorityqueue.BinaryHeap[Candidate], workers+1)
	localTops[workers] = seedTop

	var wg sync.WaitGroup
	for wID := 0; wID < workers; wID++ {
		localTops[wID] = newBoundedHeap()
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(id, workers, t, s, m, q, n, cfg, global, bound, &nodesRemaining, signals, localTops[id])
		}(wID)
	}
	wg.Wait()

	return mergeTops(localTops, n)
}

// runWorker executes the per-worker loop described in spec.md §4.5.
func runWorker(
	id, workers int,
	t *vectortrie.Trie, s *Scratch, m *penalty.Model, q word.Word, n int, cfg Config,
	global *queue.Queue[int32], bound *globalBound, nodesRemaining *atomic.Int64,
	signals []paddedFlag, localTop *priorityqueue.BinaryHeap[Candidate],
) {
	local := make([]int32, 0, 256)
	var doneCount int64

	for {
		if len(local) == 0 {
			// Acquire a small batch under one lock acquisition rather
			// than one node at a time, using the adapted
			// queue.Queue.DequeueMany.
			got := global.DequeueMany(workAcquireBatch)
			if len(got) == 0 {
				// global queue empty: reconcile bookkeeping and decide
				// whether to stop.
				if doneCount > 0 {
					remaining := nodesRemaining.Add(-doneCount)
					doneCount = 0
					if remaining <= 0 {
						return
					}
				} else if nodesRemaining.Load() <= 0 {
					return
				}
				signals[(id+1)%workers].flag.Store(true)
				continue
			}
			local = append(local, got...)
		}

		for len(local) > 0 {
			v := local[0]
			local = local[1:]

			row := s.Row(v)
			doneCount++ // v itself is now fully processed.

			armed := cfg.EarlyBreak && localTop.Size() == n
			var b float32
			if armed {
				worst := heapMax(localTop, n)
				b = bound.Load()
				if worst < b {
					bound.LowerTo(worst)
					b = worst
				}
			}

			cbegin, cend := t.Children(v)
			for c := cbegin; c < cend; c++ {
				childRow := s.Row(c)
				computeChildRow(row, childRow, t.Nodes[c].Character, q, m)
				childDistance := childRow[len(childRow)-1]

				if t.Nodes[c].Leaf {
					pushBounded(localTop, Candidate{Distance: childDistance, NodeIndex: c}, n)
				}

				if !armed {
					local = append(local, c)
					continue
				}

				childMin := rowMin(childRow)
				if childMin > b {
					doneCount += int64(s.SubtreeSize(c))
					continue
				}
				cbeginGrand, cendGrand := t.Children(c)
				if cbeginGrand < cendGrand {
					local = append(local, c)
				} else {
					doneCount++
				}
			}

			if len(local) > loadShedThreshold && signals[id].flag.Load() {
				mid := len(local) / 2
				global.EnqueueBatch(local[:mid])
				local = local[mid:]
				signals[id].flag.Store(false)
			}
		}
	}
}

// mergeTops merges every worker's local top-n heap into one bounded
// top-n result set under no additional synchronization (workers have
// already joined by the time this runs).
func mergeTops(tops []*priorityqueue.BinaryHeap[Candidate], n int) []Candidate {
	merged := newBoundedHeap()
	for _, top := range tops {
		for _, c := range top.Sort() {
			pushBounded(merged, c, n)
		}
	}
	return merged.Sort()
}
