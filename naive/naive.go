/*
Package naive implements the full-dictionary-scan reference oracle: for
every word, compute its weighted edit distance to the query directly with
no trie acceleration, and keep the n smallest. It exists only as a
correctness baseline for the trie-accelerated engine package's property
tests.

Grounded on original_source/implementation/naive_levenshtein.hpp for the
algorithm shape and on
other_examples/559803e3_solrac97gr-DuplicateCheck__levenshtein.go.go for
the Go worker-pool idiom: a channel of work items, a fixed goroutine pool
draining it, and a sync.Pool-backed pair of DP-row buffers so no
comparison allocates a fresh row.
*/
package naive

import (
	"runtime"
	"sync"

	"github.com/LDAP/parallel-levenshtein/penalty"
	"github.com/LDAP/parallel-levenshtein/priorityqueue"
	"github.com/LDAP/parallel-levenshtein/set"
	"github.com/LDAP/parallel-levenshtein/word"
)

// Engine is the naive full-scan oracle over a fixed word list.
type Engine struct {
	words   []word.Word
	penalty *penalty.Model
}

// New returns an Engine over words using model for cost computation.
// words is deduplicated first using an UnorderedSet, matching the trie's
// structural dedup via its shared leaf node: the engine this package
// oracles for can only ever represent a word once, so the oracle must
// model the same logical dictionary rather than the raw input list.
func New(words []word.Word, model *penalty.Model) *Engine {
	seen := set.NewUnorderedSet()
	deduped := make([]word.Word, 0, len(words))
	for _, w := range words {
		key := w.String()
		if seen.Contain(key) {
			continue
		}
		seen.Insert(key)
		deduped = append(deduped, w)
	}
	return &Engine{words: deduped, penalty: model}
}

// Result mirrors engine.Result without importing the engine package,
// keeping naive a leaf dependency usable from engine's own tests.
type Result struct {
	Word     string
	Distance float32
}

// rowPool hands out two-row float32 buffers sized for the common case;
// callers grow them if the query is longer, same trade-off as
// DuplicateCheck's intSlicePool.
var rowPool = sync.Pool{
	New: func() any {
		rows := make([]float32, 2*256)
		return &rows
	},
}

// workItem is a single dictionary word assigned to a worker.
type workItem struct {
	w   word.Word
	idx int
}

// Query computes the weighted edit distance from q to every word in the
// dictionary using a fixed pool of goroutines, and returns the n closest
// in ascending order. workers < 1 picks a worker count from the dictionary
// size and CPU count; when the resulting count is 1, or the dictionary holds
// fewer than 64 words, the query runs sequentially with no channels or
// goroutines at all.
func (e *Engine) Query(q string, n int, workers int) ([]Result, error) {
	qw, err := word.New(q)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []Result{}, nil
	}
	if workers < 1 {
		workers = optimalWorkerCount(len(e.words))
	}
	if workers <= 1 || len(e.words) < 64 {
		return e.querySequential(qw, n), nil
	}
	return e.queryParallel(qw, n, workers), nil
}

func optimalWorkerCount(numWords int) int {
	cpus := runtime.NumCPU()
	if numWords < 200 {
		if 2 < cpus {
			return 2
		}
		return cpus
	}
	if numWords < 1000 {
		return cpus
	}
	workerCount := cpus * 2
	if workerCount > 16 {
		return 16
	}
	return workerCount
}

func (e *Engine) querySequential(qw word.Word, n int) []Result {
	top := newTop()
	rows := borrowRows(len(qw) + 1)
	defer returnRows(rows)

	for i, w := range e.words {
		d := editDistance(e.penalty, w, qw, rows.prev, rows.next)
		pushResult(top, d, i, n)
	}
	return e.drain(top)
}

// editDistance computes the standard word-against-query weighted edit
// distance via a two-row DP (current/previous), per
// original_source/implementation/naive_levenshtein.hpp's edit_distance:
// insertion consumes a word character and deletion consumes a query
// character, the same recurrence engine/engine.go's computeChildRow applies
// one trie edge at a time. prev and next must each have length
// len(q)+1 or more; only the first len(q)+1 entries are used.
func editDistance(m *penalty.Model, w, q word.Word, prev, next []float32) float32 {
	width := len(q) + 1
	prev = prev[:width]
	next = next[:width]

	prev[0] = 0
	for j := 1; j < width; j++ {
		prev[j] = prev[j-1] + m.Delete(q[j-1])
	}

	for i := 1; i <= len(w); i++ {
		next[0] = prev[0] + m.Insert(w[i-1])
		for j := 1; j < width; j++ {
			ins := prev[j] + m.Insert(w[i-1])
			del := next[j-1] + m.Delete(q[j-1])
			sub := prev[j-1] + m.Substitute(w[i-1], q[j-1])
			next[j] = minFloat32(ins, del, sub)
		}
		prev, next = next, prev
	}
	return prev[width-1]
}

func minFloat32(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func (e *Engine) queryParallel(qw word.Word, n int, workers int) []Result {
	work := make(chan workItem, workers*2)
	var mu sync.Mutex
	merged := newTop()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows := borrowRows(len(qw) + 1)
			defer returnRows(rows)
			local := newTop()
			for item := range work {
				d := editDistance(e.penalty, item.w, qw, rows.prev, rows.next)
				pushResult(local, d, item.idx, n)
			}
			mu.Lock()
			for _, c := range local.Sort() {
				pushResult(merged, c.Distance, int(c.NodeIndex), n)
			}
			mu.Unlock()
		}()
	}

	for i, w := range e.words {
		work <- workItem{w: w, idx: i}
	}
	close(work)
	wg.Wait()

	return e.drain(merged)
}

// candidate mirrors engine.Candidate locally to avoid an import cycle
// (engine imports naive's results only via tests, never the reverse).
type candidate = struct {
	Distance  float32
	NodeIndex int32
}

func newTop() *priorityqueue.BinaryHeap[candidate] {
	return priorityqueue.NewBinaryHeapWithComparator(func(a, b candidate) bool {
		return a.Distance > b.Distance
	})
}

func pushResult(top *priorityqueue.BinaryHeap[candidate], d float32, idx int, n int) {
	c := candidate{Distance: d, NodeIndex: int32(idx)}
	if top.Size() < n {
		top.Add(c)
		return
	}
	worst, err := top.Peek()
	if err != nil {
		top.Add(c)
		return
	}
	if d < worst.Distance {
		_, _ = top.Poll()
		top.Add(c)
	}
}

func (e *Engine) drain(top *priorityqueue.BinaryHeap[candidate]) []Result {
	cands := top.Sort()
	out := make([]Result, len(cands))
	// Sort is descending by distance (max-heap order); reverse into
	// ascending order for the caller.
	for i, c := range cands {
		out[len(cands)-1-i] = Result{Word: e.words[c.NodeIndex].String(), Distance: c.Distance}
	}
	return out
}

// rowBuf is a pooled pair of DP rows sharing one backing array, returned
// as a unit so a single sync.Pool entry serves both.
type rowBuf struct {
	backing    []float32
	prev, next []float32
}

func borrowRows(width int) *rowBuf {
	p := rowPool.Get().(*[]float32)
	buf := *p
	if cap(buf) < 2*width {
		buf = make([]float32, 2*width)
	} else {
		buf = buf[:2*width]
	}
	return &rowBuf{backing: buf, prev: buf[:width:width], next: buf[width : 2*width : 2*width]}
}

func returnRows(r *rowBuf) {
	rowPool.Put(&r.backing)
}
