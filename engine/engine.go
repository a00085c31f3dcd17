/*
Package engine implements the trie-accelerated approximate string search
described in spec.md §4.4-§4.6: a per-query DP scratch table reused across
queries, a parallel best-first search that prunes subtrees against a
shared monotonically-decreasing bound, and a strictly sequential fallback
used as the reference oracle.

Engine never logs or collects statistics on its own initiative; all
observability flows through the injected stats.Sink, and the zero value
(stats.Noop{}) costs nothing.
*/
package engine

import (
	"sort"

	"github.com/LDAP/parallel-levenshtein/buildtrie"
	"github.com/LDAP/parallel-levenshtein/penalty"
	"github.com/LDAP/parallel-levenshtein/stats"
	"github.com/LDAP/parallel-levenshtein/vectortrie"
	"github.com/LDAP/parallel-levenshtein/word"
)

// Config is the only axis of variation preserved at the engine level
// (spec.md §9 "template specialization collapsed"): whether subtree
// pruning is active. Trie representation and penalty model are fixed to
// vectortrie.Trie and penalty.Model.
type Config struct {
	// EarlyBreak enables min_distance/global_bound pruning. Disabling it
	// is useful only for the "pruning faithfulness" property test
	// (spec.md §8, invariant 7), which checks both modes agree.
	EarlyBreak bool
}

// DefaultConfig returns the config used in production: pruning enabled.
func DefaultConfig() Config {
	return Config{EarlyBreak: true}
}

// Result is a single answer: the weighted edit distance from the query
// to Word.
type Result struct {
	Word     string
	Distance float32
}

// Engine answers top-n approximate string queries against a fixed,
// immutable vectorized trie built once from a dictionary.
type Engine struct {
	trie    *vectortrie.Trie
	penalty *penalty.Model
	sink    stats.Sink
	config  Config
	workers int

	scratch *Scratch
}

// New builds an Engine from words using workers goroutines for both
// trie construction and querying. sink may be stats.Noop{} for zero
// overhead.
//
// Complexity: O(sum(len(w))) for construction.
func New(words []word.Word, model *penalty.Model, sink stats.Sink, workers int, cfg Config) *Engine {
	if sink == nil {
		sink = stats.Noop{}
	}
	if workers < 1 {
		workers = 1
	}

	sink.Start("engine.New")
	defer sink.Stop("engine.New")

	builder := buildtrie.Build(words, workers, sink)
	trie := vectortrie.FromBuilder(builder, workers)

	return &Engine{
		trie:    trie,
		penalty: model,
		sink:    sink,
		config:  cfg,
		workers: workers,
		scratch: NewScratch(trie),
	}
}

// NumNodes returns the number of nodes in the underlying vectorized trie.
func (e *Engine) NumNodes() int {
	return e.trie.NumNodes()
}

// Query returns up to n results sorted ascending by distance. n must be
// non-negative; n == 0 returns an empty, non-nil slice.
//
// Complexity: see spec.md §4.5 for the parallel algorithm's bounds.
func (e *Engine) Query(q string, n int) ([]Result, error) {
	if n < 0 {
		return nil, ErrInvalidCount
	}
	if n == 0 {
		return []Result{}, nil
	}

	e.sink.Start("engine.Query")
	defer e.sink.Stop("engine.Query")

	qw, err := word.New(q)
	if err != nil {
		return nil, err
	}

	e.scratch.Resize(len(qw))
	seedRootRow(e.scratch, e.penalty, qw)

	var candidates []Candidate
	if e.workers <= 1 {
		candidates = runSequential(e.trie, e.scratch, e.penalty, qw, n, e.config)
	} else {
		candidates = runParallel(e.trie, e.scratch, e.penalty, qw, n, e.workers, e.config, e.sink)
	}

	return toResults(e.trie, candidates), nil
}

// QuerySequential is the strictly sequential reference oracle: same DP,
// same vectorized trie, same heap-based pruning, no goroutines or
// atomics. Used by property tests and for workloads too small to amortize
// thread-coordination overhead.
func (e *Engine) QuerySequential(q string, n int) ([]Result, error) {
	if n < 0 {
		return nil, ErrInvalidCount
	}
	if n == 0 {
		return []Result{}, nil
	}
	qw, err := word.New(q)
	if err != nil {
		return nil, err
	}
	e.scratch.Resize(len(qw))
	seedRootRow(e.scratch, e.penalty, qw)
	candidates := runSequential(e.trie, e.scratch, e.penalty, qw, n, e.config)
	return toResults(e.trie, candidates), nil
}

// Candidate is a single heap entry: a leaf's distance and its node index
// in the vectorized trie.
type Candidate struct {
	Distance  float32
	NodeIndex int32
}

// seedRootRow initializes the root's DP row per spec.md §4.5 step 2:
// dp[0] = 0; dp[k] = dp[k-1] + delete(q[k-1]).
func seedRootRow(s *Scratch, m *penalty.Model, q word.Word) {
	row := s.Row(0)
	row[0] = 0
	for k := 1; k <= len(q); k++ {
		row[k] = row[k-1] + m.Delete(q[k-1])
	}
}

// computeChildRow fills child's DP row from parent's row, per the
// recurrence in spec.md §4.4: insertion grows the candidate word by
// character ch (down a column), deletion consumes a query character
// (along a row).
func computeChildRow(parentRow, childRow []float32, ch byte, q word.Word, m *penalty.Model) {
	childRow[0] = parentRow[0] + m.Insert(ch)
	for k := 1; k <= len(q); k++ {
		ins := parentRow[k] + m.Insert(ch)
		del := childRow[k-1] + m.Delete(q[k-1])
		sub := parentRow[k-1] + m.Substitute(ch, q[k-1])
		childRow[k] = min3(ins, del, sub)
	}
}

func min3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func rowMin(row []float32) float32 {
	m := row[0]
	for _, v := range row[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// toResults converts bounded-heap candidates into ascending-distance
// Results, resolving each node index to its word via the parent-chain
// walk (vectortrie.Trie.Word).
func toResults(t *vectortrie.Trie, candidates []Candidate) []Result {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	out := make([]Result, len(candidates))
	for i, c := range candidates {
		out[i] = Result{Word: t.Word(c.NodeIndex).String(), Distance: c.Distance}
	}
	return out
}
