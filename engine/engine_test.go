package engine

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/LDAP/parallel-levenshtein/naive"
	"github.com/LDAP/parallel-levenshtein/penalty"
	"github.com/LDAP/parallel-levenshtein/stats"
	"github.com/LDAP/parallel-levenshtein/word"
)

func uniformModel(t *testing.T) *penalty.Model {
	t.Helper()
	var b strings.Builder
	for i := 0; i < 26; i++ {
		b.WriteString("0.02 ")
	}
	b.WriteString("\n")
	for i := 0; i < 26; i++ {
		for j := 0; j < 26; j++ {
			b.WriteByte(byte('a' + i))
			b.WriteByte(' ')
			b.WriteByte(byte('a' + j))
			b.WriteString(" 1\n")
		}
	}
	m, err := penalty.Load(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func wordsFrom(t *testing.T, ss ...string) []word.Word {
	t.Helper()
	out := make([]word.Word, len(ss))
	for i, s := range ss {
		w, err := word.New(s)
		if err != nil {
			t.Fatalf("word.New(%q): %v", s, err)
		}
		out[i] = w
	}
	return out
}

func randomDictionary(n int, rng *rand.Rand) []string {
	alphabet := "abcdefghijklmnopqrstuvwxyz"
	out := make([]string, n)
	for i := range out {
		length := 3 + rng.Intn(8)
		var b strings.Builder
		for j := 0; j < length; j++ {
			b.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		out[i] = b.String()
	}
	return out
}

// Scenario 1: exact match. spec.md §8 invariant 1.
func TestQueryExactMatchIsZeroDistance(t *testing.T) {
	m := uniformModel(t)
	eng := New(wordsFrom(t, "cat", "dog", "bird", "fish"), m, stats.Noop{}, 4, DefaultConfig())

	results, err := eng.Query("dog", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) == 0 || results[0].Word != "dog" || results[0].Distance != 0 {
		t.Fatalf("expected dog at distance 0 first, got %v", results)
	}
}

// Scenario: single-character words must be reachable (the root-seeding
// leaf-check fix described in DESIGN.md).
func TestQuerySingleCharacterWordIsFindable(t *testing.T) {
	m := uniformModel(t)
	eng := New(wordsFrom(t, "a", "b", "cat"), m, stats.Noop{}, 4, DefaultConfig())

	results, err := eng.Query("a", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, r := range results {
		if r.Word == "a" && r.Distance == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected exact match on single-character word %q, got %v", "a", results)
	}
}

// Scenario 2: cardinality. spec.md §8 invariant 4.
func TestQueryReturnsAtMostN(t *testing.T) {
	m := uniformModel(t)
	eng := New(wordsFrom(t, "a", "b", "c", "d", "e"), m, stats.Noop{}, 2, DefaultConfig())

	results, err := eng.Query("a", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected exactly 2 results, got %d: %v", len(results), results)
	}
}

func TestQueryNGreaterThanDictionary(t *testing.T) {
	m := uniformModel(t)
	eng := New(wordsFrom(t, "a", "b"), m, stats.Noop{}, 2, DefaultConfig())

	results, err := eng.Query("a", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (all of the dictionary), got %d: %v", len(results), results)
	}
}

func TestQueryZeroNReturnsEmpty(t *testing.T) {
	m := uniformModel(t)
	eng := New(wordsFrom(t, "a", "b"), m, stats.Noop{}, 2, DefaultConfig())

	results, err := eng.Query("a", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for n=0, got %v", results)
	}
}

func TestQueryNegativeNErrors(t *testing.T) {
	m := uniformModel(t)
	eng := New(wordsFrom(t, "a"), m, stats.Noop{}, 2, DefaultConfig())

	_, err := eng.Query("a", -1)
	if err != ErrInvalidCount {
		t.Fatalf("expected ErrInvalidCount, got %v", err)
	}
}

func TestQueryInvalidWordErrors(t *testing.T) {
	m := uniformModel(t)
	eng := New(wordsFrom(t, "a"), m, stats.Noop{}, 2, DefaultConfig())

	_, err := eng.Query(string([]byte{0x80}), 1)
	if err == nil {
		t.Fatalf("expected an error for an invalid query word")
	}
}

// Scenario 3: monotone distances. spec.md §8 invariant 3.
func TestQueryResultsAreMonotoneAscending(t *testing.T) {
	m := uniformModel(t)
	rng := rand.New(rand.NewSource(1))
	eng := New(wordsFrom(t, randomDictionary(200, rng)...), m, stats.Noop{}, 4, DefaultConfig())

	results, err := eng.Query("example", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Fatalf("results not ascending at index %d: %v", i, results)
		}
	}
}

// Scenario 4: oracle agreement against the naive full scan. spec.md §8
// invariant 2.
func TestQueryAgreesWithNaiveOracle(t *testing.T) {
	m := uniformModel(t)
	rng := rand.New(rand.NewSource(42))
	dictStrings := randomDictionary(300, rng)
	words := wordsFrom(t, dictStrings...)

	eng := New(words, m, stats.Noop{}, 4, DefaultConfig())
	oracle := naive.New(words, m)

	queries := []string{"example", "hello", "test", dictStrings[0], dictStrings[150]}
	for _, q := range queries {
		got, err := eng.Query(q, 10)
		if err != nil {
			t.Fatalf("engine.Query(%q): %v", q, err)
		}
		want, err := oracle.Query(q, 10, 1)
		if err != nil {
			t.Fatalf("naive.Query(%q): %v", q, err)
		}
		if len(got) != len(want) {
			t.Fatalf("query %q: got %d results, want %d", q, len(got), len(want))
		}
		for i := range want {
			if got[i].Distance != want[i].Distance {
				t.Errorf("query %q result %d: distance %v, want %v (got word %q, want word %q)",
					q, i, got[i].Distance, want[i].Distance, got[i].Word, want[i].Word)
			}
		}
	}
}

// Scenario 5: pruning faithfulness. spec.md §8 invariant 7: disabling
// EarlyBreak must never change the result set, only the work done to
// reach it.
func TestPruningFaithfulness(t *testing.T) {
	m := uniformModel(t)
	rng := rand.New(rand.NewSource(7))
	words := wordsFrom(t, randomDictionary(250, rng)...)

	pruned := DefaultConfig()
	unpruned := Config{EarlyBreak: false}

	engPruned := New(words, m, stats.Noop{}, 4, pruned)
	engUnpruned := New(words, m, stats.Noop{}, 4, unpruned)

	for _, q := range []string{"hello", "worldly", "abcdef"} {
		got, err := engPruned.Query(q, 8)
		if err != nil {
			t.Fatalf("pruned query %q: %v", q, err)
		}
		want, err := engUnpruned.Query(q, 8)
		if err != nil {
			t.Fatalf("unpruned query %q: %v", q, err)
		}
		if len(got) != len(want) {
			t.Fatalf("query %q: pruned returned %d results, unpruned %d", q, len(got), len(want))
		}
		for i := range want {
			if got[i].Distance != want[i].Distance {
				t.Errorf("query %q result %d: pruned distance %v, unpruned %v", q, i, got[i].Distance, want[i].Distance)
			}
		}
	}
}

// Scenario 6: sequential and parallel search agree. spec.md §8 invariant 6.
func TestSequentialAndParallelSearchAgree(t *testing.T) {
	m := uniformModel(t)
	rng := rand.New(rand.NewSource(99))
	words := wordsFrom(t, randomDictionary(400, rng)...)

	engSeq := New(words, m, stats.Noop{}, 1, DefaultConfig())
	engPar := New(words, m, stats.Noop{}, 8, DefaultConfig())

	for _, q := range []string{"parallel", "sequence", "zzzzzzz"} {
		seq, err := engSeq.Query(q, 15)
		if err != nil {
			t.Fatalf("sequential query %q: %v", q, err)
		}
		par, err := engPar.Query(q, 15)
		if err != nil {
			t.Fatalf("parallel query %q: %v", q, err)
		}
		if len(seq) != len(par) {
			t.Fatalf("query %q: sequential returned %d, parallel %d", q, len(seq), len(par))
		}
		for i := range seq {
			if seq[i].Distance != par[i].Distance {
				t.Errorf("query %q result %d: sequential %v, parallel %v", q, i, seq[i].Distance, par[i].Distance)
			}
		}
	}
}

// Trie soundness: every word the engine returns must actually have been
// inserted into the dictionary.
func TestResultsAreSoundDictionaryMembers(t *testing.T) {
	m := uniformModel(t)
	dictStrings := []string{"cat", "car", "cart", "dog", "dot", "do"}
	eng := New(wordsFrom(t, dictStrings...), m, stats.Noop{}, 4, DefaultConfig())

	member := make(map[string]bool, len(dictStrings))
	for _, w := range dictStrings {
		member[w] = true
	}

	results, err := eng.Query("cat", len(dictStrings))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if !member[r.Word] {
			t.Errorf("result %q is not a member of the dictionary", r.Word)
		}
	}
}

// Trie completeness: repeated words are deduplicated by the trie via the
// shared leaf node, so asking for more results than distinct words never
// hangs or duplicates entries.
func TestQueryHandlesRepeatedWordsGracefully(t *testing.T) {
	m := uniformModel(t)
	eng := New(wordsFrom(t, "cat", "cat", "cat", "dog"), m, stats.Noop{}, 4, DefaultConfig())

	results, err := eng.Query("cat", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 distinct results despite duplicate insertion, got %d: %v", len(results), results)
	}
}

func TestQueryEmptyDictionary(t *testing.T) {
	m := uniformModel(t)
	eng := New(nil, m, stats.Noop{}, 4, DefaultConfig())

	results, err := eng.Query("anything", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results against an empty dictionary, got %v", results)
	}
}

func TestQueryEmptyQueryString(t *testing.T) {
	m := uniformModel(t)
	eng := New(wordsFrom(t, "", "a", "ab"), m, stats.Noop{}, 4, DefaultConfig())

	results, err := eng.Query("", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) == 0 || results[0].Word != "" || results[0].Distance != 0 {
		t.Fatalf("expected exact match on empty string first, got %v", results)
	}
}

// Regression test: the root node itself can be a leaf (the empty word is
// in the dictionary), and must be reachable even on a query that isn't
// itself empty, through both the sequential and parallel search paths.
func TestQueryEmptyWordReachableFromNonEmptyQuery(t *testing.T) {
	m := uniformModel(t)
	dict := wordsFrom(t, "", "cat", "dog")

	for _, workers := range []int{1, 4} {
		eng := New(dict, m, stats.Noop{}, workers, DefaultConfig())
		results, err := eng.Query("cat", len(dict))
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}
		found := false
		for _, r := range results {
			if r.Word == "" {
				found = true
			}
		}
		if !found {
			t.Fatalf("workers=%d: expected the empty dictionary word to be reachable, got %v", workers, results)
		}
	}
}

// QuerySequential is the dedicated oracle entry point; it must agree with
// the default Query path when the engine itself runs single-threaded.
func TestQuerySequentialMatchesQueryAtOneWorker(t *testing.T) {
	m := uniformModel(t)
	rng := rand.New(rand.NewSource(5))
	words := wordsFrom(t, randomDictionary(120, rng)...)
	eng := New(words, m, stats.Noop{}, 1, DefaultConfig())

	a, err := eng.Query("oracle", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := eng.QuerySequential("oracle", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("got %d vs %d results", len(a), len(b))
	}
	for i := range a {
		if a[i].Distance != b[i].Distance {
			t.Errorf("result %d: Query distance %v, QuerySequential distance %v", i, a[i].Distance, b[i].Distance)
		}
	}
}

// Stress scenario: a large randomly generated dictionary, skipped under
// -short. Verifies the engine still answers within the expected result
// cardinality and that the trie was built successfully at scale.
func TestQueryStressLargeDictionary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in -short mode")
	}
	m := uniformModel(t)
	rng := rand.New(rand.NewSource(2026))
	words := wordsFrom(t, randomDictionary(200_000, rng)...)

	eng := New(words, m, stats.Noop{}, 8, DefaultConfig())
	results, err := eng.Query("benchmarking", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 25 {
		t.Fatalf("expected 25 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Fatalf("results not ascending at index %d: %v", i, results)
		}
	}
}
