/*
levsearch is the command-line front end for the trie-accelerated
approximate string search engine: it loads a dictionary and a weights
file, builds the engine once, answers a single query, and exits with
code 0 on success or 1 on a bad argument or file.

Flag handling and logging follow aaw-levtrie/examples/typeahead/typeahead.go's
style: the standard flag package with a custom Usage, and a single
log.New(os.Stdout, ...) logger, never used from inside the core packages.
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/LDAP/parallel-levenshtein/dictionary"
	"github.com/LDAP/parallel-levenshtein/engine"
	"github.com/LDAP/parallel-levenshtein/stats"
)

var usage = `
levsearch answers approximate string-matching queries over a dictionary
using a weighted, parallel, trie-accelerated top-n search.

Example: levsearch -dictionary words.txt -weights weights.txt -query helo -n 5

Parameters:
`

var (
	dictPath    = flag.String("dictionary", "", "Path to a whitespace-separated dictionary file (required).")
	weightsPath = flag.String("weights", "", "Path to the penalty weights file (required).")
	query       = flag.String("query", "", "The query string to search for.")
	n           = flag.Int("n", 10, "The number of results to return.")
	workers     = flag.Int("workers", 0, "Worker goroutines for build and query; 0 picks GOMAXPROCS.")
	bench       = flag.Int("bench", 0, "If > 0, repeat the query this many times and report rolling latency stats instead of results.")
	noPrune     = flag.Bool("no-prune", false, "Disable subtree pruning (for debugging/benchmarking only).")
)

var logger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *dictPath == "" || *weightsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	logger.Printf("loading dictionary %v and weights %v\n", *dictPath, *weightsPath)
	start := time.Now()
	words, model, err := dictionary.LoadMany(*dictPath, *weightsPath)
	if err != nil {
		logger.Printf("load failed: %v\n", err)
		os.Exit(1)
	}
	logger.Printf("loaded %d words in %v\n", len(words), time.Since(start))

	cfg := engine.DefaultConfig()
	cfg.EarlyBreak = !*noPrune

	w := *workers
	if w < 1 {
		w = runtime.GOMAXPROCS(0)
	}

	start = time.Now()
	eng := engine.New(words, model, stats.Noop{}, w, cfg)
	logger.Printf("built engine (%d nodes) in %v\n", eng.NumNodes(), time.Since(start))

	if *query == "" {
		flag.Usage()
		os.Exit(1)
	}

	if *bench > 0 {
		runBenchmark(eng, *query, *n, *bench)
		return
	}

	results, err := eng.Query(*query, *n)
	if err != nil {
		logger.Printf("query failed: %v\n", err)
		os.Exit(1)
	}
	for _, r := range results {
		fmt.Printf("%.6f\t%s\n", r.Distance, r.Word)
	}
}
