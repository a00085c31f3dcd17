package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/LDAP/parallel-levenshtein/deque"
	"github.com/LDAP/parallel-levenshtein/engine"
)

// rollingWindow caps how many recent latencies runBenchmark keeps for its
// percentile report; older samples are dropped as new ones arrive.
const rollingWindow = 1000

// runBenchmark repeats a single query iterations times, keeping only the
// most recent rollingWindow latencies in a deque.Deque[time.Duration] (the
// oldest sample is evicted from the front as a new one is pushed onto the
// back), then reports min/p50/p99/max over that window.
func runBenchmark(eng *engine.Engine, query string, n int, iterations int) {
	window := deque.NewDeque[time.Duration]()

	var total time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		if _, err := eng.Query(query, n); err != nil {
			logger.Printf("query %d failed: %v\n", i, err)
			continue
		}
		elapsed := time.Since(start)
		total += elapsed

		if window.Size() >= rollingWindow {
			_, _ = window.PollFirst()
		}
		_, _ = window.OfferLast(elapsed)
	}

	samples := drainSamples(window)
	if len(samples) == 0 {
		logger.Println("benchmark produced no samples")
		return
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	fmt.Printf("iterations=%d window=%d mean=%v min=%v p50=%v p99=%v max=%v\n",
		iterations, len(samples), total/time.Duration(iterations),
		samples[0], percentile(samples, 0.50), percentile(samples, 0.99), samples[len(samples)-1])
}

// drainSamples empties window into a plain slice, preserving oldest-first
// order, leaving the deque empty for garbage collection.
func drainSamples(window *deque.Deque[time.Duration]) []time.Duration {
	samples := make([]time.Duration, 0, window.Size())
	for {
		v, err := window.PollFirst()
		if err != nil {
			break
		}
		samples = append(samples, v)
	}
	return samples
}

// percentile assumes samples is already sorted ascending.
func percentile(samples []time.Duration, p float64) time.Duration {
	idx := int(p * float64(len(samples)-1))
	return samples[idx]
}
