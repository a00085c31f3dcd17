package stats

import (
	"sync"
	"time"

	"github.com/LDAP/parallel-levenshtein/stack"
	"github.com/LDAP/parallel-levenshtein/treemap"
)

// CollectingSink is a Sink that records timing intervals and counters in
// memory for later inspection, grounded on
// original_source/utils/statistics_collector.hpp's start/stop-stack
// design: nested Start calls join their names with "/" using the adapted
// stack.Stack[string] instead of the original's std::stack of time
// points plus a parallel name vector.
//
// Safe for concurrent use: every method takes a single mutex.
type CollectingSink struct {
	mu       sync.Mutex
	names    *stack.Stack[string]
	starts   *stack.Stack[time.Time]
	times    *treemap.TreeMap[string, time.Duration]
	counters *treemap.TreeMap[string, int64]
}

// NewCollectingSink returns an empty CollectingSink ready to record.
func NewCollectingSink() *CollectingSink {
	return &CollectingSink{
		names:    stack.NewStack[string](),
		starts:   stack.NewStack[time.Time](),
		times:    treemap.NewTreeMap[string, time.Duration](),
		counters: treemap.NewTreeMap[string, int64](),
	}
}

// Start implements Sink.
func (c *CollectingSink) Start(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names.Push(name)
	c.starts.Push(time.Now())
}

// Stop implements Sink. It closes the innermost open interval; name is not
// compared against that interval's name. Calling Stop while no interval is
// open is a no-op, mirroring the original's documented "calling multiple
// times is undefined" contract by simply doing nothing rather than panicking.
func (c *CollectingSink) Stop(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.names.IsEmpty() {
		return
	}
	started, err := c.starts.Pop()
	if err != nil {
		return
	}
	qualified := c.joinedName()
	_, _ = c.names.Pop()
	elapsed := time.Since(started)
	if prev, ok := c.times.Get(qualified); ok {
		elapsed += prev
	}
	c.times.Put(qualified, elapsed)
}

// joinedName builds "parent/child" from the current name stack, deepest
// last, matching the original's names vector joined with "/".
func (c *CollectingSink) joinedName() string {
	n := c.names.Size()
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		v, _ := c.names.ValueAt(i)
		parts[n-1-i] = v
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += "/" + parts[i]
	}
	return out
}

// Count implements Sink.
func (c *CollectingSink) Count(name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, _ := c.counters.Get(name)
	c.counters.Put(name, prev+delta)
}

// Times returns every recorded interval in a map keyed by qualified name.
func (c *CollectingSink) Times() map[string]time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]time.Duration)
	for _, k := range c.times.Keys() {
		v, _ := c.times.Get(k)
		out[k] = v
	}
	return out
}

// Counters returns every recorded counter in a map keyed by name.
func (c *CollectingSink) Counters() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64)
	for _, k := range c.counters.Keys() {
		v, _ := c.counters.Get(k)
		out[k] = v
	}
	return out
}

var _ Sink = (*CollectingSink)(nil)
