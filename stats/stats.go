/*
Package stats provides the injectable observability hook for the search
engine: named timing intervals (start/stop, nestable into a parent/child
path) and named counters. The engine, buildtrie and vectortrie packages
never log or collect statistics on their own; engine and buildtrie accept
a Sink and call into it (vectortrie takes none), so instrumentation is
entirely opt-in and costs nothing when disabled.

This replaces the process-wide singleton collector of the original
implementation with dependency injection: there is no package-level
global state anywhere in this module.

Use Cases:
  - Measuring build/query latency without coupling the core algorithm to
    any particular metrics backend.
  - Counting builder-trie CAS collisions, pruned-subtree counts, and
    similar diagnostics during development.
*/
package stats

// Sink receives timing intervals and counters from instrumented code.
// Start/Stop calls nest: a Start while another interval is already open
// reports its name joined to the open interval's name with "/".
type Sink interface {
	// Start opens a named timing interval.
	Start(name string)
	// Stop closes the most recently opened interval with that name.
	Stop(name string)
	// Count adds delta to the named counter.
	Count(name string, delta int64)
}

// Noop is the zero-cost default Sink: every method is an empty body, so
// the compiler can inline them away entirely at call sites.
type Noop struct{}

// Start implements Sink.
func (Noop) Start(string) {}

// Stop implements Sink.
func (Noop) Stop(string) {}

// Count implements Sink.
func (Noop) Count(string, int64) {}

var _ Sink = Noop{}
