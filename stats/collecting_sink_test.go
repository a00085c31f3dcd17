package stats

import "testing"

func TestCollectingSinkSimpleInterval(t *testing.T) {
	s := NewCollectingSink()
	s.Start("build")
	s.Stop("build")

	times := s.Times()
	if _, ok := times["build"]; !ok {
		t.Fatalf("expected a recorded interval named %q, got %v", "build", times)
	}
}

func TestCollectingSinkNestedIntervalsJoinNames(t *testing.T) {
	s := NewCollectingSink()
	s.Start("outer")
	s.Start("inner")
	s.Stop("inner")
	s.Stop("outer")

	times := s.Times()
	if _, ok := times["outer/inner"]; !ok {
		t.Fatalf("expected joined name %q, got %v", "outer/inner", times)
	}
	if _, ok := times["outer"]; !ok {
		t.Fatalf("expected outer interval to also be recorded, got %v", times)
	}
}

func TestCollectingSinkRepeatedIntervalsAccumulate(t *testing.T) {
	s := NewCollectingSink()
	s.Start("query")
	s.Stop("query")
	firstTimes := s.Times()
	first := firstTimes["query"]

	s.Start("query")
	s.Stop("query")
	second := s.Times()["query"]

	if second < first {
		t.Errorf("accumulated duration %v should be >= first duration %v", second, first)
	}
}

func TestCollectingSinkStopWithoutStartIsNoop(t *testing.T) {
	s := NewCollectingSink()
	s.Stop("never-started")
	if len(s.Times()) != 0 {
		t.Errorf("expected no recorded intervals, got %v", s.Times())
	}
}

func TestCollectingSinkCounters(t *testing.T) {
	s := NewCollectingSink()
	s.Count("collisions", 3)
	s.Count("collisions", 4)
	s.Count("retries", 1)

	counters := s.Counters()
	if counters["collisions"] != 7 {
		t.Errorf("collisions = %d, want 7", counters["collisions"])
	}
	if counters["retries"] != 1 {
		t.Errorf("retries = %d, want 1", counters["retries"])
	}
}

func TestNoopSinkSatisfiesInterface(t *testing.T) {
	var s Sink = Noop{}
	s.Start("x")
	s.Stop("x")
	s.Count("y", 1)
}
