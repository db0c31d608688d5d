package input

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/modalkeys/internal/input/keymap"
)

// Stats tracks engine throughput and feed latency.
//
// The engine writes from its own goroutine; readers (status lines, the
// CLI) may call Snapshot from anywhere.
type Stats struct {
	tokens       atomic.Uint64
	handled      atomic.Uint64
	unmatched    atomic.Uint64
	discarded    atomic.Uint64
	replayed     atomic.Uint64
	unrecognized atomic.Uint64

	mu         sync.Mutex
	latencies  []time.Duration
	latencyIdx int
	peak       atomic.Int64

	startTime time.Time
}

const maxLatencySamples = 512

// NewStats creates an empty tracker.
func NewStats() *Stats {
	return &Stats{
		latencies: make([]time.Duration, maxLatencySamples),
		startTime: time.Now(),
	}
}

// RecordFeed records one resolved token.
func (s *Stats) RecordFeed(outcome keymap.Outcome, latency time.Duration) {
	s.tokens.Add(1)
	switch outcome {
	case keymap.OutcomeHandled:
		s.handled.Add(1)
	case keymap.OutcomeUnmatched:
		s.unmatched.Add(1)
	case keymap.OutcomeDiscarded:
		s.discarded.Add(1)
	}

	ns := latency.Nanoseconds()
	for {
		current := s.peak.Load()
		if ns <= current || s.peak.CompareAndSwap(current, ns) {
			break
		}
	}

	s.mu.Lock()
	s.latencies[s.latencyIdx] = latency
	s.latencyIdx = (s.latencyIdx + 1) % maxLatencySamples
	s.mu.Unlock()
}

// RecordReplay records events handed back to the host.
func (s *Stats) RecordReplay(events int) {
	s.replayed.Add(uint64(events))
}

// RecordUnrecognized records an event that produced no token.
func (s *Stats) RecordUnrecognized() {
	s.unrecognized.Add(1)
}

// StatsSnapshot is a point-in-time view of Stats.
type StatsSnapshot struct {
	Tokens       uint64
	Handled      uint64
	Unmatched    uint64
	Discarded    uint64
	Replayed     uint64
	Unrecognized uint64

	AvgLatency  time.Duration
	P99Latency  time.Duration
	PeakLatency time.Duration

	Uptime time.Duration
}

// Snapshot returns the current counters and latency figures.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	samples := make([]time.Duration, 0, len(s.latencies))
	for _, l := range s.latencies {
		if l > 0 {
			samples = append(samples, l)
		}
	}
	s.mu.Unlock()

	snap := StatsSnapshot{
		Tokens:       s.tokens.Load(),
		Handled:      s.handled.Load(),
		Unmatched:    s.unmatched.Load(),
		Discarded:    s.discarded.Load(),
		Replayed:     s.replayed.Load(),
		Unrecognized: s.unrecognized.Load(),
		PeakLatency:  time.Duration(s.peak.Load()),
		Uptime:       time.Since(s.startTime),
	}
	snap.AvgLatency, snap.P99Latency = latencyStats(samples)
	return snap
}

func latencyStats(samples []time.Duration) (avg, p99 time.Duration) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum time.Duration
	for _, l := range samples {
		sum += l
	}
	avg = sum / time.Duration(len(samples))

	slices.Sort(samples)
	idx := min(int(float64(len(samples))*0.99), len(samples)-1)
	return avg, samples[idx]
}
