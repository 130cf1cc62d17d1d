package runtime

import (
	"sync"
	"time"
)

// circularTimingBuffer is a fixed-capacity ring buffer of frame-time
// samples, ported from the teacher's CircularTimingBuffer: Add is O(1),
// Average/Variance scan only the filled portion.
type circularTimingBuffer struct {
	mu       sync.RWMutex
	buffer   []time.Duration
	index    int
	size     int
	capacity int
}

func newCircularTimingBuffer(capacity int) *circularTimingBuffer {
	return &circularTimingBuffer{buffer: make([]time.Duration, capacity), capacity: capacity}
}

func (b *circularTimingBuffer) Add(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer[b.index] = d
	b.index = (b.index + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

func (b *circularTimingBuffer) Average() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.averageLocked()
}

// averageLocked assumes the caller already holds mu (for reading); kept
// separate from Average so Variance can reuse it without taking RLock
// twice on the same goroutine.
func (b *circularTimingBuffer) averageLocked() time.Duration {
	if b.size == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < b.size; i++ {
		total += b.buffer[i]
	}
	return total / time.Duration(b.size)
}

func (b *circularTimingBuffer) Variance() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.size < 2 {
		return 0
	}
	avg := b.averageLocked()
	var variance int64
	for i := 0; i < b.size; i++ {
		diff := int64(b.buffer[i] - avg)
		variance += diff * diff
	}
	return time.Duration(variance / int64(b.size))
}

func (b *circularTimingBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.index = 0
	b.size = 0
}

// Stats is a point-in-time snapshot of the scheduler's frame-pacing
// behavior, analogous to the teacher's EmulatorStats/EmulatorPerformanceStats
// pair but trimmed to the metrics this runtime actually measures (the
// teacher's GC-pause and memory-efficiency fields were never fed real data
// even there, so they aren't ported).
type Stats struct {
	ActualFrameTime  time.Duration
	AverageFrameTime time.Duration
	TargetFrameTime  time.Duration
	Jitter           time.Duration // variance of recent frame times
	EmulationSpeed   float64       // percent of real-time cadence; 100 == on pace
	OverBudgetFrames uint64        // frames whose actual time exceeded TargetFrameTime
}

func (s *Stats) update(actual, target time.Duration, history *circularTimingBuffer) {
	s.ActualFrameTime = actual
	s.TargetFrameTime = target
	s.AverageFrameTime = history.Average()
	s.Jitter = history.Variance()
	if actual > 0 {
		s.EmulationSpeed = float64(target) / float64(actual) * 100.0
	}
	if actual > target {
		s.OverBudgetFrames++
	}
}
