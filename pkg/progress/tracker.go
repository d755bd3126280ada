// Package progress holds the counters shared between the flashing worker and
// any number of observers.
package progress

import (
	"sync"
	"time"
)

// Snapshot is a consistent copy of the tracker state with derived figures.
type Snapshot struct {
	Elapsed      time.Duration
	Fraction     float64
	Throughput   float64 // bytes per second
	BytesWritten uint64
	TotalBytes   uint64
}

// Tracker is safe for concurrent use. The worker is the only writer; every
// accessor holds the lock just long enough to copy three fields.
type Tracker struct {
	mu           sync.Mutex
	bytesWritten uint64
	totalBytes   uint64
	startTime    time.Time

	now func() time.Time
}

type Option func(t *Tracker)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func NewTracker(opt ...Option) *Tracker {
	t := &Tracker{now: time.Now}
	for _, o := range opt {
		o(t)
	}
	t.startTime = t.now()
	return t
}

// RecordWritten adds n bytes that every destination has accepted.
func (t *Tracker) RecordWritten(n uint64) {
	t.mu.Lock()
	t.bytesWritten += n
	t.mu.Unlock()
}

func (t *Tracker) SetTotal(n uint64) {
	t.mu.Lock()
	t.totalBytes = n
	t.mu.Unlock()
}

// Reset returns the tracker to a fresh zero state with a new start time, so
// observers of a failed operation do not keep showing stale figures.
func (t *Tracker) Reset() {
	start := t.now()
	t.mu.Lock()
	t.bytesWritten = 0
	t.totalBytes = 0
	t.startTime = start
	t.mu.Unlock()
}

func (t *Tracker) load() (written, total uint64, start time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bytesWritten, t.totalBytes, t.startTime
}

func (t *Tracker) Elapsed() time.Duration {
	_, _, start := t.load()
	return t.now().Sub(start)
}

func (t *Tracker) Fraction() float64 {
	written, total, _ := t.load()
	return fraction(written, total)
}

func (t *Tracker) Throughput() float64 {
	written, _, start := t.load()
	return throughput(written, t.now().Sub(start))
}

func (t *Tracker) Snapshot() Snapshot {
	written, total, start := t.load()
	elapsed := t.now().Sub(start)
	return Snapshot{
		Elapsed:      elapsed,
		Fraction:     fraction(written, total),
		Throughput:   throughput(written, elapsed),
		BytesWritten: written,
		TotalBytes:   total,
	}
}

func fraction(written, total uint64) float64 {
	if total == 0 {
		return 0
	}
	f := float64(written) / float64(total)
	return min(max(f, 0), 1)
}

func throughput(written uint64, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(written) / secs
}
