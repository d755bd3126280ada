package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTracker_Fraction(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, 0.0, tr.Fraction(), "zero total reports zero")

	tr.SetTotal(200)
	tr.RecordWritten(50)
	assert.InDelta(t, 0.25, tr.Fraction(), 1e-9)

	tr.RecordWritten(500)
	assert.Equal(t, 1.0, tr.Fraction(), "fraction is clamped")
}

func TestTracker_Throughput(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))
	tr.RecordWritten(1000)
	assert.Equal(t, 0.0, tr.Throughput(), "no elapsed time reports zero")

	clock.Advance(2 * time.Second)
	assert.InDelta(t, 500.0, tr.Throughput(), 1e-9)
	assert.Equal(t, 2*time.Second, tr.Elapsed())

	s := tr.Snapshot()
	assert.Equal(t, uint64(1000), s.BytesWritten)
	assert.Equal(t, 2*time.Second, s.Elapsed)
	assert.InDelta(t, 500.0, s.Throughput, 1e-9)
}

func TestTracker_Reset(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(WithClock(clock.Now))
	tr.SetTotal(10)
	tr.RecordWritten(10)
	clock.Advance(time.Minute)

	tr.Reset()
	s := tr.Snapshot()
	assert.Equal(t, Snapshot{}, s)
}

func TestTracker_ConcurrentObservers(t *testing.T) {
	tr := NewTracker()
	const chunks = 2000
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last uint64
			for {
				s := tr.Snapshot()
				if s.BytesWritten < last || s.Fraction < 0 || s.Fraction > 1 {
					t.Errorf("inconsistent snapshot %+v after %d bytes", s, last)
					return
				}
				last = s.BytesWritten
				select {
				case <-done:
					return
				default:
				}
			}
		}()
	}
	for i := 1; i <= chunks; i++ {
		tr.SetTotal(uint64(i*7 + 100))
		tr.RecordWritten(7)
	}
	close(done)
	wg.Wait()
	assert.Equal(t, uint64(chunks*7), tr.Snapshot().BytesWritten)
}
