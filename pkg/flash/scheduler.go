package flash

import "fmt"

type syncTarget interface {
	SyncData() error
	Finalize() error
}

// SyncScheduler bounds how many bytes can sit in dirty buffers by issuing a
// data sync every threshold bytes, and performs the final full sync.
type SyncScheduler struct {
	target    syncTarget
	threshold int64
	pending   int64
	syncs     int
	printf    func(fmt string, argv ...any)
}

func NewSyncScheduler(target syncTarget, threshold int64, printf func(fmt string, argv ...any)) *SyncScheduler {
	return &SyncScheduler{
		target:    target,
		threshold: threshold,
		printf:    printf,
	}
}

// Add accounts for n more bytes and syncs when the threshold is reached.
func (s *SyncScheduler) Add(n int64) error {
	s.pending += n
	if s.pending < s.threshold {
		return nil
	}
	if err := s.target.SyncData(); err != nil {
		return fmt.Errorf("periodic data sync failed: %w", err)
	}
	s.printf("synced %d bytes to disk\n", s.pending)
	s.syncs++
	s.pending = 0
	return nil
}

// Finish flushes and fully syncs every destination, whatever the pending count.
func (s *SyncScheduler) Finish() error {
	if err := s.target.Finalize(); err != nil {
		return fmt.Errorf("final sync failed: %w", err)
	}
	s.pending = 0
	return nil
}

// Syncs is the number of periodic data syncs issued so far.
func (s *SyncScheduler) Syncs() int {
	return s.syncs
}
