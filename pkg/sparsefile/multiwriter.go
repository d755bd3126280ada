// Package sparsefile writes one stream to several destinations, skipping the
// physical write of chunks that contain only zeroes.
package sparsefile

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

type MultiWriter struct {
	dsts     []Destination
	parallel bool

	written int64
	skipped int64
}

type Option func(m *MultiWriter)

// WithParallelFanOut writes each chunk to all destinations concurrently. The
// chunk is still finished on every destination before the next one starts.
func WithParallelFanOut(parallel bool) Option {
	return func(m *MultiWriter) {
		m.parallel = parallel
	}
}

func NewMultiWriter(dsts []Destination, opt ...Option) *MultiWriter {
	m := &MultiWriter{dsts: dsts}
	for _, o := range opt {
		o(m)
	}
	return m
}

// WriteChunk hands p to every destination. An all-zero chunk only advances
// each destination's cursor, followed by a buffer flush. Any failure aborts
// the chunk for all destinations.
func (m *MultiWriter) WriteChunk(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n := int64(len(p))
	if isAllZeroes(p) {
		err := m.each(func(d Destination) error {
			if _, err := d.Seek(n, io.SeekCurrent); err != nil {
				return fmt.Errorf("unable to skip %d zero bytes: %w", n, err)
			}
			return d.Flush()
		})
		if err != nil {
			return err
		}
		m.skipped += n
		return nil
	}
	err := m.each(func(d Destination) error {
		nw, err := d.Write(p)
		if err != nil {
			return err
		}
		if nw != len(p) {
			return io.ErrShortWrite
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.written += n
	return nil
}

// SyncData flushes every destination and makes its data durable.
func (m *MultiWriter) SyncData() error {
	return m.each(func(d Destination) error {
		if err := d.Flush(); err != nil {
			return err
		}
		return d.SyncData()
	})
}

// Finalize flushes every destination and makes data and metadata durable.
func (m *MultiWriter) Finalize() error {
	return m.each(func(d Destination) error {
		if err := d.Flush(); err != nil {
			return err
		}
		return d.Sync()
	})
}

func (m *MultiWriter) Close() error {
	var errs []error
	for _, d := range m.dsts {
		if err := d.Close(); err != nil {
			errs = append(errs, fmt.Errorf("unable to close '%v': %w", d.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Written is the number of bytes physically written to each destination.
func (m *MultiWriter) Written() int64 {
	return m.written
}

// Skipped is the number of zero bytes skipped on each destination.
func (m *MultiWriter) Skipped() int64 {
	return m.skipped
}

func (m *MultiWriter) each(fn func(d Destination) error) error {
	if !m.parallel || len(m.dsts) < 2 {
		for _, d := range m.dsts {
			if err := fn(d); err != nil {
				return fmt.Errorf("destination '%v': %w", d.Name(), err)
			}
		}
		return nil
	}
	var g errgroup.Group
	for _, d := range m.dsts {
		d := d
		g.Go(func() error {
			if err := fn(d); err != nil {
				return fmt.Errorf("destination '%v': %w", d.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
