// Package flash writes a disk image onto one or more destinations in a single
// pass over the source.
package flash

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/macvmio/rawflash/pkg/imageformat"
	"github.com/macvmio/rawflash/pkg/imagesize"
	"github.com/macvmio/rawflash/pkg/progress"
	"github.com/macvmio/rawflash/pkg/sparsefile"
)

var ErrNoDestinations = errors.New("at least one destination is required")

// Result describes a completed flash operation.
type Result struct {
	Format       imageformat.Format
	Size         imagesize.Estimate // always Exact(BytesWritten) once completed
	BytesWritten int64 // bytes streamed to every destination
	BytesSkipped int64 // part of BytesWritten skipped as zeroes
	Chunks       int
	Syncs        int
	Elapsed      time.Duration
}

type operation struct {
	opts    *options
	tracker *progress.Tracker
	state   State
}

// Flash writes the image at imagePath to every destination. Progress is
// published through tracker, which may be observed from other goroutines.
// The first error on the source or on any destination aborts the whole
// operation; bytes already written are not rolled back.
func Flash(imagePath string, destinations []string, tracker *progress.Tracker, opt ...Option) (*Result, error) {
	if len(destinations) == 0 {
		return nil, ErrNoDestinations
	}
	if tracker == nil {
		tracker = progress.NewTracker()
	}
	op := &operation{
		opts:    makeOptions(opt...),
		tracker: tracker,
		state:   Idle,
	}
	res, err := op.run(imagePath, destinations)
	if err != nil {
		op.setState(Failed)
		return nil, err
	}
	op.setState(Completed)
	return res, nil
}

func (op *operation) setState(s State) {
	op.state = s
	op.opts.printf("flash state: %v\n", s)
	op.opts.stateHook(s)
}

func (op *operation) run(imagePath string, destinations []string) (res *Result, err error) {
	start := time.Now()
	op.setState(Resolving)
	src, err := op.openSource(imagePath)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	op.opts.printf("image '%v' detected as %v\n", imagePath, src.Format)

	resolver, err := op.resolveSize(src, len(destinations) > 1)
	if err != nil {
		return nil, err
	}

	dsts, err := op.openDestinations(destinations)
	if err != nil {
		return nil, err
	}
	mw := sparsefile.NewMultiWriter(dsts, sparsefile.WithParallelFanOut(op.opts.parallelFanOut))
	defer func() {
		if closeErr := mw.Close(); closeErr != nil && err == nil {
			res, err = nil, closeErr
		}
	}()

	r, err := src.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	threshold := op.opts.syncThresholdSingle
	if len(dsts) > 1 {
		threshold = op.opts.syncThresholdMulti
	}
	sched := NewSyncScheduler(mw, threshold, op.opts.printf)

	op.setState(Streaming)
	written, chunks, err := op.stream(r, resolver, mw, sched)
	if err != nil {
		return nil, err
	}

	op.setState(Finalizing)
	if err := sched.Finish(); err != nil {
		return nil, err
	}
	if prev := resolver.Estimate(); prev.Kind == imagesize.Exact && written < prev.Bytes {
		op.opts.printf("image ended after %d bytes, %d bytes short of the resolved size\n", written, prev.Bytes-written)
	}
	est := resolver.Finish(written)
	op.tracker.SetTotal(uint64(est.Total()))

	res = &Result{
		Format:       src.Format,
		Size:         est,
		BytesWritten: written,
		BytesSkipped: mw.Skipped(),
		Chunks:       chunks,
		Syncs:        sched.Syncs(),
		Elapsed:      time.Since(start),
	}
	op.opts.printf("flashed %d bytes (%d skipped as zeroes) to %d destination(s) in %v\n",
		res.BytesWritten, res.BytesSkipped, len(dsts), res.Elapsed)
	return res, nil
}

func (op *operation) openSource(imagePath string) (*imageformat.Source, error) {
	if op.opts.format == nil {
		return imageformat.Open(imagePath)
	}
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("unable to open image '%v': %w", imagePath, err)
	}
	return imageformat.OpenAs(f, imagePath, *op.opts.format)
}

// resolveSize returns a resolver holding the exact size when the format can
// provide it cheaply before streaming, and a streaming resolver otherwise.
func (op *operation) resolveSize(src *imageformat.Source, multi bool) (*imagesize.Resolver, error) {
	if multi || op.opts.streamingSize || !src.HasExactSize() {
		op.opts.printf("size of %v image will be resolved while streaming\n", src.Format)
		r := imagesize.NewResolver()
		op.tracker.SetTotal(uint64(r.Estimate().Total()))
		return r, nil
	}
	if src.Format == imageformat.Zstd {
		op.opts.printf("decoding zstd image once to determine its size\n")
	}
	n, err := src.ExactSize()
	if err != nil {
		return nil, err
	}
	op.opts.printf("resolved image size: %d bytes\n", n)
	op.tracker.SetTotal(uint64(n))
	return imagesize.NewExactResolver(n), nil
}

func (op *operation) openDestinations(paths []string) ([]sparsefile.Destination, error) {
	dsts := make([]sparsefile.Destination, 0, len(paths))
	for _, p := range paths {
		d, err := op.opts.openDestination(p, op.opts.bufferSize)
		if err != nil {
			for _, opened := range dsts {
				opened.Close()
			}
			return nil, err
		}
		dsts = append(dsts, d)
	}
	return dsts, nil
}

func (op *operation) stream(r io.Reader, resolver *imagesize.Resolver, mw *sparsefile.MultiWriter, sched *SyncScheduler) (written int64, chunks int, err error) {
	buf := make([]byte, op.opts.bufferSize)
	for {
		n, rerr := readChunk(r, buf)
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return written, chunks, fmt.Errorf("unable to read image at offset %d: %w", written+int64(n), rerr)
		}
		if n == 0 {
			return written, chunks, nil
		}
		chunk := buf[:n]

		inferring := resolver.Inferring()
		est := resolver.Observe(chunk)
		if inferring && est.Kind == imagesize.Exact {
			op.opts.printf("inferred image size from partition table: %d bytes\n", est.Bytes)
		}
		if op.opts.stopAtTotal && est.Kind == imagesize.Exact {
			remaining := est.Bytes - written
			if remaining <= 0 {
				op.opts.printf("resolved size of %d bytes reached, ignoring the rest of the image\n", est.Bytes)
				return written, chunks, nil
			}
			chunk = chunk[:min(int64(len(chunk)), remaining)]
		}

		if err := mw.WriteChunk(chunk); err != nil {
			return written, chunks, fmt.Errorf("unable to write chunk at offset %d: %w", written, err)
		}
		written += int64(len(chunk))
		chunks++

		// total first, so observers never see bytes written above it
		est = resolver.Advance(written)
		op.tracker.SetTotal(uint64(est.Total()))
		op.tracker.RecordWritten(uint64(len(chunk)))

		if err := sched.Add(int64(len(chunk))); err != nil {
			return written, chunks, err
		}
		if rerr != nil {
			return written, chunks, nil
		}
	}
}

// readChunk fills buf unless the stream ends first. Unlike io.ReadFull it
// passes decoder errors such as io.ErrUnexpectedEOF through unchanged.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		nr, err := r.Read(buf[n:])
		n += nr
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
