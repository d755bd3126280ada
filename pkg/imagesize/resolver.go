// Package imagesize tracks the uncompressed size of an image while it is
// being streamed.
package imagesize

import "github.com/macvmio/rawflash/pkg/partition"

// HeaderBudget is how much decoded output is kept for partition table inference.
const HeaderBudget = 64 * 1024

type Resolver struct {
	estimate  Estimate
	header    []byte
	inferring bool
}

// NewResolver starts with an adaptive estimate and tries to infer the exact
// size from the partition table at the start of the decoded stream.
func NewResolver() *Resolver {
	return &Resolver{
		estimate:  AdaptiveFrom(0),
		header:    make([]byte, 0, HeaderBudget),
		inferring: true,
	}
}

// NewExactResolver is used when the size was resolved before streaming.
func NewExactResolver(size int64) *Resolver {
	return &Resolver{estimate: ExactSize(size)}
}

// Observe feeds the next decoded chunk, before it is written. Inference is
// attempted once at least partition.MinHeaderSize bytes are buffered and
// given up when the header budget is full.
func (r *Resolver) Observe(chunk []byte) Estimate {
	if !r.inferring {
		return r.estimate
	}
	room := HeaderBudget - len(r.header)
	r.header = append(r.header, chunk[:min(room, len(chunk))]...)
	if len(r.header) < partition.MinHeaderSize {
		return r.estimate
	}
	if n, ok := partition.InferSize(r.header); ok && n > 0 {
		r.estimate = ExactSize(n)
		r.stopInferring()
	} else if len(r.header) >= HeaderBudget {
		r.stopInferring()
	}
	return r.estimate
}

func (r *Resolver) stopInferring() {
	r.inferring = false
	r.header = nil
}

// Inferring reports whether the resolver is still collecting header bytes.
func (r *Resolver) Inferring() bool {
	return r.inferring
}

// Advance records the bytes written so far. An exact size that turns out to
// be an underestimate degrades to an adaptive one.
func (r *Resolver) Advance(written int64) Estimate {
	switch {
	case r.estimate.Kind == Adaptive:
		r.estimate = AdaptiveFrom(written)
	case written > r.estimate.Bytes:
		r.estimate = AdaptiveFrom(written)
	}
	return r.estimate
}

// Finish is called once the stream is exhausted. The estimate becomes the
// exact number of bytes written, whether it was adaptive or an exact size
// the stream fell short of.
func (r *Resolver) Finish(written int64) Estimate {
	r.stopInferring()
	if r.estimate.Kind == Adaptive || written < r.estimate.Bytes {
		r.estimate = ExactSize(written)
	}
	return r.estimate
}

func (r *Resolver) Estimate() Estimate {
	return r.estimate
}
