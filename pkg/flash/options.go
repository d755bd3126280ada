package flash

import (
	"log"

	"github.com/macvmio/rawflash/pkg/imageformat"
	"github.com/macvmio/rawflash/pkg/sparsefile"
)

const (
	DefaultBufferSize          = 8 * 1024 * 1024
	DefaultSyncThresholdSingle = 16 * 1024 * 1024
	DefaultSyncThresholdMulti  = 32 * 1024 * 1024
)

type options struct {
	bufferSize          int
	syncThresholdSingle int64
	syncThresholdMulti  int64
	stopAtTotal         bool
	parallelFanOut      bool
	streamingSize       bool
	format              *imageformat.Format
	printf              func(fmt string, argv ...any)
	stateHook           func(State)
	openDestination     func(path string, bufferSize int) (sparsefile.Destination, error)
}

type Option func(opts *options)

func makeOptions(opts ...Option) *options {
	res := &options{
		bufferSize:          DefaultBufferSize,
		syncThresholdSingle: DefaultSyncThresholdSingle,
		syncThresholdMulti:  DefaultSyncThresholdMulti,
		printf:              log.Printf,
		stateHook:           func(State) {},
		openDestination: func(path string, bufferSize int) (sparsefile.Destination, error) {
			return sparsefile.OpenFile(path, bufferSize)
		},
	}
	for _, o := range opts {
		o(res)
	}
	return res
}

// WithBufferSize sets the chunk capacity and the per-destination write buffer.
func WithBufferSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

// WithSyncThresholds sets how many bytes may be written between data syncs
// with one destination and with several.
func WithSyncThresholds(single, multi int64) Option {
	return func(o *options) {
		if single > 0 {
			o.syncThresholdSingle = single
		}
		if multi > 0 {
			o.syncThresholdMulti = multi
		}
	}
}

// WithStopAtTotal stops streaming once an exact size has been written, even
// if the source has more bytes.
func WithStopAtTotal(stop bool) Option {
	return func(o *options) {
		o.stopAtTotal = stop
	}
}

func WithParallelFanOut(parallel bool) Option {
	return func(o *options) {
		o.parallelFanOut = parallel
	}
}

// WithStreamingSize resolves the size while streaming even with a single
// destination, which avoids the zstd pre-pass.
func WithStreamingSize(streaming bool) Option {
	return func(o *options) {
		o.streamingSize = streaming
	}
}

// WithFormat skips detection and decodes the image as f.
func WithFormat(f imageformat.Format) Option {
	return func(o *options) {
		o.format = &f
	}
}

func WithLogFunction(log func(fmt string, args ...any)) Option {
	return func(o *options) {
		o.printf = log
	}
}

// WithStateHook is called on every state transition from the worker goroutine.
func WithStateHook(hook func(State)) Option {
	return func(o *options) {
		o.stateHook = hook
	}
}

// WithDestinationOpener replaces how destination paths are opened.
func WithDestinationOpener(open func(path string, bufferSize int) (sparsefile.Destination, error)) Option {
	return func(o *options) {
		o.openDestination = open
	}
}
