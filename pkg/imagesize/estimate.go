package imagesize

import "fmt"

type Kind int

const (
	Exact Kind = iota
	Adaptive
)

func (k Kind) String() string {
	if k == Exact {
		return "exact"
	}
	return "adaptive"
}

// MinAdaptiveTotal is the smallest total reported while the size is unknown.
const MinAdaptiveTotal = 1024 * 1024

// Estimate is either an exact uncompressed size or, while the size is still
// unknown, the lower bound given by the bytes written so far.
type Estimate struct {
	Kind  Kind
	Bytes int64
}

func ExactSize(n int64) Estimate {
	return Estimate{Kind: Exact, Bytes: n}
}

func AdaptiveFrom(written int64) Estimate {
	return Estimate{Kind: Adaptive, Bytes: written}
}

// AdaptiveTotal is max(written*1.25, 1 MiB). It is always strictly greater
// than written.
func AdaptiveTotal(written int64) int64 {
	return max(written+written/4, MinAdaptiveTotal)
}

// Total is the figure reported to the progress tracker.
func (e Estimate) Total() int64 {
	if e.Kind == Exact {
		return e.Bytes
	}
	return AdaptiveTotal(e.Bytes)
}

func (e Estimate) String() string {
	return fmt.Sprintf("%v(%d)", e.Kind, e.Bytes)
}
