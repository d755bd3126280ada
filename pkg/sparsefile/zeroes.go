package sparsefile

import "bytes"

const zeroBufSize = 64 * 1024

var zeroBuf = make([]byte, zeroBufSize)

// isAllZeroes compares p against a zero buffer window by window; chunks are
// usually much larger than the window.
func isAllZeroes(p []byte) bool {
	for len(p) > 0 {
		n := min(len(p), zeroBufSize)
		// bytes.Equal is optimized version, 10x faster than simple loop
		if !bytes.Equal(p[:n], zeroBuf[:n]) {
			return false
		}
		p = p[n:]
	}
	return true
}
