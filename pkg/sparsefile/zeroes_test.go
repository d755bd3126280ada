package sparsefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllZeroes(t *testing.T) {
	buf := make([]byte, 3*zeroBufSize+17)
	assert.True(t, isAllZeroes(buf))
	assert.True(t, isAllZeroes(nil))

	for _, idx := range []int{0, zeroBufSize - 1, zeroBufSize, 2*zeroBufSize + 5, len(buf) - 1} {
		buf[idx] = 1
		assert.False(t, isAllZeroes(buf), "non-zero byte at %d not detected", idx)
		buf[idx] = 0
	}
}

func BenchmarkIsAllZeroes(b *testing.B) {
	// 8 MiB, the default chunk size
	buf := make([]byte, 8*1024*1024)

	// Reset the timer to avoid counting the buffer creation time.
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = isAllZeroes(buf)
	}
}
