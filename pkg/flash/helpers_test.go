package flash

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"

	"github.com/macvmio/rawflash/pkg/sparsefile"
)

const mib = 1024 * 1024

func quietLog(string, ...any) {}

// makeImage returns size bytes of random data with a few zero regions, the
// way unused space shows up in real disk images.
func makeImage(seed int64, size int) []byte {
	rng := rand.New(rand.NewSource(seed))
	data := make([]byte, size)
	_, _ = rng.Read(data)
	for start := size / 8; start < size; start += size / 3 {
		end := min(start+size/10, size)
		clear(data[start:end])
	}
	return data
}

// withMBR stamps a single-partition MBR into data.
func withMBR(data []byte, lbaStart, sectors uint32) []byte {
	clear(data[446:512])
	data[510], data[511] = 0x55, 0xaa
	binary.LittleEndian.PutUint32(data[446+8:], lbaStart)
	binary.LittleEndian.PutUint32(data[446+12:], sectors)
	return data
}

// withGPT stamps a GPT header whose backup LBA is backupLBA.
func withGPT(data []byte, backupLBA uint64) []byte {
	clear(data[:1024])
	copy(data[512:], "EFI PART")
	binary.LittleEndian.PutUint64(data[544:], backupLBA)
	return data
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, content, 0o644))
	return p
}

func gzipBytes(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func lz4Bytes(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func hashFromFile(t *testing.T, filename string) string {
	f, err := os.Open(filename)
	if err != nil {
		t.Errorf("unexpected error while opening a file, got %v", err)
	}
	defer f.Close()
	h, _, err := v1.SHA256(f)
	if err != nil {
		t.Errorf("unable to calculate SHA256, got %v", err)
	}
	return h.Hex
}

func hashFromBytes(t *testing.T, data []byte) string {
	h, _, err := v1.SHA256(bytes.NewReader(data))
	require.NoError(t, err)
	return h.Hex
}

// countingDestination wraps a real file destination and counts calls.
type countingDestination struct {
	sparsefile.Destination

	mu       sync.Mutex
	writes   int
	seeks    int
	syncData int
	syncs    int
	onWrite  func()
}

func (c *countingDestination) Write(p []byte) (int, error) {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	if c.onWrite != nil {
		c.onWrite()
	}
	return c.Destination.Write(p)
}

func (c *countingDestination) Seek(offset int64, whence int) (int64, error) {
	c.mu.Lock()
	c.seeks++
	c.mu.Unlock()
	if c.onWrite != nil {
		c.onWrite()
	}
	return c.Destination.Seek(offset, whence)
}

func (c *countingDestination) SyncData() error {
	c.mu.Lock()
	c.syncData++
	c.mu.Unlock()
	return c.Destination.SyncData()
}

func (c *countingDestination) Sync() error {
	c.mu.Lock()
	c.syncs++
	c.mu.Unlock()
	return c.Destination.Sync()
}

// countingOpener opens real files and keeps the wrappers for inspection.
type countingOpener struct {
	opened  []*countingDestination
	onWrite func()
}

func (o *countingOpener) open(path string, bufferSize int) (sparsefile.Destination, error) {
	f, err := sparsefile.OpenFile(path, bufferSize)
	if err != nil {
		return nil, err
	}
	d := &countingDestination{Destination: f, onWrite: o.onWrite}
	o.opened = append(o.opened, d)
	return d, nil
}
