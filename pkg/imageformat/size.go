package imageformat

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

func rawSize(r io.ReadSeeker) (int64, error) {
	// Seeking works for block devices too, where Stat reports zero.
	n, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("unable to seek to end of image: %w", err)
	}
	return n, nil
}

// gzipTrailerSize returns ISIZE from the gzip trailer, the uncompressed length
// modulo 2^32. Payloads of 4 GiB or more therefore report a wrapped size; the
// value is returned as stored.
func gzipTrailerSize(r io.ReadSeeker) (int64, error) {
	if _, err := r.Seek(-4, io.SeekEnd); err != nil {
		return 0, fmt.Errorf("unable to seek to gzip trailer: %w", err)
	}
	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return 0, fmt.Errorf("unable to read gzip trailer: %w", err)
	}
	return int64(binary.LittleEndian.Uint32(trailer[:])), nil
}

// zstdDecodedSize decodes the whole stream once and counts the output. This is
// the only strategy that costs a full pass over the payload.
func zstdDecodedSize(r io.ReadSeeker) (int64, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	d, err := zstd.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("unable to initialize zstd decoder: %w", err)
	}
	defer d.Close()
	n, err := io.Copy(io.Discard, d)
	if err != nil {
		return 0, fmt.Errorf("unable to decode zstd stream: %w", err)
	}
	return n, nil
}
