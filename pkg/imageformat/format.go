package imageformat

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Format identifies how an image file is encoded on disk.
type Format int

const (
	Raw Format = iota
	Gzip
	Zstd
	Xz
	Lz4
)

var ErrUnknownFormat = errors.New("unknown image format")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	// zstd frame magic 0xFD2FB528, little-endian
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	// lz4 frame magic 0x184D2204, little-endian
	lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}
)

// PrefixLength is the number of leading bytes Detect needs to classify any format.
const PrefixLength = 6

var names = map[Format]string{
	Raw:  "raw",
	Gzip: "gzip",
	Zstd: "zstd",
	Xz:   "xz",
	Lz4:  "lz4",
}

func (f Format) String() string {
	if n, ok := names[f]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", int(f))
}

func ParseFormat(s string) (Format, error) {
	for f, n := range names {
		if strings.EqualFold(n, s) {
			return f, nil
		}
	}
	return Raw, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Detect classifies an image by its leading bytes. Anything that carries no
// known compression magic is treated as a raw image.
func Detect(prefix []byte) Format {
	switch {
	case bytes.HasPrefix(prefix, gzipMagic):
		return Gzip
	case bytes.HasPrefix(prefix, zstdMagic):
		return Zstd
	case bytes.HasPrefix(prefix, xzMagic):
		return Xz
	case bytes.HasPrefix(prefix, lz4Magic):
		return Lz4
	}
	return Raw
}

// DetectReaderAt reads the prefix with ReadAt so the stream position of r is
// left untouched.
func DetectReaderAt(r io.ReaderAt) (Format, error) {
	prefix := make([]byte, PrefixLength)
	n, err := r.ReadAt(prefix, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return Raw, fmt.Errorf("unable to read image prefix: %w", err)
	}
	return Detect(prefix[:n]), nil
}
