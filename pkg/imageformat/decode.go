package imageformat

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// codec bundles everything that differs between formats. It is looked up
// once when a Source is opened so the streaming loop never switches on format.
type codec struct {
	newReader func(r io.Reader) (io.ReadCloser, error)
	// exactSize is nil when the format has no cheap way of telling its
	// uncompressed length up front.
	exactSize func(r io.ReadSeeker) (int64, error)
}

var codecs = map[Format]codec{
	Raw: {
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
		exactSize: rawSize,
	},
	Gzip: {
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
		exactSize: gzipTrailerSize,
	},
	Zstd: {
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		},
		exactSize: zstdDecodedSize,
	},
	Xz: {
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			xr, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(xr), nil
		},
	},
	Lz4: {
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(lz4.NewReader(r)), nil
		},
	},
}

func lookup(f Format) (codec, error) {
	c, ok := codecs[f]
	if !ok {
		return codec{}, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	return c, nil
}

// NewReader wraps r with the decoder for format f. Decoding is sequential and
// forward-only.
func NewReader(f Format, r io.Reader) (io.ReadCloser, error) {
	c, err := lookup(f)
	if err != nil {
		return nil, err
	}
	rc, err := c.newReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize %v decoder: %w", f, err)
	}
	return rc, nil
}
