package imageformat

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

const readBufferSize = 1024 * 1024

// Source is an opened image file with its detected format.
type Source struct {
	Path   string
	Format Format

	f     *os.File
	codec codec
}

// Open opens path and detects its format without consuming the stream used
// later by Reader.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open image '%v': %w", path, err)
	}
	format, err := DetectReaderAt(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to detect format of '%v': %w", path, err)
	}
	return OpenAs(f, path, format)
}

// OpenAs wraps an already opened file with an explicit format, skipping detection.
func OpenAs(f *os.File, path string, format Format) (*Source, error) {
	c, err := lookup(format)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Source{Path: path, Format: format, f: f, codec: c}, nil
}

// HasExactSize reports whether ExactSize can resolve the size before streaming.
func (s *Source) HasExactSize() bool {
	return s.codec.exactSize != nil
}

// ExactSize resolves the uncompressed payload size using the format-specific
// strategy. The read position is reset to the start afterwards.
func (s *Source) ExactSize() (int64, error) {
	if s.codec.exactSize == nil {
		return 0, fmt.Errorf("format %v has no exact size strategy", s.Format)
	}
	n, err := s.codec.exactSize(s.f)
	if err != nil {
		return 0, fmt.Errorf("unable to resolve size of '%v': %w", s.Path, err)
	}
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("unable to rewind '%v': %w", s.Path, err)
	}
	return n, nil
}

// Reader returns the decoded byte stream starting at byte 0 of the image.
func (s *Source) Reader() (io.ReadCloser, error) {
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("unable to rewind '%v': %w", s.Path, err)
	}
	return NewReader(s.Format, bufio.NewReaderSize(s.f, readBufferSize))
}

func (s *Source) Close() error {
	return s.f.Close()
}
