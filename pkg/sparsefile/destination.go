package sparsefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Destination is one target of a flash operation: a block device or a
// regular file, written sequentially through a buffer.
type Destination interface {
	io.Writer
	io.Seeker
	Name() string
	// Flush hands buffered bytes to the operating system.
	Flush() error
	// SyncData flushes and makes file content durable, without metadata.
	SyncData() error
	// Sync flushes and makes content and metadata durable.
	Sync() error
	Close() error
}

// File is a Destination backed by an *os.File.
type File struct {
	f       *os.File
	w       *bufio.Writer
	regular bool
	pos     int64
}

var _ Destination = (*File)(nil)

// OpenFile opens path for writing. Regular files are created or truncated so
// skipped zero regions read back as zeroes; devices are opened as they are.
func OpenFile(path string, bufferSize int) (*File, error) {
	regular := true
	fi, err := os.Stat(path)
	switch {
	case err == nil:
		regular = fi.Mode().IsRegular()
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("unable to stat destination '%v': %w", path, err)
	}

	flags := os.O_WRONLY
	if regular {
		flags |= os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open destination '%v': %w", path, err)
	}
	return &File{
		f:       f,
		w:       bufio.NewWriterSize(f, bufferSize),
		regular: regular,
	}, nil
}

func (d *File) Name() string {
	return d.f.Name()
}

func (d *File) Write(p []byte) (int, error) {
	n, err := d.w.Write(p)
	d.pos += int64(n)
	return n, err
}

// Seek flushes pending bytes first so the file offset matches the logical one.
func (d *File) Seek(offset int64, whence int) (int64, error) {
	if err := d.w.Flush(); err != nil {
		return d.pos, err
	}
	pos, err := d.f.Seek(offset, whence)
	if err != nil {
		return d.pos, err
	}
	d.pos = pos
	return pos, nil
}

func (d *File) Flush() error {
	return d.w.Flush()
}

func (d *File) SyncData() error {
	if err := d.w.Flush(); err != nil {
		return err
	}
	return syncData(d.f)
}

// Sync extends a regular file to the current position before syncing, since
// a run of skipped zero chunks at the end leaves the file short.
func (d *File) Sync() error {
	if err := d.w.Flush(); err != nil {
		return err
	}
	if d.regular {
		fi, err := d.f.Stat()
		if err != nil {
			return err
		}
		if fi.Size() < d.pos {
			if err := d.f.Truncate(d.pos); err != nil {
				return fmt.Errorf("unable to extend '%v' to %d bytes: %w", d.Name(), d.pos, err)
			}
		}
	}
	return d.f.Sync()
}

func (d *File) Close() error {
	return d.f.Close()
}
