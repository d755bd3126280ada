package device

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"unsafe"

	"golang.org/x/sys/unix"
)

// from <sys/disk.h>
const (
	dkiocGetBlockSize  = 0x40046418
	dkiocGetBlockCount = 0x40086419
)

var wholeDisk = regexp.MustCompile(`^disk[0-9]+$`)

type ioctlEnumerator struct {
	opts *options
}

func newPlatformEnumerator(opts *options) Enumerator {
	return &ioctlEnumerator{opts: opts}
}

func (e *ioctlEnumerator) Enumerate() ([]Descriptor, error) {
	entries, err := os.ReadDir(e.opts.devRoot)
	if err != nil {
		return nil, fmt.Errorf("unable to list '%v': %w", e.opts.devRoot, err)
	}
	var res []Descriptor
	for _, entry := range entries {
		if !wholeDisk.MatchString(entry.Name()) {
			continue
		}
		path := filepath.Join(e.opts.devRoot, entry.Name())
		size, err := diskSize(path)
		if err != nil {
			e.opts.printf("skipping disk '%v': %v\n", path, err)
			continue
		}
		category := CategoryUnknown
		if entry.Name() == "disk0" {
			category = CategoryInternal
		}
		res = append(res, NewDescriptor(path, entry.Name(), size, category))
	}
	return res, nil
}

func diskSize(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	var blockSize uint32
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), dkiocGetBlockSize, uintptr(unsafe.Pointer(&blockSize))); errno != 0 {
		return 0, fmt.Errorf("unable to get block size: %w", errno)
	}
	var blockCount uint64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), dkiocGetBlockCount, uintptr(unsafe.Pointer(&blockCount))); errno != 0 {
		return 0, fmt.Errorf("unable to get block count: %w", errno)
	}
	return blockCount * uint64(blockSize), nil
}
