package sparsefile

import (
	"os"

	"golang.org/x/sys/unix"
)

func syncData(f *os.File) error {
	if err := unix.Fdatasync(int(f.Fd())); err != nil {
		return os.NewSyscallError("fdatasync", err)
	}
	return nil
}
