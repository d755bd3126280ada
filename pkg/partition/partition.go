// Package partition infers the total size of a disk image from the partition
// table found in its first sectors.
package partition

import (
	"bytes"
	"encoding/binary"
	"math"
)

const SectorSize = 512

const (
	mbrSignatureOffset = 510
	mbrEntriesOffset   = 446
	mbrEntrySize       = 16
	mbrEntryCount      = 4
	mbrLBAStart        = 8
	mbrSectorCount     = 12

	gptHeaderOffset = 512
	gptBackupLBA    = gptHeaderOffset + 32
)

var (
	mbrSignature = []byte{0x55, 0xaa}
	gptSignature = []byte("EFI PART")
)

// MinHeaderSize is enough bytes to hold both an MBR and a GPT header.
const MinHeaderSize = 1024

// InferMBR returns the byte offset just past the furthest partition of an MBR
// table. Entries with a zero start or a zero length are ignored.
func InferMBR(header []byte) (int64, bool) {
	if len(header) < mbrSignatureOffset+2 {
		return 0, false
	}
	if !bytes.Equal(header[mbrSignatureOffset:mbrSignatureOffset+2], mbrSignature) {
		return 0, false
	}
	var maxEnd uint64
	for i := 0; i < mbrEntryCount; i++ {
		entry := header[mbrEntriesOffset+i*mbrEntrySize:]
		start := binary.LittleEndian.Uint32(entry[mbrLBAStart:])
		count := binary.LittleEndian.Uint32(entry[mbrSectorCount:])
		if start == 0 || count == 0 {
			continue
		}
		maxEnd = max(maxEnd, uint64(start)+uint64(count))
	}
	if maxEnd == 0 {
		return 0, false
	}
	return int64(maxEnd * SectorSize), true
}

// InferGPT returns the image size implied by the backup header LBA of a GPT
// header located in LBA 1. The backup header sits in the last sector. A
// backup LBA whose byte size does not fit in an int64 is rejected.
func InferGPT(header []byte) (int64, bool) {
	if len(header) < gptBackupLBA+8 {
		return 0, false
	}
	if !bytes.Equal(header[gptHeaderOffset:gptHeaderOffset+len(gptSignature)], gptSignature) {
		return 0, false
	}
	backup := binary.LittleEndian.Uint64(header[gptBackupLBA:])
	if backup == 0 || backup >= math.MaxInt64/SectorSize {
		return 0, false
	}
	return int64((backup + 1) * SectorSize), true
}

// InferSize tries MBR first and GPT second.
func InferSize(header []byte) (int64, bool) {
	if n, ok := InferMBR(header); ok {
		return n, true
	}
	return InferGPT(header)
}
