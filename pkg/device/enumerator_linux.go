package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
)

// sysfs always reports sizes in 512-byte units, whatever the logical block size.
const sysfsSectorSize = 512

var virtualPrefixes = []string{"loop", "ram", "zram", "dm-", "md", "sr", "nbd"}

type sysfsEnumerator struct {
	opts *options
}

func newPlatformEnumerator(opts *options) Enumerator {
	return &sysfsEnumerator{opts: opts}
}

func (e *sysfsEnumerator) Enumerate() ([]Descriptor, error) {
	blockDir := filepath.Join(e.opts.sysfsRoot, "block")
	entries, err := os.ReadDir(blockDir)
	if err != nil {
		return nil, fmt.Errorf("unable to list block devices in '%v': %w", blockDir, err)
	}
	res := make([]Descriptor, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if isVirtual(name) {
			continue
		}
		d, ok, err := e.describe(filepath.Join(blockDir, name), name)
		if err != nil {
			e.opts.printf("skipping block device '%v': %v\n", name, err)
			continue
		}
		if ok {
			res = append(res, d)
		}
	}
	return res, nil
}

func isVirtual(name string) bool {
	for _, p := range virtualPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func (e *sysfsEnumerator) describe(dir, name string) (Descriptor, bool, error) {
	sectors, err := readUint(filepath.Join(dir, "size"))
	if err != nil {
		return Descriptor{}, false, err
	}
	if sectors == 0 {
		return Descriptor{}, false, nil
	}

	devName := name
	if p, err := properties.LoadFile(filepath.Join(dir, "uevent"), properties.UTF8); err == nil {
		if t := p.GetString("DEVTYPE", "disk"); t != "disk" {
			return Descriptor{}, false, nil
		}
		devName = p.GetString("DEVNAME", name)
	}

	model, _ := readTrimmed(filepath.Join(dir, "device", "model"))
	removable, _ := readTrimmed(filepath.Join(dir, "removable"))
	category := categorize(dir, name, removable == "1")

	return NewDescriptor(filepath.Join(e.opts.devRoot, devName), model, sectors*sysfsSectorSize, category), true, nil
}

func categorize(dir, name string, removable bool) Category {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil && strings.Contains(resolved, "/usb") {
		return CategoryUSB
	}
	switch {
	case strings.HasPrefix(name, "mmcblk"):
		return CategorySDCard
	case strings.HasPrefix(name, "nvme"):
		return CategoryNVMe
	case removable:
		return CategoryRemovable
	default:
		return CategoryInternal
	}
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func readUint(path string) (uint64, error) {
	s, err := readTrimmed(path)
	if err != nil {
		return 0, fmt.Errorf("unable to read '%v': %w", path, err)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse '%v': %w", path, err)
	}
	return n, nil
}
