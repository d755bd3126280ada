package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisk struct {
	name      string
	sectors   string
	removable string
	model     string
	uevent    string
	usb       bool
}

func makeSysfs(t *testing.T, disks ...fakeDisk) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "block"), 0o755))
	for _, d := range disks {
		dir := filepath.Join(root, "devices", "pci0000:00", d.name)
		if d.usb {
			dir = filepath.Join(root, "devices", "pci0000:00", "usb1", "1-1", d.name)
		}
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "device"), 0o755))
		write := func(name, content string) {
			if content != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content+"\n"), 0o644))
			}
		}
		write("size", d.sectors)
		write("removable", d.removable)
		write("uevent", d.uevent)
		write(filepath.Join("device", "model"), d.model)
		require.NoError(t, os.Symlink(dir, filepath.Join(root, "block", d.name)))
	}
	return root
}

func quietLog(string, ...any) {}

func TestSysfsEnumerator(t *testing.T) {
	root := makeSysfs(t,
		fakeDisk{name: "sda", sectors: "1000215216", removable: "0", model: "Samsung SSD 860",
			uevent: "MAJOR=8\nMINOR=0\nDEVNAME=sda\nDEVTYPE=disk"},
		fakeDisk{name: "sdb", sectors: "62521344", removable: "1", model: "Cruzer Blade", usb: true,
			uevent: "DEVNAME=sdb\nDEVTYPE=disk"},
		fakeDisk{name: "mmcblk0", sectors: "31116288", removable: "0",
			uevent: "DEVNAME=mmcblk0\nDEVTYPE=disk"},
		fakeDisk{name: "nvme0n1", sectors: "2000409264", removable: "0", model: "WD SN770"},
		fakeDisk{name: "sr0", sectors: "2097151", removable: "1"},
		fakeDisk{name: "loop0", sectors: "1024"},
		fakeDisk{name: "sdc", sectors: "0", removable: "1"},
		fakeDisk{name: "sdd", sectors: "not-a-number"},
	)

	devices, err := List(WithSysfsRoot(root), WithDevRoot("/dev"), WithLogFunction(quietLog))
	require.NoError(t, err)
	require.Len(t, devices, 4)

	assert.Equal(t, Descriptor{
		Path:        "/dev/mmcblk0",
		DisplayName: "/dev/mmcblk0 (16 GB, sd-card)",
		HumanSize:   "16 GB",
		Category:    CategorySDCard,
		SizeBytes:   31116288 * 512,
	}, devices[0])

	assert.Equal(t, "/dev/nvme0n1", devices[1].Path)
	assert.Equal(t, CategoryNVMe, devices[1].Category)
	assert.Equal(t, "WD SN770", devices[1].Name)

	assert.Equal(t, "/dev/sda", devices[2].Path)
	assert.Equal(t, CategoryInternal, devices[2].Category)
	assert.Equal(t, "Samsung SSD 860 - /dev/sda (512 GB, internal)", devices[2].DisplayName)

	assert.Equal(t, "/dev/sdb", devices[3].Path)
	assert.Equal(t, CategoryUSB, devices[3].Category)
	assert.EqualValues(t, 62521344*512, devices[3].SizeBytes)
}

func TestSysfsEnumerator_SkipsPartitions(t *testing.T) {
	root := makeSysfs(t,
		fakeDisk{name: "sde", sectors: "2048", removable: "1", uevent: "DEVNAME=sde1\nDEVTYPE=partition"},
	)
	devices, err := List(WithSysfsRoot(root), WithLogFunction(quietLog))
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestSysfsEnumerator_MissingRoot(t *testing.T) {
	_, err := List(WithSysfsRoot(filepath.Join(t.TempDir(), "nope")))
	require.ErrorIs(t, err, os.ErrNotExist)
}
