// Package device lists block devices that can be flashed. The flash engine
// only takes paths; this package exists for front-ends that let a user pick.
package device

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
)

var ErrUnsupported = errors.New("device enumeration is not supported on this platform")

type Category string

const (
	CategoryUSB       Category = "usb"
	CategorySDCard    Category = "sd-card"
	CategoryNVMe      Category = "nvme"
	CategoryRemovable Category = "removable"
	CategoryInternal  Category = "internal"
	CategoryUnknown   Category = "unknown"
)

type Descriptor struct {
	Path        string   `json:"path" yaml:"path"`
	Name        string   `json:"name" yaml:"name"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	HumanSize   string   `json:"human_size" yaml:"human_size"`
	Category    Category `json:"category" yaml:"category"`
	SizeBytes   uint64   `json:"size_bytes" yaml:"size_bytes"`
}

func NewDescriptor(path, name string, size uint64, category Category) Descriptor {
	d := Descriptor{
		Path:      path,
		Name:      strings.TrimSpace(name),
		HumanSize: humanize.Bytes(size),
		Category:  category,
		SizeBytes: size,
	}
	if d.Name == "" {
		d.DisplayName = fmt.Sprintf("%s (%s, %s)", d.Path, d.HumanSize, d.Category)
	} else {
		d.DisplayName = fmt.Sprintf("%s - %s (%s, %s)", d.Name, d.Path, d.HumanSize, d.Category)
	}
	return d
}

type Enumerator interface {
	Enumerate() ([]Descriptor, error)
}

type options struct {
	sysfsRoot string
	devRoot   string
	printf    func(fmt string, argv ...any)
}

type Option func(opts *options)

func makeOptions(opts ...Option) *options {
	res := &options{
		sysfsRoot: "/sys",
		devRoot:   "/dev",
		printf:    log.Printf,
	}
	for _, o := range opts {
		o(res)
	}
	return res
}

// WithSysfsRoot points the linux enumerator at another sysfs mount.
func WithSysfsRoot(root string) Option {
	return func(o *options) {
		o.sysfsRoot = root
	}
}

func WithDevRoot(root string) Option {
	return func(o *options) {
		o.devRoot = root
	}
}

func WithLogFunction(log func(fmt string, args ...any)) Option {
	return func(o *options) {
		o.printf = log
	}
}

// NewEnumerator returns the enumerator for the running platform.
func NewEnumerator(opt ...Option) Enumerator {
	return newPlatformEnumerator(makeOptions(opt...))
}

// List enumerates devices on the running platform, sorted by path.
func List(opt ...Option) ([]Descriptor, error) {
	devices, err := NewEnumerator(opt...).Enumerate()
	if err != nil {
		return nil, err
	}
	slices.SortFunc(devices, func(a, b Descriptor) int {
		return strings.Compare(a.Path, b.Path)
	})
	return devices, nil
}
