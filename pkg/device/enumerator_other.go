//go:build !linux && !darwin

package device

type unsupportedEnumerator struct{}

func newPlatformEnumerator(*options) Enumerator {
	return unsupportedEnumerator{}
}

func (unsupportedEnumerator) Enumerate() ([]Descriptor, error) {
	return nil, ErrUnsupported
}
