//go:build !linux

package disc

import "context"

// DeviceReader is a placeholder on platforms without a TOC ioctl.
type DeviceReader struct{}

// NewDeviceReader returns the platform TOC reader.
func NewDeviceReader() TOCReader {
	return DeviceReader{}
}

// ReadTOC always returns ErrUnsupported.
func (DeviceReader) ReadTOC(context.Context, string) (TOC, error) {
	return TOC{}, ErrUnsupported
}
