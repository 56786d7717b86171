//go:build !linux

package watch

import "context"

// Start always fails outside linux.
func (m *Monitor) Start(context.Context) error {
	if m == nil {
		return nil
	}
	return ErrUnsupported
}
