//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// NewRealOutput returns an error on non-Linux platforms.
func NewRealOutput(chipName string, pin int) (*RealOutput, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (o *RealOutput) Set(level bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (o *RealOutput) Close() error {
	return nil
}

// RealInterrupt is not available on non-Linux platforms.
type RealInterrupt struct{}

// NewRealInterrupt returns an error on non-Linux platforms.
func NewRealInterrupt(chipName string, pin int, handler func()) (*RealInterrupt, error) {
	return nil, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (i *RealInterrupt) Close() error {
	return nil
}
