package gpio

import "errors"

// ErrClosed is returned by FakeOutput.Set after Close.
var ErrClosed = errors.New("gpio: line closed")

// FakeOutput is a test double that records every level it is driven to.
type FakeOutput struct {
	// Levels contains every level passed to Set, in order.
	Levels []bool

	// SetError, if set, will be returned by Set() and the level is not recorded.
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeOutput creates a FakeOutput with no recorded levels.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the level.
func (f *FakeOutput) Set(level bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	if f.Closed {
		return ErrClosed
	}
	f.Levels = append(f.Levels, level)
	return nil
}

// Last returns the most recently set level and whether any level was set.
func (f *FakeOutput) Last() (bool, bool) {
	if len(f.Levels) == 0 {
		return false, false
	}
	return f.Levels[len(f.Levels)-1], true
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded levels and reopens the output.
func (f *FakeOutput) Reset() {
	f.Levels = nil
	f.Closed = false
	f.SetError = nil
}
