package expander

import "sync"

// PinWrite is one recorded call to FakeDevice.Write.
type PinWrite struct {
	Pin   Pin
	Level Level
}

// FakeDevice is a test double that records configuration and pin writes.
// It is safe for concurrent use so a blink goroutine can write while a test
// inspects it.
type FakeDevice struct {
	mu sync.Mutex

	configures []uint16
	writes     []PinWrite
	closed     bool

	// ConfigureError, if set, will be returned by Configure.
	ConfigureError error

	// WriteError, if set, will be returned by Write and the write is not recorded.
	WriteError error

	// OnWrite, if set, is called after every recorded write.
	OnWrite func(PinWrite)
}

// NewFakeDevice creates an unconfigured FakeDevice.
func NewFakeDevice() *FakeDevice {
	return &FakeDevice{}
}

// Configure records the mask.
func (f *FakeDevice) Configure(mask uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ConfigureError != nil {
		return f.ConfigureError
	}
	f.configures = append(f.configures, mask)
	return nil
}

// Write records the pin and level.
func (f *FakeDevice) Write(pin Pin, level Level) error {
	f.mu.Lock()
	if f.WriteError != nil {
		err := f.WriteError
		f.mu.Unlock()
		return err
	}
	w := PinWrite{Pin: pin, Level: level}
	f.writes = append(f.writes, w)
	hook := f.OnWrite
	f.mu.Unlock()

	if hook != nil {
		hook(w)
	}
	return nil
}

// Close marks the device as closed.
func (f *FakeDevice) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Configures returns a copy of every mask passed to Configure.
func (f *FakeDevice) Configures() []uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint16(nil), f.configures...)
}

// Writes returns a copy of every recorded write.
func (f *FakeDevice) Writes() []PinWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PinWrite(nil), f.writes...)
}

// Closed reports whether Close was called.
func (f *FakeDevice) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

var _ Device = (*FakeDevice)(nil)
