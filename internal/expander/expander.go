// Package expander drives a 16-pin I2C GPIO expander with an interrupt line.
// The real implementation talks to a TCA9555 (or register-compatible PCA9555)
// over periph.io I2C. The fake implementation allows testing without hardware.
package expander

import (
	"errors"
	"fmt"
)

// DefaultAddress is the 7-bit address with A0..A2 tied low.
const DefaultAddress uint16 = 0x20

// DefaultMask configures IO1..IO14 as inputs and IO15, IO16 as outputs.
const DefaultMask uint16 = 0b0011111111111111

var (
	ErrInvalidPin     = errors.New("expander: invalid pin")
	ErrInvalidAddress = errors.New("expander: invalid address")
	ErrNotConfigured  = errors.New("expander: not configured")
	ErrPinIsInput     = errors.New("expander: pin configured as input")
)

// Pin names one of the 16 expander pins. Numbering starts at IO1, which is
// bit 0 of the port registers.
type Pin uint8

const (
	IO1 Pin = iota + 1
	IO2
	IO3
	IO4
	IO5
	IO6
	IO7
	IO8
	IO9
	IO10
	IO11
	IO12
	IO13
	IO14
	IO15
	IO16
)

// NumPins is the width of the expander.
const NumPins = 16

// PinFromIndex maps a bit index (0..15) to its Pin.
func PinFromIndex(i int) (Pin, error) {
	if i < 0 || i >= NumPins {
		return 0, fmt.Errorf("%w: index %d", ErrInvalidPin, i)
	}
	return Pin(i + 1), nil
}

// Valid reports whether p is one of IO1..IO16.
func (p Pin) Valid() bool {
	return p >= IO1 && p <= IO16
}

// Index returns the bit index of p in the port registers.
func (p Pin) Index() int {
	return int(p) - 1
}

// Mask returns the single-bit register mask for p.
func (p Pin) Mask() uint16 {
	return 1 << p.Index()
}

func (p Pin) String() string {
	return fmt.Sprintf("IO%d", uint8(p))
}

// Level is the binary level of a pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// Change is a pin-change notification: the mask of input pins whose level
// changed since the last read, and the new level of the lowest changed pin.
type Change struct {
	Mask  uint16
	Level Level
}

// Device is an attached expander chip.
type Device interface {
	// Configure sets pin directions. A set bit makes the pin an input that
	// raises interrupts; a clear bit makes it an output.
	Configure(mask uint16) error

	// Write sets the level of an output pin.
	Write(pin Pin, level Level) error

	// Close returns all pins to inputs.
	Close() error
}
