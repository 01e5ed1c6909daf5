package expander

import (
	"fmt"
	"log"
	"math/bits"
	"sync"

	"periph.io/x/conn/v3/i2c"
)

// TCA9555 register map. Each register is a pair: port 0 (IO1..IO8) followed by
// port 1 (IO9..IO16). The chip auto-increments within a pair.
const (
	regInput  = 0x00
	regOutput = 0x02
	regConfig = 0x06
)

// TCA9555 is a 16-bit I2C expander with an open-drain interrupt output.
type TCA9555 struct {
	mu         sync.Mutex
	dev        *i2c.Dev
	events     chan<- Change
	configured bool
	inputMask  uint16
	output     uint16 // shadow of the output port
	prev       uint16 // input port at the last read
}

// Register attaches to the chip at addr on bus. Pin-change notifications are
// sent on events by HandleInterrupt; the caller wires HandleInterrupt to the
// host line connected to the chip's INT pin.
//
// The chip needs a short settling delay after Register before Configure.
func Register(bus i2c.Bus, addr uint16, events chan<- Change) (*TCA9555, error) {
	if addr < 0x20 || addr > 0x27 {
		return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidAddress, addr)
	}
	d := &TCA9555{
		dev:    &i2c.Dev{Bus: bus, Addr: addr},
		events: events,
	}
	// Probe: the configuration register reads back 0xFFFF after reset.
	if _, err := d.readPort(regConfig); err != nil {
		return nil, fmt.Errorf("probe expander 0x%02x: %w", addr, err)
	}
	return d, nil
}

// Configure sets pin directions and seeds the input snapshot used to detect
// changes. Outputs start low.
func (d *TCA9555) Configure(mask uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Latch output levels before switching direction so outputs come up low.
	if err := d.writePort(regOutput, d.output); err != nil {
		return fmt.Errorf("write output port: %w", err)
	}
	if err := d.writePort(regConfig, mask); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	cur, err := d.readPort(regInput)
	if err != nil {
		return fmt.Errorf("read input port: %w", err)
	}

	d.inputMask = mask
	d.prev = cur
	d.configured = true
	return nil
}

// Write sets an output pin.
func (d *TCA9555) Write(pin Pin, level Level) error {
	if !pin.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPin, uint8(pin))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.configured {
		return ErrNotConfigured
	}
	if d.inputMask&pin.Mask() != 0 {
		return fmt.Errorf("%w: %s", ErrPinIsInput, pin)
	}

	next := d.output &^ pin.Mask()
	if level {
		next |= pin.Mask()
	}
	if err := d.writePort(regOutput, next); err != nil {
		return fmt.Errorf("write %s: %w", pin, err)
	}
	d.output = next
	return nil
}

// Poll reads the input port and reports which input pins changed since the
// previous read. Reading the input port also clears the chip's interrupt.
// The returned Level is the new level of the lowest changed pin.
func (d *TCA9555) Poll() (Change, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.configured {
		return Change{}, false, ErrNotConfigured
	}

	cur, err := d.readPort(regInput)
	if err != nil {
		return Change{}, false, fmt.Errorf("read input port: %w", err)
	}

	changed := (cur ^ d.prev) & d.inputMask
	d.prev = cur
	if changed == 0 {
		return Change{}, false, nil
	}

	lowest := uint16(1) << bits.TrailingZeros16(changed)
	return Change{Mask: changed, Level: cur&lowest != 0}, true, nil
}

// HandleInterrupt polls the chip and forwards any change to the events
// channel. It runs on the interrupt watcher and never blocks: a change that
// does not fit in the channel is logged and dropped.
func (d *TCA9555) HandleInterrupt() {
	c, ok, err := d.Poll()
	if err != nil {
		log.Printf("expander: poll error: %v", err)
		return
	}
	if !ok || d.events == nil {
		return
	}
	select {
	case d.events <- c:
	default:
		log.Printf("expander: event queue full, dropping change mask=0x%04x", c.Mask)
	}
}

// Close returns every pin to input, the chip's reset state.
func (d *TCA9555) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.configured = false
	if err := d.writePort(regConfig, 0xFFFF); err != nil {
		return fmt.Errorf("reset config: %w", err)
	}
	return nil
}

func (d *TCA9555) readPort(reg byte) (uint16, error) {
	var r [2]byte
	if err := d.dev.Tx([]byte{reg}, r[:]); err != nil {
		return 0, err
	}
	return uint16(r[0]) | uint16(r[1])<<8, nil
}

func (d *TCA9555) writePort(reg byte, v uint16) error {
	return d.dev.Tx([]byte{reg, byte(v), byte(v >> 8)}, nil)
}

var _ Device = (*TCA9555)(nil)
