//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealOutput drives an LED through the Linux GPIO character device.
type RealOutput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealOutput requests pin on the named chip as an output, driven low,
// with bias disabled and no edge detection. Driver errors are returned as is.
func NewRealOutput(chipName string, pin int) (*RealOutput, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, err
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0), gpiocdev.WithBiasDisabled)
	if err != nil {
		chip.Close()
		return nil, err
	}

	return &RealOutput{chip: chip, line: line}, nil
}

// Set drives the line. Nothing is cached; every call goes to the kernel.
func (o *RealOutput) Set(level bool) error {
	v := 0
	if level {
		v = 1
	}
	return o.line.SetValue(v)
}

// Close reverts the line to an input before releasing it so the LED is not
// left driven after the daemon exits.
func (o *RealOutput) Close() error {
	var errs []error

	if o.line != nil {
		if err := o.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure output pin: %w", err))
		}
		if err := o.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output pin: %w", err))
		}
	}
	if o.chip != nil {
		if err := o.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealInterrupt watches the expander's open-drain INT line.
type RealInterrupt struct {
	line *gpiocdev.Line
}

// NewRealInterrupt requests pin as an input with pull-up and calls handler on
// every falling edge. The handler runs on the gpiocdev event goroutine, so it
// must not block for long.
func NewRealInterrupt(chipName string, pin int, handler func()) (*RealInterrupt, error) {
	line, err := gpiocdev.RequestLine(chipName, pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			handler()
		}))
	if err != nil {
		return nil, fmt.Errorf("request interrupt pin %d: %w", pin, err)
	}
	return &RealInterrupt{line: line}, nil
}

// Close stops edge detection and releases the line.
func (i *RealInterrupt) Close() error {
	if err := i.line.Close(); err != nil {
		return fmt.Errorf("close interrupt pin: %w", err)
	}
	return nil
}
