// Package gpio provides host GPIO access with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Output drives a single digital output line.
type Output interface {
	// Set drives the line to the requested level (true = high).
	// Errors from the driver are returned to the caller.
	Set(level bool) error

	// Close releases GPIO resources.
	Close() error
}

// Default line offsets on gpiochip0.
const (
	DefaultChip   = "gpiochip0"
	DefaultPinLED = 4  // LED output
	DefaultPinINT = 17 // expander INT, active low
)
