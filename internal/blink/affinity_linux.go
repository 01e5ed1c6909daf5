//go:build linux

package blink

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// pinThread binds the calling OS thread to cpu. The returned func restores
// the previous mask and reports whether it succeeded; a thread whose mask
// could not be restored must not go back to the scheduler.
func pinThread(cpu int) (func() bool, error) {
	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return nil, fmt.Errorf("get affinity: %w", err)
	}

	var set unix.CPUSet
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("pin to cpu %d: %w", cpu, err)
	}

	return func() bool {
		return unix.SchedSetaffinity(0, &prev) == nil
	}, nil
}
