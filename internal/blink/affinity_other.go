//go:build !linux

package blink

import "errors"

func pinThread(cpu int) (func() bool, error) {
	return nil, errors.New("cpu pinning not supported on this platform")
}
