// Package blink alternates two expander outputs on a fixed cadence.
package blink

import (
	"context"
	"log"
	"runtime"
	"time"

	"github.com/sweeney/expander-toggle/internal/expander"
)

// DefaultInterval is the time spent in each phase.
const DefaultInterval = time.Second

// DefaultCPU is the core the blink thread is pinned to. NoCPU leaves the
// thread free to run anywhere.
const (
	DefaultCPU = 0
	NoCPU      = -1
)

// Phase identifies which output is high.
type Phase int

const (
	PhaseA Phase = iota // A high, B low
	PhaseB              // A low, B high
)

func (p Phase) String() string {
	if p == PhaseB {
		return "B"
	}
	return "A"
}

// Blinker drives pin A and pin B as complements, switching every interval.
// It never looks at any other state.
type Blinker struct {
	dev      expander.Device
	pinA     expander.Pin
	pinB     expander.Pin
	interval time.Duration
	cpu      int

	after   func(time.Duration) <-chan time.Time
	onPhase func(Phase)
}

// New creates a Blinker. The pins must be configured as outputs on dev.
func New(dev expander.Device, pinA, pinB expander.Pin, interval time.Duration) *Blinker {
	return &Blinker{
		dev:      dev,
		pinA:     pinA,
		pinB:     pinB,
		interval: interval,
		cpu:      DefaultCPU,
		after:    time.After,
	}
}

// OnPhase registers fn to be called after each phase is driven.
func (b *Blinker) OnPhase(fn func(Phase)) {
	b.onPhase = fn
}

// SetCPU selects the core Run pins its thread to. NoCPU disables pinning.
func (b *Blinker) SetCPU(cpu int) {
	b.cpu = cpu
}

// Run blinks until ctx is done. Write errors are logged and the loop carries on.
// The goroutine stays locked to one OS thread, pinned to the configured core,
// for its lifetime. A failure to pin is logged and the blink runs unpinned.
func (b *Blinker) Run(ctx context.Context) error {
	runtime.LockOSThread()
	unlock := true
	defer func() {
		if unlock {
			runtime.UnlockOSThread()
		}
	}()

	if b.cpu >= 0 {
		restore, err := pinThread(b.cpu)
		if err != nil {
			log.Printf("blink: %v", err)
		} else {
			defer func() {
				// Leaving the thread locked makes the runtime discard it
				// when the goroutine exits.
				if !restore() {
					unlock = false
				}
			}()
		}
	}

	for {
		b.drive(PhaseA)
		if err := b.wait(ctx); err != nil {
			return err
		}
		b.drive(PhaseB)
		if err := b.wait(ctx); err != nil {
			return err
		}
	}
}

func (b *Blinker) drive(p Phase) {
	a := p == PhaseA
	if err := b.dev.Write(b.pinA, expander.Level(a)); err != nil {
		log.Printf("blink: write %s: %v", b.pinA, err)
	}
	if err := b.dev.Write(b.pinB, expander.Level(!a)); err != nil {
		log.Printf("blink: write %s: %v", b.pinB, err)
	}
	if b.onPhase != nil {
		b.onPhase(p)
	}
}

func (b *Blinker) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.after(b.interval):
		return nil
	}
}
