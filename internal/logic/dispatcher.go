package logic

import (
	"math/bits"
	"time"

	"github.com/sweeney/expander-toggle/internal/expander"
)

// LowestPin returns the lowest-numbered pin set in mask. Other set bits are
// ignored, so simultaneous edges on several pins dispatch as one pin only.
func LowestPin(mask uint16) (expander.Pin, bool) {
	if mask == 0 {
		return 0, false
	}
	p, err := expander.PinFromIndex(bits.TrailingZeros16(mask))
	if err != nil {
		return 0, false
	}
	return p, true
}

// LEDLevel maps a mirror-pin level onto the LED. With the toggle off the LED
// is the inverse of the pin; with it on the LED follows the pin.
func LEDLevel(level expander.Level, toggle bool) bool {
	if level {
		return toggle
	}
	return !toggle
}

// Dispatcher owns the toggle state and turns pin changes into actions.
// Not safe for concurrent use: a single dispatch loop owns it.
//
// Edges are not debounced. A bouncing button produces one toggle per edge.
type Dispatcher struct {
	toggle bool
	led    bool
	ledSet bool
	counts Counts
}

// NewDispatcher creates a Dispatcher with the toggle state off.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Handle dispatches one change.
func (d *Dispatcher) Handle(c expander.Change) Action {
	d.counts.Dispatches++

	pin, ok := LowestPin(c.Mask)
	a := Action{Pin: pin, Level: c.Level}
	if !ok {
		d.counts.Ignored++
		a.Toggle = d.toggle
		return a
	}

	switch pin {
	case PinButton:
		if c.Level {
			d.toggle = !d.toggle
			a.Type = ActionToggle
			d.counts.Toggles++
		} else {
			d.counts.Ignored++
		}
	case PinLEDMirror:
		d.led = LEDLevel(c.Level, d.toggle)
		d.ledSet = true
		a.Type = ActionLED
		a.LED = d.led
		d.counts.LEDWrites++
	default:
		d.counts.Ignored++
	}

	a.Toggle = d.toggle
	return a
}

// Toggle returns the current toggle state.
func (d *Dispatcher) Toggle() bool {
	return d.toggle
}

// LED returns the last LED level requested and whether one has been requested.
func (d *Dispatcher) LED() (bool, bool) {
	return d.led, d.ledSet
}

// CountsSnapshot returns a copy of the dispatch counters.
func (d *Dispatcher) CountsSnapshot() Counts {
	return d.counts
}

// EventFor converts an action into a publishable event. ActionNone yields no event.
func EventFor(a Action, t time.Time) (Event, bool) {
	e := Event{
		Timestamp: t,
		Pin:       a.Pin,
		Toggle:    StateOf(a.Toggle),
	}
	switch a.Type {
	case ActionToggle:
		if a.Toggle {
			e.Type = EventToggleOn
		} else {
			e.Type = EventToggleOff
		}
	case ActionLED:
		e.LED = StateOf(a.LED)
		if a.LED {
			e.Type = EventLEDOn
		} else {
			e.Type = EventLEDOff
		}
	default:
		return Event{}, false
	}
	return e, true
}
