// Package logic contains pure business logic for the button/LED mapping.
// This package has NO hardware dependencies (no GPIO, I2C, MQTT, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"time"

	"github.com/sweeney/expander-toggle/internal/expander"
)

// Expander pin assignments.
const (
	PinButton    = expander.IO1  // button input, toggles state on rising edge
	PinLEDMirror = expander.IO10 // input mirrored onto the host LED
	PinBlinkA    = expander.IO15 // blink output A
	PinBlinkB    = expander.IO16 // blink output B, complement of A
)

// State represents the logical toggle state or LED level for display.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// StateOf converts a boolean into a State.
func StateOf(on bool) State {
	if on {
		return StateOn
	}
	return StateOff
}

// ActionType describes what a dispatched change did.
type ActionType int

const (
	ActionNone   ActionType = iota // pin ignored, or button falling edge
	ActionToggle                   // toggle state inverted
	ActionLED                      // LED output must be driven to Action.LED
)

func (a ActionType) String() string {
	switch a {
	case ActionToggle:
		return "TOGGLE"
	case ActionLED:
		return "LED"
	default:
		return "NONE"
	}
}

// Action is the result of dispatching one Change.
type Action struct {
	Type   ActionType
	Pin    expander.Pin   // lowest changed pin; zero if the mask was empty
	Level  expander.Level // incoming level
	Toggle bool           // toggle state after the dispatch
	LED    bool           // LED level to drive (ActionLED only)
}

// EventType represents a published state change.
type EventType string

const (
	EventToggleOn  EventType = "TOGGLE_ON"
	EventToggleOff EventType = "TOGGLE_OFF"
	EventLEDOn     EventType = "LED_ON"
	EventLEDOff    EventType = "LED_OFF"
)

// Event represents a state change to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Pin       expander.Pin
	Toggle    State
	LED       State
}

// Counts tracks dispatch outcomes since startup.
type Counts struct {
	Dispatches int
	Toggles    int
	LEDWrites  int
	Ignored    int
}
