// Package status provides a thread-safe status tracker for the expander-toggle daemon.
// It is written by the dispatch loop and blink task, and read by HTTP handlers
// and MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/expander-toggle/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Chip     string
	LEDPin   int
	IntPin   int
	I2CBus   string
	Address  uint16
	Mask     uint16
	SettleMs int64
	BlinkMs  int64
	Broker   string
	HTTPAddr string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Toggle        logic.State
	LED           logic.State // empty until the LED line is first driven
	BlinkPhase    string
	Ready         bool // expander configured
	Counts        logic.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
// The toggle state starts OFF.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Toggle:    logic.StateOff,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets toggle and LED state and dispatch counts.
// Called from the dispatch loop after every change.
func (t *Tracker) Update(toggle, led logic.State, counts logic.Counts) {
	t.mu.Lock()
	t.snap.Toggle = toggle
	t.snap.LED = led
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetBlinkPhase records the blink phase. Called from the blink goroutine.
func (t *Tracker) SetBlinkPhase(phase string) {
	t.mu.Lock()
	t.snap.BlinkPhase = phase
	t.mu.Unlock()
}

// SetReady marks the expander as configured.
func (t *Tracker) SetReady(ready bool) {
	t.mu.Lock()
	t.snap.Ready = ready
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
