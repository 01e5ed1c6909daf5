package status

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Toggle        string     `json:"toggle"`
	LED           string     `json:"led"`
	BlinkPhase    string     `json:"blink_phase,omitempty"`
	Ready         bool       `json:"ready"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"dispatch_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of dispatch counts.
type CountsJSON struct {
	Dispatches int `json:"dispatches"`
	Toggles    int `json:"toggles"`
	LEDWrites  int `json:"led_writes"`
	Ignored    int `json:"ignored"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip     string `json:"chip"`
	LEDPin   int    `json:"led_pin"`
	IntPin   int    `json:"int_pin"`
	I2CBus   string `json:"i2c_bus"`
	Address  string `json:"address"`
	Mask     string `json:"mask"`
	SettleMs int64  `json:"settle_ms"`
	BlinkMs  int64  `json:"blink_ms"`
	Broker   string `json:"broker"`
	HTTPAddr string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	toggle := string(snap.Toggle)
	if toggle == "" {
		toggle = "UNKNOWN"
	}
	led := string(snap.LED)
	if led == "" {
		led = "UNKNOWN"
	}

	return StatusInner{
		Toggle:        toggle,
		LED:           led,
		BlinkPhase:    snap.BlinkPhase,
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Dispatches: snap.Counts.Dispatches,
			Toggles:    snap.Counts.Toggles,
			LEDWrites:  snap.Counts.LEDWrites,
			Ignored:    snap.Counts.Ignored,
		},
		Config: ConfigJSON{
			Chip:     snap.Config.Chip,
			LEDPin:   snap.Config.LEDPin,
			IntPin:   snap.Config.IntPin,
			I2CBus:   snap.Config.I2CBus,
			Address:  fmt.Sprintf("0x%02x", snap.Config.Address),
			Mask:     fmt.Sprintf("0b%016b", snap.Config.Mask),
			SettleMs: snap.Config.SettleMs,
			BlinkMs:  snap.Config.BlinkMs,
			Broker:   snap.Config.Broker,
			HTTPAddr: snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
