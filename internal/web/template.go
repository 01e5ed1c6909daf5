package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/expander-toggle/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		switch {
		case days > 0:
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		case h > 0:
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		case m > 0:
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateClass": func(s string) string {
		switch s {
		case "ON":
			return "on"
		case "OFF":
			return "off"
		}
		return "unknown"
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Expander Toggle</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Expander Toggle</h1>

<h2>State</h2>
<table>
<tr><th>Toggle</th><td class="{{stateClass .Toggle}}">{{orUnknown .Toggle}}</td></tr>
<tr><th>LED</th><td class="{{stateClass .LED}}">{{orUnknown .LED}}</td></tr>
<tr><th>Blink phase</th><td>{{orUnknown .BlinkPhase}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Dispatch Counts</h2>
<table>
<tr><th>Dispatches</th><td>{{.Counts.Dispatches}}</td></tr>
<tr><th>Toggles</th><td>{{.Counts.Toggles}}</td></tr>
<tr><th>LED writes</th><td>{{.Counts.LEDWrites}}</td></tr>
<tr><th>Ignored</th><td>{{.Counts.Ignored}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>LED line</th><td>{{.Config.Chip}}:{{.Config.LEDPin}}</td></tr>
<tr><th>INT line</th><td>{{.Config.Chip}}:{{.Config.IntPin}}</td></tr>
<tr><th>Expander</th><td>{{.AddressHex}} on {{orUnknown .Config.I2CBus}}</td></tr>
<tr><th>Mask</th><td>{{.MaskBin}}</td></tr>
<tr><th>Blink</th><td>{{.Config.BlinkMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Toggle     string
		LED        string
		Uptime     time.Duration
		AddressHex string
		MaskBin    string
	}{
		Snapshot:   snap,
		Toggle:     string(snap.Toggle),
		LED:        string(snap.LED),
		Uptime:     snap.Uptime(),
		AddressHex: fmt.Sprintf("0x%02x", snap.Config.Address),
		MaskBin:    fmt.Sprintf("0b%016b", snap.Config.Mask),
	}
	return indexTmpl.Execute(w, data)
}
