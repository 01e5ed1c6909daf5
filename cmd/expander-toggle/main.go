// Command expander-toggle toggles an LED from a button on an I2C GPIO expander
// and blinks two expander outputs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sweeney/expander-toggle/internal/blink"
	"github.com/sweeney/expander-toggle/internal/expander"
	"github.com/sweeney/expander-toggle/internal/gpio"
	"github.com/sweeney/expander-toggle/internal/logic"
	"github.com/sweeney/expander-toggle/internal/mqtt"
	"github.com/sweeney/expander-toggle/internal/status"
	"github.com/sweeney/expander-toggle/internal/web"
)

// DefaultSettle is the pause between registering the expander and configuring
// it. The chip misses the configuration write without it.
const DefaultSettle = 10 * time.Millisecond

// eventBuffer is the capacity of the expander event channel.
const eventBuffer = 16

type config struct {
	chip     string
	ledPin   int
	intPin   int
	i2cBus   string
	addr     uint16
	mask     uint16
	settle   time.Duration
	blink    time.Duration
	blinkCPU int
	broker   string
	httpAddr string
}

func main() {
	chip := flag.String("chip", gpio.DefaultChip, "GPIO chip for the LED and interrupt lines")
	ledPin := flag.Int("led-pin", gpio.DefaultPinLED, "line offset of the LED output")
	intPin := flag.Int("int-pin", gpio.DefaultPinINT, "line offset wired to the expander INT pin")
	i2cBus := flag.String("i2c-bus", "", "I2C bus name or number (empty selects the first bus)")
	addr := flag.Uint("addr", uint(expander.DefaultAddress), "expander 7-bit I2C address")
	mask := flag.Uint("mask", uint(expander.DefaultMask), "expander direction mask (set bit = input)")
	settle := flag.Duration("settle", DefaultSettle, "delay between expander registration and configuration")
	interval := flag.Duration("blink", blink.DefaultInterval, "blink phase duration")
	blinkCPU := flag.Int("blink-cpu", blink.DefaultCPU, "core the blink thread is pinned to (-1 to leave unpinned)")
	broker := flag.String("broker", "", "MQTT broker address (empty to disable)")
	httpAddr := flag.String("http", "", "HTTP status address (empty to disable)")

	flag.Parse()

	cfg, err := newConfig(*chip, *ledPin, *intPin, *i2cBus, *addr, *mask, *settle, *interval, *blinkCPU, *broker, *httpAddr)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func newConfig(chip string, ledPin, intPin int, i2cBus string, addr, mask uint, settle, interval time.Duration, blinkCPU int, broker, httpAddr string) (config, error) {
	if addr > 0x7F {
		return config{}, fmt.Errorf("address 0x%x is not a 7-bit I2C address", addr)
	}
	if mask > 0xFFFF {
		return config{}, fmt.Errorf("mask 0x%x is wider than 16 bits", mask)
	}
	if interval <= 0 {
		return config{}, fmt.Errorf("blink interval must be positive, got %v", interval)
	}
	if blinkCPU < blink.NoCPU {
		return config{}, fmt.Errorf("blink cpu must be %d or a core number, got %d", blink.NoCPU, blinkCPU)
	}
	for _, p := range []expander.Pin{logic.PinBlinkA, logic.PinBlinkB} {
		if uint16(mask)&p.Mask() != 0 {
			return config{}, fmt.Errorf("mask 0b%016b makes blink pin %s an input", mask, p)
		}
	}
	return config{
		chip:     chip,
		ledPin:   ledPin,
		intPin:   intPin,
		i2cBus:   i2cBus,
		addr:     uint16(addr),
		mask:     uint16(mask),
		settle:   settle,
		blink:    interval,
		blinkCPU: blinkCPU,
		broker:   broker,
		httpAddr: httpAddr,
	}, nil
}

// hardware is what the startup sequence needs from the platform.
type hardware struct {
	initLED  func() (gpio.Output, error)
	register func(events chan<- expander.Change) (expander.Device, error)
	sleep    func(time.Duration)
}

// system is the initialized hardware.
type system struct {
	led    gpio.Output
	dev    expander.Device
	events chan expander.Change
}

func (s *system) Close() {
	if err := s.dev.Close(); err != nil {
		log.Printf("close expander: %v", err)
	}
	if err := s.led.Close(); err != nil {
		log.Printf("close led: %v", err)
	}
}

// startup brings the hardware up in order: LED output, expander registration,
// settling delay, expander configuration. Any failure aborts; nothing is retried.
func startup(hw hardware, settle time.Duration, mask uint16) (*system, error) {
	led, err := hw.initLED()
	if err != nil {
		return nil, fmt.Errorf("init led: %w", err)
	}

	events := make(chan expander.Change, eventBuffer)
	dev, err := hw.register(events)
	if err != nil {
		led.Close()
		return nil, fmt.Errorf("register expander: %w", err)
	}

	hw.sleep(settle)

	if err := dev.Configure(mask); err != nil {
		dev.Close()
		led.Close()
		return nil, fmt.Errorf("configure expander: %w", err)
	}

	return &system{led: led, dev: dev, events: events}, nil
}

func run(cfg config) error {
	bus, err := expander.OpenBus(cfg.i2cBus)
	if err != nil {
		return err
	}
	defer bus.Close()

	var irq *gpio.RealInterrupt
	hw := hardware{
		initLED: func() (gpio.Output, error) {
			return gpio.NewRealOutput(cfg.chip, cfg.ledPin)
		},
		register: func(events chan<- expander.Change) (expander.Device, error) {
			dev, err := expander.Register(bus, cfg.addr, events)
			if err != nil {
				return nil, err
			}
			irq, err = gpio.NewRealInterrupt(cfg.chip, cfg.intPin, dev.HandleInterrupt)
			if err != nil {
				return nil, err
			}
			return dev, nil
		},
		sleep: time.Sleep,
	}

	sys, err := startup(hw, cfg.settle, cfg.mask)
	if err != nil {
		if irq != nil {
			irq.Close()
		}
		return err
	}
	defer sys.Close()
	defer irq.Close()
	log.Printf("expander 0x%02x initialized: mask=0b%016b", cfg.addr, cfg.mask)

	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:     cfg.chip,
		LEDPin:   cfg.ledPin,
		IntPin:   cfg.intPin,
		I2CBus:   bus.String(),
		Address:  cfg.addr,
		Mask:     cfg.mask,
		SettleMs: cfg.settle.Milliseconds(),
		BlinkMs:  cfg.blink.Milliseconds(),
		Broker:   cfg.broker,
		HTTPAddr: cfg.httpAddr,
	})
	tracker.SetReady(true)

	// Optional MQTT publishing
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		publisher, mqttStatus = p, p
		tracker.SetMQTTConnected(p.IsConnected())

		startupEvent := mqtt.SystemEvent{
			Timestamp:  time.Now(),
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Optional HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blinker := blink.New(sys.dev, logic.PinBlinkA, logic.PinBlinkB, cfg.blink)
	blinker.SetCPU(cfg.blinkCPU)
	blinker.OnPhase(func(p blink.Phase) { tracker.SetBlinkPhase(p.String()) })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		blinker.Run(ctx)
	}()

	log.Printf("started: led=%s:%d int=%s:%d blink=%v cpu=%d broker=%q", cfg.chip, cfg.ledPin, cfg.chip, cfg.intPin, cfg.blink, cfg.blinkCPU, cfg.broker)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	err = runLoop(sys.events, sys.led, logic.NewDispatcher(), publisher, mqttStatus, tracker, time.Now, sigCh)

	cancel()
	wg.Wait()
	return err
}

// runLoop is the single consumer of expander changes. It owns the dispatcher,
// so the toggle state is only ever touched from this goroutine.
func runLoop(events <-chan expander.Change, led gpio.Output, d *logic.Dispatcher, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, sig <-chan os.Signal) error {
	// Last level the LED line actually took; empty until a write succeeds.
	var ledState logic.State
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if publisher != nil {
				publishShutdown(publisher, mqttStatus, tracker, s, now())
			}
			return nil

		case c, ok := <-events:
			if !ok {
				log.Printf("expander event channel closed")
				return nil
			}
			if a, applied := dispatch(c, led, d, publisher, now()); applied {
				ledState = logic.StateOf(a.LED)
			}

			if tracker != nil {
				tracker.Update(logic.StateOf(d.Toggle()), ledState, d.CountsSnapshot())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// dispatch handles one expander change and reports whether it drove the LED.
// LED and publish errors are logged and do not stop the loop. An LED level the
// line never reached is not published.
func dispatch(c expander.Change, led gpio.Output, d *logic.Dispatcher, publisher mqtt.Publisher, t time.Time) (logic.Action, bool) {
	a := d.Handle(c)
	log.Printf("expander interrupt: mask=0x%04x pin=%s level=%s", c.Mask, a.Pin, c.Level)

	applied := false
	switch a.Type {
	case logic.ActionToggle:
		log.Printf("button toggled, new state: %s", logic.StateOf(a.Toggle))
	case logic.ActionLED:
		if err := led.Set(a.LED); err != nil {
			log.Printf("led write error: %v", err)
			return a, false
		}
		applied = true
		log.Printf("led switched to: %s", logic.StateOf(a.LED))
	}

	if publisher != nil {
		if event, ok := logic.EventFor(a, t); ok {
			if err := publisher.Publish(event); err != nil {
				log.Printf("publish error: %v", err)
			}
		}
	}
	return a, applied
}

func publishShutdown(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, s os.Signal, t time.Time) {
	signalName := "UNKNOWN"
	switch s {
	case syscall.SIGINT:
		signalName = "SIGINT"
	case syscall.SIGTERM:
		signalName = "SIGTERM"
	}

	event := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}
