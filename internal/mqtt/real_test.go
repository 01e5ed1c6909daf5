package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/expander-toggle/internal/expander"
	"github.com/sweeney/expander-toggle/internal/logic"
)

// doneToken is a paho.Token that has already completed.
type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }

func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type sent struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient stands in for a paho client. Methods the publisher does not use
// are left to the embedded nil interface.
type fakeClient struct {
	paho.Client

	mu         sync.Mutex
	open       bool
	publishErr error
	published  []sent

	// onCheck runs inside IsConnectionOpen before the state is read.
	onCheck func()
}

func (c *fakeClient) IsConnectionOpen() bool {
	if c.onCheck != nil {
		c.onCheck()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeClient) setOpen(open bool) {
	c.mu.Lock()
	c.open = open
	c.mu.Unlock()
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, sent{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return doneToken{err: c.publishErr}
}

func (c *fakeClient) sent() []sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sent(nil), c.published...)
}

func toggleEvent(on bool) logic.Event {
	typ := logic.EventToggleOff
	if on {
		typ = logic.EventToggleOn
	}
	return logic.Event{
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Type:      typ,
		Pin:       expander.IO1,
		Toggle:    logic.StateOf(on),
	}
}

func TestRealPublisherSendsDirectlyWhenConnected(t *testing.T) {
	c := &fakeClient{open: true}
	p := newPublisher(c)

	if err := p.Publish(toggleEvent(true)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got := c.sent()
	if len(got) != 1 {
		t.Fatalf("expected 1 message on the wire, got %d", len(got))
	}
	if got[0].topic != Topic || got[0].qos != 0 || got[0].retained {
		t.Errorf("unexpected message: %+v", got[0])
	}
	if p.outbox.size() != 0 {
		t.Errorf("nothing should be queued, got %d", p.outbox.size())
	}
}

func TestRealPublisherPublishError(t *testing.T) {
	c := &fakeClient{open: true, publishErr: errors.New("not connected")}
	p := newPublisher(c)

	if err := p.Publish(toggleEvent(true)); !errors.Is(err, c.publishErr) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}

func TestRealPublisherReplaysInOrderOnConnect(t *testing.T) {
	c := &fakeClient{}
	p := newPublisher(c)

	want := make([][]byte, 0, 3)
	for _, on := range []bool{true, false, true} {
		e := toggleEvent(on)
		if err := p.Publish(e); err != nil {
			t.Fatalf("Publish while offline: %v", err)
		}
		payload, _ := FormatPayload(e)
		want = append(want, payload)
	}
	sys := SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true}
	if err := p.PublishSystem(sys); err != nil {
		t.Fatalf("PublishSystem while offline: %v", err)
	}

	if got := c.sent(); len(got) != 0 {
		t.Fatalf("nothing should reach the wire while offline, got %d", len(got))
	}

	c.setOpen(true)
	p.onConnect(c)

	got := c.sent()
	if len(got) != 4 {
		t.Fatalf("expected 4 replayed messages, got %d", len(got))
	}
	for i, payload := range want {
		if string(got[i].payload) != string(payload) {
			t.Errorf("message %d out of order: got %s, want %s", i, got[i].payload, payload)
		}
	}
	if got[3].topic != TopicSystem || got[3].qos != 1 || !got[3].retained {
		t.Errorf("system message lost its options on replay: %+v", got[3])
	}
	if p.outbox.size() != 0 {
		t.Errorf("outbox should be empty after replay, got %d", p.outbox.size())
	}

	// A second connect has nothing left to replay.
	p.onConnect(c)
	if n := len(c.sent()); n != 4 {
		t.Errorf("expected no further messages, got %d total", n)
	}
}

func TestRealPublisherChecksConnectionUnderLock(t *testing.T) {
	c := &fakeClient{}
	p := newPublisher(c)

	held := true
	c.onCheck = func() {
		if p.mu.TryLock() {
			held = false
			p.mu.Unlock()
		}
	}

	p.Publish(toggleEvent(true))

	if !held {
		t.Error("connection state must be read while holding the outbox lock")
	}
}

// The connection comes up between the state check and the enqueue. The
// message must still be replayed by that connect.
func TestRealPublisherConnectDuringSend(t *testing.T) {
	c := &fakeClient{}
	p := newPublisher(c)

	replayed := make(chan struct{})
	c.onCheck = func() {
		c.onCheck = nil
		go func() {
			defer close(replayed)
			c.setOpen(true)
			p.onConnect(c)
		}()
	}

	if err := p.Publish(toggleEvent(true)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-replayed:
	case <-time.After(5 * time.Second):
		t.Fatal("onConnect did not finish")
	}

	if got := c.sent(); len(got) != 1 {
		t.Fatalf("expected the message on the wire after connect, got %d", len(got))
	}
	if p.outbox.size() != 0 {
		t.Errorf("message stranded in outbox: %d queued", p.outbox.size())
	}
}

func TestRealPublisherIsConnected(t *testing.T) {
	c := &fakeClient{}
	p := newPublisher(c)
	if p.IsConnected() {
		t.Error("expected disconnected")
	}
	c.setOpen(true)
	if !p.IsConnected() {
		t.Error("expected connected")
	}
}
