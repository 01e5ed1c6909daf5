package mqtt

import (
	"sync"

	"github.com/sweeney/expander-toggle/internal/logic"
)

// Message is a payload as it would have gone to the broker.
type Message struct {
	Topic   string
	Payload []byte
}

// FakePublisher stands in for RealPublisher in tests. Everything it accepts is
// kept in Messages in publish order across both topics, alongside the typed
// events. Safe for use from several goroutines.
type FakePublisher struct {
	mu sync.Mutex

	Events       []logic.Event
	SystemEvents []SystemEvent
	Messages     []Message

	// PublishError and PublishSystemError fail the matching call without
	// recording anything.
	PublishError       error
	PublishSystemError error

	Connected bool
	Closed    bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(event logic.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Messages = append(f.Messages, Message{Topic: Topic, Payload: payload})
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.Messages = append(f.Messages, Message{Topic: TopicSystem, Payload: payload})
	return nil
}

// OnTopic returns the payloads published to topic, oldest first.
func (f *FakePublisher) OnTopic(topic string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out [][]byte
	for _, m := range f.Messages {
		if m.Topic == topic {
			out = append(out, m.Payload)
		}
	}
	return out
}

func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

var (
	_ Publisher        = (*FakePublisher)(nil)
	_ ConnectionStatus = (*FakePublisher)(nil)
)
