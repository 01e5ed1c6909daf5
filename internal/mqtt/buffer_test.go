package mqtt

import (
	"testing"
)

func TestOutboxEmptyFlush(t *testing.T) {
	o := newOutbox(10)
	if got := o.flush(); got != nil {
		t.Errorf("expected nil from empty flush, got %d items", len(got))
	}
}

func TestOutboxAddAndFlush(t *testing.T) {
	o := newOutbox(10)
	for i := 0; i < 5; i++ {
		o.add(pendingMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got := o.flush()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	if got := o.flush(); got != nil {
		t.Errorf("expected nil from second flush, got %d items", len(got))
	}
}

func TestOutboxOverflowKeepsNewest(t *testing.T) {
	size := 5
	o := newOutbox(size)

	// 0..7 pushed, 3..7 survive
	for i := 0; i < size+3; i++ {
		o.add(pendingMsg{topic: "t", payload: []byte{byte(i)}})
	}
	if o.dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", o.dropped)
	}

	got := o.flush()
	if len(got) != size {
		t.Fatalf("expected %d items, got %d", size, len(got))
	}
	for i := 0; i < size; i++ {
		if want := byte(i + 3); got[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}
	if o.dropped != 0 {
		t.Errorf("flush should reset dropped, got %d", o.dropped)
	}
}

func TestOutboxReuseAfterWrap(t *testing.T) {
	o := newOutbox(3)
	for i := 0; i < 4; i++ {
		o.add(pendingMsg{payload: []byte{byte(i)}})
	}
	o.flush()

	for i := 10; i < 12; i++ {
		o.add(pendingMsg{payload: []byte{byte(i)}})
	}
	got := o.flush()
	if len(got) != 2 || got[0].payload[0] != 10 || got[1].payload[0] != 11 {
		t.Errorf("unexpected flush after wrap: %v", got)
	}
}

func TestOutboxSize(t *testing.T) {
	o := newOutbox(10)
	if o.size() != 0 {
		t.Errorf("expected size 0, got %d", o.size())
	}
	o.add(pendingMsg{topic: "t"})
	o.add(pendingMsg{topic: "t"})
	if o.size() != 2 {
		t.Errorf("expected size 2, got %d", o.size())
	}
	o.flush()
	if o.size() != 0 {
		t.Errorf("expected size 0 after flush, got %d", o.size())
	}
}

func TestOutboxPreservesFields(t *testing.T) {
	o := newOutbox(10)
	o.add(pendingMsg{
		topic:    TopicSystem,
		payload:  []byte(`{"test":true}`),
		qos:      1,
		retained: true,
	})

	got := o.flush()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != TopicSystem {
		t.Errorf("topic: got %s, want %s", got[0].topic, TopicSystem)
	}
	if string(got[0].payload) != `{"test":true}` {
		t.Errorf("payload: got %s", got[0].payload)
	}
	if got[0].qos != 1 || !got[0].retained {
		t.Errorf("qos/retained not preserved: %+v", got[0])
	}
}
