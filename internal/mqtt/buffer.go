package mqtt

import "log"

// DefaultOutboxSize is the number of messages held while disconnected.
const DefaultOutboxSize = 64

// pendingMsg is a serialized MQTT message waiting for a connection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a bounded FIFO that keeps the newest messages when full.
// Not safe for concurrent use; RealPublisher guards it with its mutex.
type outbox struct {
	msgs    []pendingMsg
	start   int // index of the oldest message
	n       int
	dropped int
}

func newOutbox(size int) *outbox {
	return &outbox{msgs: make([]pendingMsg, size)}
}

func (o *outbox) add(m pendingMsg) {
	size := len(o.msgs)
	if o.n < size {
		o.msgs[(o.start+o.n)%size] = m
		o.n++
		return
	}
	if o.dropped == 0 {
		log.Printf("mqtt: outbox full (%d messages), dropping oldest", size)
	}
	o.dropped++
	o.msgs[o.start] = m
	o.start = (o.start + 1) % size
}

// flush returns queued messages oldest first and empties the outbox.
func (o *outbox) flush() []pendingMsg {
	if o.n == 0 {
		return nil
	}
	out := make([]pendingMsg, 0, o.n)
	for i := 0; i < o.n; i++ {
		out = append(out, o.msgs[(o.start+i)%len(o.msgs)])
	}
	o.start, o.n, o.dropped = 0, 0, 0
	return out
}

func (o *outbox) size() int {
	return o.n
}
