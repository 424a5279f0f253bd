package dispatch

import (
	"errors"
	"sync"
)

var ErrChannelClosed = errors.New("dispatch: channel closed")

// Dispatcher is an unbounded FIFO of event names with any number of senders and
// a single polling receiver.
type Dispatcher struct {
	mu     sync.Mutex
	events []string
	closed bool
}

func New() *Dispatcher {
	return &Dispatcher{events: make([]string, 0, 16)}
}

// Send enqueues the event without blocking. It only fails once the receiving side
// has been closed.
func (d *Dispatcher) Send(event string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrChannelClosed
	}
	d.events = append(d.events, event)
	return nil
}

// TryReceive pops the oldest pending event. ok is false when nothing is pending.
func (d *Dispatcher) TryReceive() (event string, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.events) == 0 {
		return "", false
	}
	event = d.events[0]
	d.events[0] = ""
	d.events = d.events[1:]
	return event, true
}

func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

// Close shuts the receiving side down. Pending events are discarded.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.events = nil
}
