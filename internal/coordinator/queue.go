package coordinator

import (
	"fmt"
	"sync"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventClick is a local click on a board cell.
	EventClick EventType = iota + 1
	// EventReset is a local request to start over.
	EventReset
	// EventRemoteChange is a store notification.
	EventRemoteChange
)

func (t EventType) String() string {
	switch t {
	case EventClick:
		return "click"
	case EventReset:
		return "reset"
	case EventRemoteChange:
		return "remote_change"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is one unit of work for the Run loop.
type Event struct {
	Type EventType
	Row  int      // EventClick
	Col  int      // EventClick
	Keys []string // EventRemoteChange
}

// Click builds a click event.
func Click(row, col int) Event { return Event{Type: EventClick, Row: row, Col: col} }

// Reset builds a reset event.
func Reset() Event { return Event{Type: EventReset} }

// RemoteChange builds a store notification event.
func RemoteChange(keys ...string) Event { return Event{Type: EventRemoteChange, Keys: keys} }

// eventQueue is a thread-safe unbounded FIFO of events.
//
// Renderers and the store forwarder enqueue from their own goroutines while
// Run dequeues. The signal channel lets Run wait with a context.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	// Non-blocking: a buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front event without blocking.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}
	e := q.events[0]
	q.events[0] = Event{} // release Keys for GC
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns a channel that signals when events may be available. It is
// closed by Close.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close signals that no more events will be enqueued.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
