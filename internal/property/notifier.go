package property

import "sync"

// notifier fans change notifications out to a single reader.
//
// Publishers never block: changes are appended to an unbounded pending
// list and a pump goroutine hands them to the reader. Changes that pile up
// while the reader is busy are merged into one notification.
type notifier struct {
	mu      sync.Mutex
	pending []string
	closed  bool
	signal  chan struct{} // Signals pending keys (buffered, size 1)
	done    chan struct{}
	out     chan Change
}

func newNotifier() *notifier {
	n := &notifier{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan Change),
	}
	go n.pump()
	return n
}

// Publish queues keys for delivery. Returns false once closed.
func (n *notifier) Publish(keys ...string) bool {
	if len(keys) == 0 {
		return true
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return false
	}
	n.pending = append(n.pending, keys...)

	// Non-blocking: a buffer of 1 coalesces multiple signals.
	select {
	case n.signal <- struct{}{}:
	default:
	}
	return true
}

// take removes every pending key, deduplicated in first-seen order.
func (n *notifier) take() (Change, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.pending) == 0 {
		return Change{}, false
	}
	seen := make(map[string]struct{}, len(n.pending))
	keys := make([]string, 0, len(n.pending))
	for _, k := range n.pending {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	n.pending = n.pending[:0]
	return Change{Keys: keys}, true
}

func (n *notifier) pump() {
	defer close(n.out)
	for {
		if c, ok := n.take(); ok {
			select {
			case n.out <- c:
			case <-n.done:
				return
			}
			continue
		}
		select {
		case <-n.signal:
		case <-n.done:
			return
		}
	}
}

// C returns the delivery channel. It is closed after Close.
func (n *notifier) C() <-chan Change {
	return n.out
}

// Close stops delivery. Pending changes are discarded.
func (n *notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	close(n.done)
}
