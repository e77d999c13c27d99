package property

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message types exchanged with the relay.
const (
	MsgWelcome = "welcome" // relay -> peer: identity and full snapshot
	MsgSet     = "set"     // peer -> relay: write one property
	MsgChanged = "changed" // relay -> peers: properties were written
	MsgError   = "error"   // relay -> peer: request rejected
)

// Message is the JSON envelope of the relay protocol.
//
// Examples:
//
//	{"type":"welcome","uid":"0190...","public":{"k":"v"}}
//	{"type":"set","key":"reversi_game_x","value":"{...}","scope":"public"}
//	{"type":"changed","changes":[{"property":"reversi_game_x","value":"{...}","scope":"public"}]}
type Message struct {
	Type      string            `json:"type"`
	UID       string            `json:"uid,omitempty"`
	Key       string            `json:"key,omitempty"`
	Value     string            `json:"value,omitempty"`
	Scope     Scope             `json:"scope,omitempty"`
	Public    map[string]string `json:"public,omitempty"`
	Protected map[string]string `json:"protected,omitempty"`
	Changes   []PropertyChange  `json:"changes,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// PropertyChange is one entry of a changed message.
type PropertyChange struct {
	Property string `json:"property"`
	Value    string `json:"value"`
	Scope    Scope  `json:"scope"`
}

const (
	remoteWriteWait  = 5 * time.Second
	remoteSendBuffer = 64
)

// RemoteStore is a Store served by the websocket relay. It mirrors the
// relay's space locally; reads never leave the process.
//
// Own writes show in the mirror as soon as SetPublic returns. Until the
// relay has echoed every own write to a key, other updates to that key are
// dropped: the relay applies the pending writes after them, so they would
// only roll the mirror back.
type RemoteStore struct {
	conn *websocket.Conn
	send chan []byte

	mu        sync.RWMutex
	user      string
	public    map[string]string
	protected map[string]string
	pending   map[string][]string // own public writes not yet echoed, oldest first

	notes     *notifier
	done      chan struct{}
	closeOnce sync.Once
}

// DialRemote connects to a relay websocket endpoint such as
// ws://host:8080/ws?space=lobby. The local identity becomes known when the
// relay's welcome arrives.
func DialRemote(ctx context.Context, url string) (*RemoteStore, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", url, err)
	}

	r := &RemoteStore{
		conn:      conn,
		send:      make(chan []byte, remoteSendBuffer),
		public:    make(map[string]string),
		protected: make(map[string]string),
		pending:   make(map[string][]string),
		notes:     newNotifier(),
		done:      make(chan struct{}),
	}
	go r.writePump()
	go r.readPump()
	return r, nil
}

// Get implements Store.
func (r *RemoteStore) Get(ctx context.Context, key string) (Value, bool, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, false, err
	}
	select {
	case <-r.done:
		return Value{}, false, ErrClosed
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := lookup(r.public, r.protected, key)
	return v, ok, nil
}

// SetPublic implements Store. The write is visible to Get immediately and
// is sent to the relay in order.
func (r *RemoteStore) SetPublic(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("set: empty key")
	}
	payload, err := json.Marshal(Message{Type: MsgSet, Key: key, Value: value, Scope: ScopePublic})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	r.mu.Lock()
	prev, hadPrev := r.public[key]
	r.public[key] = value
	r.pending[key] = append(r.pending[key], value)
	r.mu.Unlock()

	select {
	case r.send <- payload:
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		r.unsend(key, value, prev, hadPrev)
		return ctx.Err()
	}
}

// unsend reverts a write that never reached the send queue.
func (r *RemoteStore) unsend(key, value, prev string, hadPrev bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := r.pending[key]
	for i := len(q) - 1; i >= 0; i-- {
		if q[i] == value {
			q = append(q[:i], q[i+1:]...)
			break
		}
	}
	switch {
	case len(q) > 0:
		r.pending[key] = q
		r.public[key] = q[len(q)-1]
	case hadPrev:
		delete(r.pending, key)
		r.public[key] = prev
	default:
		delete(r.pending, key)
		delete(r.public, key)
	}
}

// Changes implements Store.
func (r *RemoteStore) Changes() <-chan Change {
	return r.notes.C()
}

// LocalUser implements Store.
func (r *RemoteStore) LocalUser() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.user, r.user != ""
}

// Done is closed when the connection to the relay is gone.
func (r *RemoteStore) Done() <-chan struct{} {
	return r.done
}

// Close says goodbye to the relay and releases the connection.
func (r *RemoteStore) Close() error {
	r.shutdown()
	deadline := time.Now().Add(time.Second)
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return r.conn.Close()
}

func (r *RemoteStore) shutdown() {
	r.closeOnce.Do(func() {
		close(r.done)
		r.notes.Close()
	})
}

// writePump is the only goroutine writing data frames to the connection.
func (r *RemoteStore) writePump() {
	for {
		select {
		case msg := <-r.send:
			_ = r.conn.SetWriteDeadline(time.Now().Add(remoteWriteWait))
			if err := r.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("relay write failed", "error", err)
				r.shutdown()
				return
			}
		case <-r.done:
			return
		}
	}
}

// readPump applies relay messages to the local mirror.
func (r *RemoteStore) readPump() {
	defer r.shutdown()
	r.conn.SetReadLimit(1 << 20)

	for {
		_, payload, err := r.conn.ReadMessage()
		if err != nil {
			select {
			case <-r.done:
			default:
				slog.Debug("relay connection closed", "error", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.Warn("ignoring malformed relay message", "error", err)
			continue
		}
		r.apply(msg)
	}
}

func (r *RemoteStore) apply(msg Message) {
	switch msg.Type {
	case MsgWelcome:
		r.mu.Lock()
		r.public = copyProps(msg.Public)
		r.protected = copyProps(msg.Protected)
		for k, q := range r.pending {
			r.public[k] = q[len(q)-1]
		}
		keys := make([]string, 0, len(r.public)+len(r.protected))
		for k := range r.public {
			keys = append(keys, k)
		}
		for k := range r.protected {
			keys = append(keys, k)
		}
		// Identity last: a reader that sees the user also sees the snapshot.
		r.user = msg.UID
		r.mu.Unlock()
		r.notes.Publish(keys...)

	case MsgChanged:
		keys := make([]string, 0, len(msg.Changes))
		r.mu.Lock()
		for _, c := range msg.Changes {
			if c.Scope == ScopeProtected {
				r.protected[c.Property] = c.Value
				keys = append(keys, c.Property)
				continue
			}
			if !r.settle(c.Property, c.Value) {
				continue
			}
			r.public[c.Property] = c.Value
			keys = append(keys, c.Property)
		}
		r.mu.Unlock()
		r.notes.Publish(keys...)

	case MsgError:
		slog.Warn("relay rejected request", "error", msg.Error)

	default:
		slog.Debug("ignoring relay message", "type", msg.Type)
	}
}

// settle matches a public change against own pending writes. It reports
// whether the change should reach the mirror: always when nothing is
// pending, and for the echo of the last pending write. Caller holds mu.
func (r *RemoteStore) settle(key, value string) bool {
	q, ok := r.pending[key]
	if !ok {
		return true
	}
	if q[0] == value {
		q = q[1:]
	}
	if len(q) == 0 {
		delete(r.pending, key)
		return true
	}
	r.pending[key] = q
	return false
}

func copyProps(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
