package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/FireRat666/Banter-Reversi/internal/property"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1 << 20 // 1MB
	sendBuffer     = 64
)

// client is one websocket connection joined to a space.
type client struct {
	ws      *websocket.Conn
	space   *property.Space
	peer    *property.Peer
	uid     string
	metrics *Metrics
	log     *zap.SugaredLogger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(ws *websocket.Conn, space *property.Space, peer *property.Peer, uid string, m *Metrics, log *zap.SugaredLogger) *client {
	return &client{
		ws:      ws,
		space:   space,
		peer:    peer,
		uid:     uid,
		metrics: m,
		log:     log,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
}

// enqueue queues msg for writing. A client whose queue is full is too slow
// to keep in sync and is disconnected.
func (c *client) enqueue(msg property.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.log.Errorf("encode %s message: %v", msg.Type, err)
		return
	}
	select {
	case c.send <- payload:
	case <-c.done:
	default:
		c.metrics.slowClient()
		c.log.Warn("send queue full, dropping client")
		c.close()
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.peer.Close()
		_ = c.ws.Close()
	})
}

func (c *client) welcome() {
	c.enqueue(property.Message{
		Type:      property.MsgWelcome,
		UID:       c.uid,
		Public:    c.space.Snapshot(property.ScopePublic),
		Protected: c.space.Snapshot(property.ScopeProtected),
	})
}

// forward turns space notifications into changed messages.
func (c *client) forward() {
	for change := range c.peer.Changes() {
		msg := property.Message{Type: property.MsgChanged}
		for _, key := range change.Keys {
			for _, scope := range []property.Scope{property.ScopePublic, property.ScopeProtected} {
				if v, ok := c.space.Entry(scope, key); ok {
					msg.Changes = append(msg.Changes, property.PropertyChange{Property: key, Value: v, Scope: scope})
				}
			}
		}
		if len(msg.Changes) == 0 {
			continue
		}
		c.metrics.broadcast()
		c.enqueue(msg)
	}
}

// writePump is the only goroutine writing to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump applies set messages until the connection drops.
func (c *client) readPump() {
	defer c.close()
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debugf("read error: %v", err)
			}
			return
		}
		var msg property.Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.reject("malformed message")
			continue
		}
		c.handle(msg)
	}
}

func (c *client) handle(msg property.Message) {
	switch msg.Type {
	case property.MsgSet:
		if msg.Key == "" {
			c.reject("set without key")
			return
		}
		if msg.Scope != "" && msg.Scope != property.ScopePublic {
			c.reject("only the public scope is writable")
			return
		}
		// Peer.SetPublic only fails once the peer is closed.
		if err := c.peer.SetPublic(context.Background(), msg.Key, msg.Value); err != nil {
			return
		}
		c.metrics.setAccepted()
		c.log.Debugf("set %s (%d bytes)", msg.Key, len(msg.Value))
	default:
		c.reject("unknown message type " + msg.Type)
	}
}

func (c *client) reject(reason string) {
	c.metrics.rejected()
	c.log.Debugf("rejected: %s", reason)
	c.enqueue(property.Message{Type: property.MsgError, Error: reason})
}
