package relay

import "sync/atomic"

// Metrics counts relay activity. All fields are updated atomically.
type Metrics struct {
	ConnectionsOpen  int64 // currently connected clients
	ConnectionsTotal int64 // clients accepted since start
	SetsAccepted     int64 // set messages applied
	Rejected         int64 // malformed, unknown or forbidden messages
	Broadcasts       int64 // changed messages queued to clients
	SlowClients      int64 // clients dropped because their queue was full
}

func (m *Metrics) connOpened() {
	atomic.AddInt64(&m.ConnectionsOpen, 1)
	atomic.AddInt64(&m.ConnectionsTotal, 1)
}

func (m *Metrics) connClosed() { atomic.AddInt64(&m.ConnectionsOpen, -1) }
func (m *Metrics) setAccepted() { atomic.AddInt64(&m.SetsAccepted, 1) }
func (m *Metrics) rejected() { atomic.AddInt64(&m.Rejected, 1) }
func (m *Metrics) broadcast() { atomic.AddInt64(&m.Broadcasts, 1) }
func (m *Metrics) slowClient() { atomic.AddInt64(&m.SlowClients, 1) }

// Snapshot returns a read-only copy for the /metrics endpoint.
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"connections_open":  atomic.LoadInt64(&m.ConnectionsOpen),
		"connections_total": atomic.LoadInt64(&m.ConnectionsTotal),
		"sets_accepted":     atomic.LoadInt64(&m.SetsAccepted),
		"rejected":          atomic.LoadInt64(&m.Rejected),
		"broadcasts":        atomic.LoadInt64(&m.Broadcasts),
		"slow_clients":      atomic.LoadInt64(&m.SlowClients),
	}
}
