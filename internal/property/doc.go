// Package property provides the shared key-value space through which
// Reversi peers exchange game snapshots.
//
// A space holds string values under two scopes. Reads check the public
// scope first and fall back to protected. Every write produces a change
// notification carrying the set of changed keys; writers receive their own
// changes too.
//
// Adapters:
//   - Space/Peer: in-process space shared by several peers (tests, hot-seat play)
//   - DBStore: SQLite file shared by processes on one machine, polled for changes
//   - RemoteStore: websocket client of the relay in internal/relay
//
// Delivery is best-effort and last-write-wins. Pending notifications are
// coalesced, so a slow reader sees every changed key but not every write.
package property
