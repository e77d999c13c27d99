// Package coordinator keeps one peer's game engine in step with the shared
// property space.
//
// Each peer runs the full rule engine. Local clicks are executed
// optimistically and the resulting snapshot is published; remote change
// notifications replace the local state wholesale. Last write wins at the
// store.
//
// Sync Lock:
// Every state-changing action (local move, reset, relevant remote change)
// runs under a single-slot lock that is released only after the render
// state has been derived. Local actions that find the lock held are
// rejected with ErrBusy, never queued. Remote changes wait for the lock so
// that a peer never silently misses the latest snapshot.
//
// Event Loop:
// Run delivers clicks, resets and store notifications one at a time from a
// FIFO queue. The handlers may also be called directly; the lock keeps
// direct calls and the loop from interleaving.
package coordinator
