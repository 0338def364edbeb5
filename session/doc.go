// Package session houses the concrete implementation of core.SessionStore.
//
// LRUStore keeps a bounded number of sessions, each a bounded FIFO history of
// messages, behind a single store-wide mutex. Sessions are evicted least
// recently used first when the session cap is reached, and sessions whose
// newest message is older than the configured timeout are removed by lazy
// expiry sweeps triggered from AddMessage (or by an optional Sweeper running
// on a cron schedule).
//
// Callers should depend on the core.SessionStore interface; only the wiring
// layer needs to know about LRUStore.
package session
