// Package telemetry serves the browser side of adaptive delivery. A page
// posts a one-off device report and a stream of runtime samples; each client
// gets a Session holding a device.Manager and the optimize.Manager derived
// from its latest detection. Config changes are pushed back over a datastar
// SSE stream as signal patches.
//
// Sessions are keyed by a UUID cookie and kept in an LRU with an idle TTL.
// With a snapshot.Store configured, a session persists its device and config
// on every detection and on close, and a returning client is restored from
// that snapshot.
//
// Monitoring is fed by samples: frame timestamps drive the frame-rate
// monitor, memory readings the memory monitor and connection readings the
// connection monitor. Degradation follows the optimize package rules.
package telemetry
