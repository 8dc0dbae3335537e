// Package http serves the read-only debug surface of the media host.
//
// Routes:
//   - GET /              service banner
//   - GET /healthz       liveness with session counts
//   - GET /sessions      every session published by the last tick
//   - GET /sessions/:id  one session, by session ID or target ID
//   - GET /discovery     per-host circuit breaker states
//   - GET /metrics       Prometheus exposition
//   - GET /metrics/summary  JSON view of the main counters
//
// Handlers never touch the registry directly; they read the snapshot the
// frame goroutine publishes after each tick.
package http
