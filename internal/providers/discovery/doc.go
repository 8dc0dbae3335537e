// Package discovery finds out what a URL serves before a renderer is
// chosen for it.
//
// Discovery issues a single HEAD request and reads the Content-Type
// header. Requests share one rate limiter and a circuit breaker per host,
// so a dead host costs one timeout rather than one per session. Callers
// treat any error as "assume HTML"; the error is only there to be logged.
//
// The same client fetches Set-Cookie headers for hosts whose session
// cookies must be seeded into the shared jar.
package discovery
