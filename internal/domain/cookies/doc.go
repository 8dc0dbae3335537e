// Package cookies implements the process-wide cookie jar shared by every
// media renderer.
//
// The jar is keyed by (domain, path, name). Setting a cookie whose expiry
// is in the past is the only way to remove one; the removal is kept as a
// pending change until the next ChangedCookies call so renderers also drop
// it.
//
// Cookies travel as Set-Cookie lines, one per line. The same format is used
// for the on-disk snapshot, which only ever holds persistent cookies:
//
//	sid=abc; expires=Tue, 10 Nov 2026 23:00:00 GMT; domain=example.com; path=/; secure
//
// A Store is not safe for concurrent use; it belongs to the media registry,
// which is its only writer.
package cookies
