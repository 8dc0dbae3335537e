// Package registry owns every media session of the host.
//
// The Registry guarantees at most one session per texture target, drives
// all sessions once per frame, owns the cookie jar and fans global
// configuration out to every renderer.
//
// Components:
//   - Registry: session index, frame tick and removal
//   - Change: broadcast configuration (cookies, proxy, volume, user agent,
//     cache and cookie clearing)
//   - Cookie API: jar mutations, snapshot load and save
//   - Snapshot: read-only view published after every tick
//
// Threading:
//
// All Registry methods except Snapshot must be called from the frame
// goroutine. Snapshot may be read from any goroutine.
//
// Example Usage:
//
//	reg := registry.New(cfg, deps)
//	s := reg.CreateOrUpdate(target, "https://example.com/", "", 1024, 768, false, false)
//	for range ticker.C {
//		reg.Tick()
//	}
//	err := reg.Close()
package registry
