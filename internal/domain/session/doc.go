// Package session binds one media URL to one texture target.
//
// A Session owns at most one renderer process at a time. It decides which
// backend serves the content, launches the renderer lazily, feeds it
// navigation and input, and copies its pixels into the bound texture each
// frame.
//
// Components:
//   - Session: per-target orchestration and renderer lifetime
//   - Inbox: hands results of background work to the frame goroutine
//   - Reaper: shuts renderers down off the frame goroutine
//   - Observer: receives renderer events after the session applied them
//
// Threading:
//
// Every Session method must be called from the goroutine that drives
// Update. MIME discovery runs in the background and reports back through
// the Inbox; a result that arrives after the session navigated elsewhere
// or was destroyed is dropped.
//
// Example Usage:
//
//	s := session.New(target, session.DefaultSettings(), deps)
//	s.Navigate("https://example.com/", "", true)
//	for range ticker.C {
//		deps.Inbox.Drain()
//		s.Update("")
//	}
package session
