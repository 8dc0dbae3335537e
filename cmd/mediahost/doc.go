// Package main runs the media host: it owns the session registry, drives
// the frame loop and optionally serves the debug HTTP surface.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags override a few of them
//
// Usage:
//
//	# Open two sessions and expose the debug surface
//	./mediahost -debug 127.0.0.1:9191 -open https://example.com/clip.mp4 -open https://example.com/
//
//	# Development mode (colored logs, debug level)
//	./mediahost -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
