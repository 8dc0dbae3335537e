// Package paths describes the on-disk layout of a media profile.
//
// A profile directory holds the cookie snapshot and the renderer's own
// browser profile:
//
//	<profile>/
//	  ├── plugin_cookies.txt      (cookie jar snapshot)
//	  ├── browser_profile/        (renderer user data)
//	  │   ├── cookies
//	  │   └── cache/
//	  └── cache/                  (media cache)
//
// The base settings directory is itself a profile, and each of its
// immediate subdirectories is the profile of one account.
package paths
