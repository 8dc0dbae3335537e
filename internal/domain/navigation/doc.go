// Package navigation tracks the navigation state of a single media session.
//
// Renderers report NavigateBegin, LocationChanged and NavigateComplete in an
// order that is not guaranteed relative to each other, and redirect chains
// can repeat a URL. The Machine turns that event stream into two answers:
// what is the user-visible current URL, and did the last navigation actually
// move or only replay the page that was already current.
//
// Server-directed navigation (a load explicitly requested through Request)
// is tracked separately from navigation started inside the page.
//
// Example Usage:
//
//	m := navigation.New(logger)
//	m.Request("http://example.com/")
//	m.Apply(types.NavigateBegin{URL: "http://example.com/"})
//	m.State() // ServerBegun
package navigation
