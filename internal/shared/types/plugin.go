package types

import (
	"context"
	"fmt"
	"image"
	"image/color"
)

// Process is a handle to one out-of-process renderer. Every call is fire
// and forget; renderer facts come back as events from Idle.
type Process interface {
	Backend() string

	LoadURI(url string)
	BrowseStop()
	NavigateHome(url string)

	Play()
	Pause()
	Stop()
	Seek(t float32)
	SetVolume(v float32)
	SetLoop(loop bool)
	SetAutoScale(autoScale bool)
	SetSize(width, height int)

	Focus(focus bool)
	MouseEvent(kind MouseKind, button, x, y int, mods Modifiers)
	ScrollEvent(dx, dy int, mods Modifiers)
	KeyEvent(kind KeyKind, key Key, mods Modifiers) bool
	TextInput(text string, mods Modifiers)
	Cut()
	Copy()
	Paste()
	PickFileResponse(path string)

	SetCookies(cookies string)
	EnableCookies(enabled bool)
	ClearCache()
	ClearCookies()

	SetProxy(enabled bool, host string, port int)
	SetUserAgent(agent string)
	SetBackgroundColor(c color.RGBA)
	SetPriority(p Priority)

	// Idle pumps the connection and returns the events received since the
	// previous call, in arrival order.
	Idle() []Event
	Exited() bool
	Surface() Surface

	// Close asks the renderer to exit and force-terminates it when it has
	// not done so within the launcher's grace period.
	Close() error
	// Terminate kills the renderer immediately.
	Terminate() error
}

// Surface is the renderer's shared output buffer.
type Surface interface {
	Valid() bool
	// Width and Height are the size of the rendered content.
	Width() int
	Height() int
	// BitsWidth and BitsHeight are the pixel size of the backing buffer.
	BitsWidth() int
	BitsHeight() int
	// Depth is bytes per pixel, Stride is bytes per row.
	Depth() int
	Stride() int
	Bits() []byte
	DirtyRect() (image.Rectangle, bool)
	ClearDirty()
}

// LaunchRequest describes a renderer to start
type LaunchRequest struct {
	Backend     string
	Width       int
	Height      int
	UserDataDir string
	Language    string
	Target      string
}

// Launcher starts renderer processes
type Launcher interface {
	Launch(ctx context.Context, req LaunchRequest) (Process, error)
}

// LaunchError reports that a backend could not be started
type LaunchError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *LaunchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("launch %s: %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("launch %s: %s", e.Backend, e.Reason)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
