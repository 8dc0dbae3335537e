package types

// Event is a renderer-originated message drained from a plugin process
// during Idle. The set of implementations is closed.
type Event interface {
	mediaEvent()
}

// NavigateBegin is sent when the renderer starts loading a document.
type NavigateBegin struct {
	URL string
}

// NavigateComplete is sent when the renderer finished loading a document.
type NavigateComplete struct {
	URL string
}

// LocationChanged is sent when the renderer's address changes.
type LocationChanged struct {
	URL string
}

// PluginFailed reports that a running plugin crashed.
type PluginFailed struct{}

// PluginFailedLaunch reports that a plugin could not finish initializing.
type PluginFailedLaunch struct{}

// CloseRequest asks for a media window to close. An empty Target means
// the request is aimed at the emitting instance.
type CloseRequest struct {
	Target string
}

// GeometryChange asks for a media window to move or resize.
type GeometryChange struct {
	Target string
	X      int
	Y      int
	Width  int
	Height int
}

// PickFileRequest asks the host for a file path.
type PickFileRequest struct{}

// CookieSet carries a Set-Cookie line observed by the renderer.
type CookieSet struct {
	Cookie string
}

// ClickLink reports a link activation inside the renderer.
type ClickLink struct {
	URL      string
	Target   string
	NoFollow bool
}

// StatusChanged reports a change of the renderer's playback status.
type StatusChanged struct {
	Status MediaStatus
}

// HistoryChanged reports back/forward availability.
type HistoryChanged struct {
	BackAvailable    bool
	ForwardAvailable bool
}

func (NavigateBegin) mediaEvent()      {}
func (NavigateComplete) mediaEvent()   {}
func (LocationChanged) mediaEvent()    {}
func (PluginFailed) mediaEvent()       {}
func (PluginFailedLaunch) mediaEvent() {}
func (CloseRequest) mediaEvent()       {}
func (GeometryChange) mediaEvent()     {}
func (PickFileRequest) mediaEvent()    {}
func (CookieSet) mediaEvent()          {}
func (ClickLink) mediaEvent()          {}
func (StatusChanged) mediaEvent()      {}
func (HistoryChanged) mediaEvent()     {}

// MediaStatus is the playback status reported by a renderer
type MediaStatus int

const (
	StatusNone MediaStatus = iota
	StatusLoading
	StatusLoaded
	StatusError
	StatusPlaying
	StatusPaused
	StatusDone
)

// String returns the string representation of the status
func (s MediaStatus) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// ParseMediaStatus maps a wire name back to a status
func ParseMediaStatus(s string) MediaStatus {
	for st := StatusNone; st <= StatusDone; st++ {
		if st.String() == s {
			return st
		}
	}
	return StatusNone
}
