package navigation

// State is the navigation tracking state of a session
type State int

const (
	// None is outside what needs tracking.
	None State = iota
	// Begun follows a NavigateBegin that was not server-directed.
	Begun
	// FirstLocationChanged is the first LocationChanged after Begun.
	FirstLocationChanged
	// FirstLocationChangedSpurious is FirstLocationChanged to the URL that was already current.
	FirstLocationChangedSpurious
	// CompleteBeforeLocationChanged is a NavigateComplete received before any LocationChanged.
	CompleteBeforeLocationChanged
	// CompleteBeforeLocationChangedSpurious is CompleteBeforeLocationChanged to the URL that was already current.
	CompleteBeforeLocationChangedSpurious
	// ServerSent is a requested navigation whose NavigateBegin has not arrived.
	ServerSent
	// ServerBegun follows a NavigateBegin for a requested navigation.
	ServerBegun
	// ServerFirstLocationChanged is the first LocationChanged after ServerBegun.
	ServerFirstLocationChanged
	// ServerCompleteBeforeLocationChanged is a NavigateComplete received after ServerBegun.
	ServerCompleteBeforeLocationChanged
)

var stateNames = [...]string{
	None:                                  "none",
	Begun:                                 "begun",
	FirstLocationChanged:                  "first_location_changed",
	FirstLocationChangedSpurious:          "first_location_changed_spurious",
	CompleteBeforeLocationChanged:         "complete_before_location_changed",
	CompleteBeforeLocationChangedSpurious: "complete_before_location_changed_spurious",
	ServerSent:                            "server_sent",
	ServerBegun:                           "server_begun",
	ServerFirstLocationChanged:            "server_first_location_changed",
	ServerCompleteBeforeLocationChanged:   "server_complete_before_location_changed",
}

// String returns the string representation of the state
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Spurious reports whether the state marks a replay of the current URL
func (s State) Spurious() bool {
	return s == FirstLocationChangedSpurious || s == CompleteBeforeLocationChangedSpurious
}

// ServerDirected reports whether the state belongs to a requested navigation
func (s State) ServerDirected() bool {
	switch s {
	case ServerSent, ServerBegun, ServerFirstLocationChanged, ServerCompleteBeforeLocationChanged:
		return true
	}
	return false
}
