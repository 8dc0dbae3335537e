package navigation

import (
	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"go.uber.org/zap"
)

// Machine is the per-session navigation tracker. It is only advanced by
// renderer events and by explicit requests from the owning session.
type Machine struct {
	state      State
	currentURL string
	pendingURL string
	logger     *zap.Logger
}

// New creates a machine in the None state
func New(logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{logger: logger}
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// CurrentURL returns the last URL confirmed by renderer events
func (m *Machine) CurrentURL() string {
	return m.currentURL
}

// PendingURL returns the URL of the most recent explicit request
func (m *Machine) PendingURL() string {
	return m.pendingURL
}

// Request records an explicit navigation. The machine restarts at
// ServerSent before any renderer event for it arrives.
func (m *Machine) Request(url string) {
	m.pendingURL = url
	m.set(ServerSent)
}

// Reset drops back to None without touching the tracked URLs
func (m *Machine) Reset() {
	m.set(None)
}

// Apply advances the machine with one renderer event and reports whether
// the state or the current URL changed. Events unrelated to navigation are
// ignored.
func (m *Machine) Apply(ev types.Event) bool {
	prevState, prevURL := m.state, m.currentURL

	switch e := ev.(type) {
	case types.NavigateBegin:
		m.logger.Debug("navigate begin", zap.String("url", e.URL))
		if m.state == ServerSent {
			m.set(ServerBegun)
		} else {
			m.set(Begun)
		}

	case types.LocationChanged:
		m.logger.Debug("location changed", zap.String("url", e.URL))
		switch m.state {
		case Begun:
			if e.URL == m.currentURL {
				m.set(FirstLocationChangedSpurious)
			} else {
				m.currentURL = e.URL
				m.set(FirstLocationChanged)
			}
		case ServerBegun:
			m.currentURL = e.URL
			m.set(ServerFirstLocationChanged)
		default:
			// redirects are not tracked
			m.set(None)
		}

	case types.NavigateComplete:
		m.logger.Debug("navigate complete", zap.String("url", e.URL))
		switch m.state {
		case Begun:
			if e.URL == m.currentURL {
				m.set(CompleteBeforeLocationChangedSpurious)
			} else {
				m.currentURL = e.URL
				m.set(CompleteBeforeLocationChanged)
			}
		case ServerBegun:
			m.currentURL = e.URL
			m.set(ServerCompleteBeforeLocationChanged)
		}
	}

	return m.state != prevState || m.currentURL != prevURL
}

func (m *Machine) set(s State) {
	if m.state != s {
		m.logger.Debug("setting nav state", zap.Stringer("from", m.state), zap.Stringer("to", s))
	}
	m.state = s
}
