package session

import (
	"image/color"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
)

// Media controls are forwarded to the renderer when one is attached and
// ignored otherwise.

func (s *Session) Play() {
	if s.process != nil {
		s.process.Play()
	}
}

func (s *Session) Pause() {
	if s.process != nil {
		s.process.Pause()
	}
}

func (s *Session) Stop() {
	if s.process != nil {
		s.process.Stop()
	}
}

func (s *Session) Seek(t float32) {
	if s.process != nil {
		s.process.Seek(t)
	}
}

// SetVolume is remembered for renderers launched later
func (s *Session) SetVolume(v float32) {
	s.settings.Volume = v
	if s.process != nil {
		s.process.SetVolume(v)
	}
}

func (s *Session) SetLoop(loop bool) {
	s.settings.Loop = loop
	if s.process != nil {
		s.process.SetLoop(loop)
	}
}

func (s *Session) SetAutoScale(autoScale bool) {
	s.settings.AutoScale = autoScale
	if s.process != nil {
		s.process.SetAutoScale(autoScale)
	}
}

// SetSize changes the requested renderer size. Non-positive dimensions
// keep the current value.
func (s *Session) SetSize(width, height int) {
	if width > 0 {
		s.settings.Width = width
	}
	if height > 0 {
		s.settings.Height = height
	}
	if s.process != nil {
		s.process.SetSize(s.settings.Width, s.settings.Height)
	}
}

// Focus records whether the session owns input and tells the renderer
func (s *Session) Focus(focus bool) {
	s.focused = focus
	if s.process != nil {
		s.process.Focus(focus)
	}
}

// NavigateHome loads the configured home page, or the last requested URL
func (s *Session) NavigateHome() {
	home := s.settings.HomeURL
	if home == "" {
		home = s.url
	}
	if home == "" {
		return
	}
	if s.process != nil {
		s.nav.Request(home)
		s.process.NavigateHome(home)
		return
	}
	s.Navigate(home, "", true)
}

// NavigateStop stops the page load in progress
func (s *Session) NavigateStop() {
	if s.process != nil {
		s.process.BrowseStop()
	}
}

// PickFileResponse answers a PickFileRequest event
func (s *Session) PickFileResponse(path string) {
	if s.process != nil {
		s.process.PickFileResponse(path)
	}
}

// ClearCache clears the renderer cache, or on the next launch when no
// renderer is attached
func (s *Session) ClearCache() {
	if s.process != nil {
		s.process.ClearCache()
		return
	}
	s.pendingClearCache = true
}

func (s *Session) ClearCookies() {
	if s.process != nil {
		s.process.ClearCookies()
	}
}

// SetCookies hands cookie lines to the renderer
func (s *Session) SetCookies(lines string) {
	if s.process != nil && lines != "" {
		s.process.SetCookies(lines)
	}
}

func (s *Session) SetCookiesEnabled(enabled bool) {
	s.settings.CookiesEnabled = enabled
	if s.process != nil {
		s.process.EnableCookies(enabled)
	}
}

func (s *Session) SetProxy(p Proxy) {
	s.settings.Proxy = p
	if s.process != nil {
		s.process.SetProxy(p.Enabled, p.Host, p.Port)
	}
}

func (s *Session) SetUserAgent(agent string) {
	s.settings.UserAgent = agent
	if s.process != nil && agent != "" {
		s.process.SetUserAgent(agent)
	}
}

// SetBackground sets the color new textures are cleared to
func (s *Session) SetBackground(c color.RGBA) {
	s.settings.Background = c
	s.pipeline.SetBackground(c)
	if s.process != nil {
		s.process.SetBackgroundColor(c)
	}
}

// Priority returns the scheduling priority requested from the renderer
func (s *Session) Priority() types.Priority {
	return s.priority()
}
