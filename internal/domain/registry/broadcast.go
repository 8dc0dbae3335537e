package registry

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/media/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/media/internal/providers/profile"
	"go.uber.org/zap"
)

// Change is a configuration change applied to every session
type Change interface {
	change()
}

// CookiesEnabled turns renderer cookie handling on or off
type CookiesEnabled bool

// Proxy replaces the renderer proxy configuration
type Proxy session.Proxy

// Volume sets the playback volume
type Volume float32

// UserAgent replaces the user agent string. An empty value restores the
// composed agent.
type UserAgent string

// Skin changes the skin named in the composed user agent
type Skin string

// ClearCache empties renderer caches and purges cache files on disk
type ClearCache struct{}

// ClearAllCookies empties the jar and every renderer's cookies and purges
// cookie files on disk
type ClearAllCookies struct{}

func (CookiesEnabled) change()  {}
func (Proxy) change()           {}
func (Volume) change()          {}
func (UserAgent) change()       {}
func (Skin) change()            {}
func (ClearCache) change()      {}
func (ClearAllCookies) change() {}

// Broadcast applies c to every live session and records it as the
// default for sessions created later
func (r *Registry) Broadcast(c Change) {
	switch v := c.(type) {
	case CookiesEnabled:
		r.defaults.CookiesEnabled = bool(v)
		r.each(func(s *session.Session) { s.SetCookiesEnabled(bool(v)) })

	case Proxy:
		r.defaults.Proxy = session.Proxy(v)
		r.each(func(s *session.Session) { s.SetProxy(session.Proxy(v)) })

	case Volume:
		r.defaults.Volume = float32(v)
		r.each(func(s *session.Session) { s.SetVolume(float32(v)) })

	case UserAgent:
		agent := string(v)
		if agent == "" {
			agent = r.agent.String()
		}
		r.setUserAgent(agent)

	case Skin:
		r.agent.Skin = string(v)
		r.setUserAgent(r.agent.String())

	case ClearCache:
		r.each((*session.Session).ClearCache)
		r.purge(profile.Cache)

	case ClearAllCookies:
		r.jar.Clear()
		r.each((*session.Session).ClearCookies)
		r.purge(profile.Cookies)

	default:
		r.logger.Warn("unknown configuration change ignored", zap.Any("change", c))
		return
	}
	r.logger.Debug("configuration broadcast", zap.String("change", changeName(c)), zap.Int("sessions", len(r.sessions)))
}

func (r *Registry) setUserAgent(agent string) {
	r.defaults.UserAgent = agent
	r.each(func(s *session.Session) { s.SetUserAgent(agent) })
	if r.agents != nil {
		r.agents.SetUserAgent(agent)
	}
}

func (r *Registry) each(fn func(*session.Session)) {
	for _, s := range r.sessions {
		fn(s)
	}
}

// purge removes on-disk artifacts of kind in the background. Failures are
// logged by the sweeper and never surface.
func (r *Registry) purge(kind profile.Kind) {
	if r.sweeper == nil {
		return
	}
	sweeper, logger := r.sweeper, r.logger
	r.background.Go(func() error {
		if _, err := sweeper.Purge(context.Background(), kind); err != nil {
			logger.Warn("profile purge failed", zap.Stringer("kind", kind), zap.Error(err))
		}
		return nil
	})
}

func changeName(c Change) string {
	switch c.(type) {
	case CookiesEnabled:
		return "cookies_enabled"
	case Proxy:
		return "proxy"
	case Volume:
		return "volume"
	case UserAgent:
		return "user_agent"
	case Skin:
		return "skin"
	case ClearCache:
		return "clear_cache"
	case ClearAllCookies:
		return "clear_all_cookies"
	}
	return "unknown"
}
