package registry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/AgentOS/media/internal/domain/cookies"
	"github.com/GriffinCanCode/AgentOS/media/internal/domain/mimetypes"
	"github.com/GriffinCanCode/AgentOS/media/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/media/internal/providers/profile"
	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownTarget is returned when no session is bound to a target
var ErrUnknownTarget = errors.New("no media session for target")

// CookieFetcher retrieves the Set-Cookie lines a URL answers with
type CookieFetcher interface {
	FetchCookies(ctx context.Context, url string) (string, error)
}

// AgentSetter is told about every User-Agent change, so out-of-band
// requests such as content type discovery identify as the sessions do
type AgentSetter interface {
	SetUserAgent(agent string)
}

// Metrics records registry and session activity
type Metrics interface {
	session.Metrics
	ObserveTick(elapsed time.Duration, sessions int)
	ObservePanic()
}

// Deps are the registry collaborators
type Deps struct {
	Launcher   types.Launcher
	Discoverer session.Discoverer
	Fetcher    CookieFetcher
	Agents     AgentSetter
	Table      *mimetypes.Table
	Textures   types.TextureResolver
	Notifier   types.Notifier
	Metrics    Metrics
	Logger     *zap.Logger
	// Clock drives cookie expiry; nil means time.Now.
	Clock func() time.Time
}

// Config holds registry settings
type Config struct {
	// Defaults seed the settings of new sessions.
	Defaults session.Settings
	Agent    Agent
	// CookieFile is the jar snapshot path. Empty disables persistence.
	CookieFile string
	// ProfileDir is the settings directory whose profiles are purged when
	// cookies or caches are cleared. Empty disables purging.
	ProfileDir string
}

// Registry is the set of live media sessions
type Registry struct {
	sessions []*session.Session
	byTarget map[types.TargetID]*session.Session
	focused  *session.Session

	defaults   session.Settings
	agent      Agent
	cookieFile string

	jar      *cookies.Store
	inbox    *session.Inbox
	reaper   *session.Reaper
	sweeper  *profile.Sweeper
	fetcher  CookieFetcher
	agents   AgentSetter
	metrics  Metrics
	sessDeps session.Deps

	background errgroup.Group
	snapshot   atomic.Pointer[[]SessionInfo]
	closed     bool
	now        func() time.Time
	logger     *zap.Logger
}

// New creates an empty registry
func New(cfg Config, deps Deps) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	r := &Registry{
		byTarget:   make(map[types.TargetID]*session.Session),
		defaults:   cfg.Defaults,
		agent:      cfg.Agent,
		cookieFile: cfg.CookieFile,
		jar:        cookies.NewStore(logger.Named("cookies"), cookies.WithClock(now)),
		inbox:      session.NewInbox(),
		reaper:     session.NewReaper(logger.Named("reaper")),
		fetcher:    deps.Fetcher,
		agents:     deps.Agents,
		metrics:    deps.Metrics,
		now:        now,
		logger:     logger,
	}
	if cfg.ProfileDir != "" {
		r.sweeper = profile.NewSweeper(cfg.ProfileDir, logger.Named("profile"))
	}
	if r.defaults.UserAgent == "" && !r.agent.IsZero() {
		r.defaults.UserAgent = r.agent.String()
	}

	r.sessDeps = session.Deps{
		Launcher:   deps.Launcher,
		Discoverer: deps.Discoverer,
		Table:      deps.Table,
		Textures:   deps.Textures,
		Notifier:   deps.Notifier,
		Cookies:    r.jar,
		Reporter:   r,
		Inbox:      r.inbox,
		Reaper:     r.reaper,
		Logger:     logger.Named("session"),
	}
	if deps.Metrics != nil {
		r.sessDeps.Metrics = deps.Metrics
	}

	r.publish()
	return r
}

// CreateOrUpdate binds url to target. An existing session for target is
// stopped and re-targeted in place, so handles held by callers stay
// valid. The null target always gets a fresh, unindexed session. The
// content type is discovered unless mimeType is given.
func (r *Registry) CreateOrUpdate(target types.TargetID, url, mimeType string, width, height int, autoScale, loop bool) *session.Session {
	if s, ok := r.Lookup(target); ok {
		r.logger.Debug("re-targeting media session",
			zap.String("session", s.ID().String()),
			zap.String("url", url))
		s.Stop()
		s.SetSize(width, height)
		s.SetAutoScale(autoScale)
		s.SetLoop(loop)
		s.Navigate(url, mimeType, mimeType == "")
		return s
	}

	settings := r.defaults
	if width > 0 {
		settings.Width = width
	}
	if height > 0 {
		settings.Height = height
	}
	settings.AutoScale = autoScale
	settings.Loop = loop

	s := session.New(target, settings, r.sessDeps)
	r.sessions = append(r.sessions, s)
	if !target.IsNil() {
		r.byTarget[target] = s
	}
	r.logger.Info("media session created",
		zap.String("session", s.ID().String()),
		zap.Stringer("target", target),
		zap.String("url", url))

	if url != "" {
		s.Navigate(url, mimeType, mimeType == "")
	}
	return s
}

// Remove detaches and destroys s. Removing an unknown session is a no-op.
func (r *Registry) Remove(s *session.Session) {
	if s == nil {
		return
	}
	idx := -1
	for i, existing := range r.sessions {
		if existing == s {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	r.sessions = append(r.sessions[:idx], r.sessions[idx+1:]...)
	if cur, ok := r.byTarget[s.Target()]; ok && cur == s {
		delete(r.byTarget, s.Target())
	}
	if r.focused == s {
		r.focused = nil
	}
	s.Destroy()
	r.logger.Info("media session removed", zap.String("session", s.ID().String()))
}

// Lookup returns the session bound to target
func (r *Registry) Lookup(target types.TargetID) (*session.Session, bool) {
	if target.IsNil() {
		return nil, false
	}
	s, ok := r.byTarget[target]
	return s, ok
}

// Sessions returns the live sessions in creation order
func (r *Registry) Sessions() []*session.Session {
	return append([]*session.Session(nil), r.sessions...)
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	return len(r.sessions)
}

// Tick drives one frame: background results are applied, the cookie diff
// is computed once and every session is updated with it. A panicking
// session is logged and skipped; the others still update.
func (r *Registry) Tick() {
	start := time.Now()

	r.guard("inbox", func() {
		r.inbox.Drain()
	})

	diff := r.jar.ChangedCookies(true)
	for _, s := range r.Sessions() {
		r.guard(s.ID().String(), func() {
			s.Update(diff)
		})
	}

	r.publish()
	if r.metrics != nil {
		r.metrics.ObserveTick(time.Since(start), len(r.sessions))
	}
}

func (r *Registry) guard(scope string, fn func()) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.Error("recovered from panic during tick",
				zap.String("scope", scope),
				zap.Any("panic", v),
				zap.Stack("stack"))
			if r.metrics != nil {
				r.metrics.ObservePanic()
			}
		}
	}()
	fn()
}

// Navigate loads url in the session bound to target
func (r *Registry) Navigate(target types.TargetID, url, mimeType string) error {
	s, ok := r.Lookup(target)
	if !ok {
		return fmt.Errorf("navigate %s: %w", target, ErrUnknownTarget)
	}
	s.Navigate(url, mimeType, mimeType == "")
	return nil
}

func (r *Registry) Play(target types.TargetID) error {
	return r.with(target, "play", (*session.Session).Play)
}

func (r *Registry) Pause(target types.TargetID) error {
	return r.with(target, "pause", (*session.Session).Pause)
}

func (r *Registry) Stop(target types.TargetID) error {
	return r.with(target, "stop", (*session.Session).Stop)
}

// Focus gives input focus to the session bound to target and takes it
// from the previously focused session
func (r *Registry) Focus(target types.TargetID) error {
	s, ok := r.Lookup(target)
	if !ok {
		return fmt.Errorf("focus %s: %w", target, ErrUnknownTarget)
	}
	if r.focused != nil && r.focused != s {
		r.focused.Focus(false)
	}
	r.focused = s
	s.Focus(true)
	return nil
}

// Blur drops input focus
func (r *Registry) Blur() {
	if r.focused != nil {
		r.focused.Focus(false)
		r.focused = nil
	}
}

// Focused returns the session owning input
func (r *Registry) Focused() (*session.Session, bool) {
	return r.focused, r.focused != nil
}

// SetVisible shows or hides the session bound to target
func (r *Registry) SetVisible(target types.TargetID, visible bool) error {
	s, ok := r.Lookup(target)
	if !ok {
		return fmt.Errorf("set visible %s: %w", target, ErrUnknownTarget)
	}
	s.SetVisible(visible)
	return nil
}

func (r *Registry) with(target types.TargetID, op string, fn func(*session.Session)) error {
	s, ok := r.Lookup(target)
	if !ok {
		return fmt.Errorf("%s %s: %w", op, target, ErrUnknownTarget)
	}
	fn(s)
	return nil
}

// Wait blocks until renderer shutdowns and profile purges finished
func (r *Registry) Wait() error {
	return errors.Join(r.reaper.Wait(), r.background.Wait())
}

// Close destroys every session, saves the cookie jar and waits for
// renderers to exit
func (r *Registry) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	for _, s := range r.Sessions() {
		r.Remove(s)
	}
	r.publish()

	var errs []error
	if r.cookieFile != "" {
		if err := r.SaveCookies(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.Wait(); err != nil {
		errs = append(errs, err)
	}
	r.logger.Info("media registry closed")
	return errors.Join(errs...)
}
