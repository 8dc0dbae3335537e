package session

import (
	"context"
	"image/color"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/AgentOS/media/internal/domain/mimetypes"
	"github.com/GriffinCanCode/AgentOS/media/internal/domain/navigation"
	"github.com/GriffinCanCode/AgentOS/media/internal/domain/texture"
	"github.com/GriffinCanCode/AgentOS/media/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"go.uber.org/zap"
)

// Discoverer resolves the content type of a URL without fetching its body
type Discoverer interface {
	Discover(ctx context.Context, url string) (string, error)
}

// CookieSource provides the full jar handed to freshly launched renderers
type CookieSource interface {
	AllCookies() string
}

// CookieReporter receives Set-Cookie lines observed by a renderer. The
// session never writes the jar itself.
type CookieReporter interface {
	ReportCookie(s *Session, line string)
}

// Metrics records renderer lifecycle outcomes
type Metrics interface {
	ObserveLaunch(backend, outcome string)
	ObservePluginFailure(backend string)
}

// Deps are the collaborators shared by every session of a registry
type Deps struct {
	Launcher   types.Launcher
	Discoverer Discoverer
	Table      *mimetypes.Table
	Textures   types.TextureResolver
	Notifier   types.Notifier
	Cookies    CookieSource
	Reporter   CookieReporter
	Inbox      *Inbox
	Reaper     *Reaper
	Metrics    Metrics
	Logger     *zap.Logger
}

// Proxy is the renderer proxy configuration
type Proxy struct {
	Enabled bool
	Host    string
	Port    int
}

// Settings are the per-session renderer parameters
type Settings struct {
	Width          int
	Height         int
	AutoScale      bool
	Loop           bool
	Volume         float32
	UserAgent      string
	CookiesEnabled bool
	Proxy          Proxy
	Background     color.RGBA
	UserDataDir    string
	Language       string
	HomeURL        string
}

// DefaultSettings returns the settings used for new sessions
func DefaultSettings() Settings {
	return Settings{
		Width:          1024,
		Height:         1024,
		Volume:         1,
		CookiesEnabled: true,
		Background:     color.RGBA{A: 0xff},
	}
}

// Session is one media binding for a texture target
type Session struct {
	id       id.SessionID
	target   types.TargetID
	name     string
	settings Settings
	deps     Deps
	logger   *zap.Logger

	url            string
	mimeType       string
	loadedMimeType string

	nav      *navigation.Machine
	pipeline *texture.Pipeline

	process types.Process
	backend string

	// generation advances on every navigation and on destroy; background
	// results carrying an older value are stale.
	generation      uint64
	cancelDiscovery context.CancelFunc

	visible           bool
	suspended         bool
	focused           bool
	failed            bool
	needsRespawn      bool
	pendingClearCache bool
	destroyed         bool

	status     types.MediaStatus
	canBack    bool
	canForward bool

	lastMouseX int
	lastMouseY int

	observers    []observerEntry
	nextObserver int
}

// New creates a session bound to target. No renderer is started until the
// first navigation.
func New(target types.TargetID, settings Settings, deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Table == nil {
		deps.Table = mimetypes.Default()
	}
	if deps.Inbox == nil {
		deps.Inbox = NewInbox()
	}
	if deps.Reaper == nil {
		deps.Reaper = NewReaper(deps.Logger)
	}
	if deps.Notifier == nil {
		deps.Notifier = types.NotifierFunc(func(types.Notification) {})
	}

	sid := id.NewSessionID()
	logger := deps.Logger.With(zap.String("session", sid.String()), zap.Stringer("target", target))

	pipeline := texture.NewPipeline(logger)
	pipeline.SetBackground(settings.Background)

	return &Session{
		id:       sid,
		target:   target,
		settings: settings,
		deps:     deps,
		logger:   logger,
		nav:      navigation.New(logger),
		pipeline: pipeline,
		visible:  true,
	}
}

// Accessors
func (s *Session) ID() id.SessionID           { return s.id }
func (s *Session) Target() types.TargetID     { return s.target }
func (s *Session) Name() string               { return s.name }
func (s *Session) URL() string                { return s.url }
func (s *Session) CurrentURL() string         { return s.nav.CurrentURL() }
func (s *Session) MimeType() string           { return s.mimeType }
func (s *Session) LoadedMimeType() string     { return s.loadedMimeType }
func (s *Session) NavState() navigation.State { return s.nav.State() }
func (s *Session) Backend() string            { return s.backend }
func (s *Session) HasProcess() bool           { return s.process != nil }
func (s *Session) Failed() bool               { return s.failed }
func (s *Session) NeedsRespawn() bool         { return s.needsRespawn }
func (s *Session) Visible() bool              { return s.visible }
func (s *Session) Suspended() bool            { return s.suspended }
func (s *Session) Focused() bool              { return s.focused }
func (s *Session) Destroyed() bool            { return s.destroyed }
func (s *Session) Discovering() bool          { return s.cancelDiscovery != nil }
func (s *Session) Status() types.MediaStatus  { return s.status }
func (s *Session) IsPlaying() bool            { return s.status == types.StatusPlaying }
func (s *Session) IsPaused() bool             { return s.status == types.StatusPaused }
func (s *Session) CanNavigateBack() bool      { return s.canBack }
func (s *Session) CanNavigateForward() bool   { return s.canForward }
func (s *Session) Settings() Settings         { return s.settings }
func (s *Session) TextureSize() (int, int)    { return s.pipeline.TextureSize() }
func (s *Session) UsedSize() (int, int)       { return s.pipeline.UsedSize() }
func (s *Session) PendingClearCache() bool    { return s.pendingClearCache }
func (s *Session) SetName(name string)        { s.name = name }

// Navigate loads url. When rediscover is set, http and https URLs have
// their content type fetched in the background before a backend is
// chosen; data, file and about URLs are treated as HTML and any other
// scheme is used as the content type. Without rediscover the hint is
// trusted.
func (s *Session) Navigate(rawURL, mimeHint string, rediscover bool) {
	if s.destroyed {
		return
	}

	rawURL = strings.TrimSpace(rawURL)
	s.generation++
	s.stopDiscovery()
	s.url = rawURL
	s.failed = false
	s.nav.Request(rawURL)

	if mimeHint != "" {
		s.mimeType = mimetypes.Normalize(mimeHint)
	}
	if rawURL == "" {
		s.logger.Debug("navigate to empty url ignored")
		return
	}

	if rediscover || s.mimeType == "" {
		scheme := schemeOf(rawURL)
		switch scheme {
		case "http", "https":
			if rediscover && s.deps.Discoverer != nil {
				s.discover(rawURL)
				return
			}
		case "data", "file", "about":
			s.mimeType = s.deps.Table.DefaultType()
		case "":
		default:
			s.mimeType = scheme
		}
	}
	if s.mimeType == "" {
		s.mimeType = s.deps.Table.DefaultType()
	}

	s.load()
}

func (s *Session) discover(rawURL string) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelDiscovery = cancel

	gen := s.generation
	disc, inbox := s.deps.Discoverer, s.deps.Inbox
	s.logger.Debug("discovering content type", zap.String("url", rawURL))

	go func() {
		mimeType, err := disc.Discover(ctx, rawURL)
		inbox.Post(func() {
			s.discovered(gen, mimeType, err)
		})
	}()
}

func (s *Session) discovered(gen uint64, mimeType string, err error) {
	if gen != s.generation || s.destroyed {
		s.logger.Debug("stale discovery result dropped", zap.Uint64("generation", gen))
		return
	}
	s.stopDiscovery()

	switch {
	case err != nil:
		s.logger.Warn("content type discovery failed, assuming default",
			zap.String("url", s.url),
			zap.Error(err))
		mimeType = s.deps.Table.DefaultType()
	case mimeType == "":
		mimeType = s.deps.Table.DefaultType()
	}

	s.mimeType = mimetypes.Normalize(mimeType)
	s.load()
}

func (s *Session) stopDiscovery() {
	if s.cancelDiscovery != nil {
		s.cancelDiscovery()
		s.cancelDiscovery = nil
	}
}

// load issues the current URL on a renderer able to serve the current
// content type, replacing the running renderer when its backend differs
func (s *Session) load() {
	backend, ok := s.deps.Table.Backend(s.mimeType)
	if !ok {
		s.logger.Warn("no backend for content type", zap.String("mime_type", s.mimeType))
		s.fail(types.NotifyNoPlugin)
		return
	}

	if s.process != nil && !s.process.Exited() && s.backend == backend {
		s.loadedMimeType = s.mimeType
		s.process.LoadURI(s.url)
		return
	}

	s.destroyProcess()
	if !s.launch(backend) {
		return
	}
	s.process.LoadURI(s.url)
}

func (s *Session) launch(backend string) bool {
	if s.deps.Launcher == nil {
		s.fail(types.NotifyNoPlugin)
		return false
	}

	req := types.LaunchRequest{
		Backend:     backend,
		Width:       s.settings.Width,
		Height:      s.settings.Height,
		UserDataDir: s.settings.UserDataDir,
		Language:    s.settings.Language,
		Target:      s.target.String(),
	}
	p, err := s.deps.Launcher.Launch(context.Background(), req)
	if err != nil {
		s.logger.Warn("renderer launch failed", zap.String("backend", backend), zap.Error(err))
		s.observeLaunch(backend, "failed")
		s.fail(types.NotifyNoPlugin)
		return false
	}

	s.observeLaunch(backend, "ok")
	s.process = p
	s.backend = backend
	s.loadedMimeType = s.mimeType
	s.needsRespawn = false
	s.pipeline.Invalidate()
	s.configure()

	s.logger.Info("renderer launched", zap.String("backend", backend), zap.String("mime_type", s.mimeType))
	return true
}

// configure pushes the session state into a fresh renderer
func (s *Session) configure() {
	p := s.process
	p.SetLoop(s.settings.Loop)
	p.SetAutoScale(s.settings.AutoScale)
	if s.settings.UserAgent != "" {
		p.SetUserAgent(s.settings.UserAgent)
	}
	p.Focus(s.focused)
	p.SetBackgroundColor(s.settings.Background)
	p.EnableCookies(s.settings.CookiesEnabled)
	p.SetProxy(s.settings.Proxy.Enabled, s.settings.Proxy.Host, s.settings.Proxy.Port)
	p.SetVolume(s.settings.Volume)
	p.SetPriority(s.priority())
	if s.pendingClearCache {
		p.ClearCache()
		s.pendingClearCache = false
	}
	if s.deps.Cookies != nil {
		if all := s.deps.Cookies.AllCookies(); all != "" {
			p.SetCookies(all)
		}
	}
}

// fail marks the session failed and raises name once per failure
func (s *Session) fail(name string) {
	if s.failed {
		return
	}
	s.failed = true
	s.status = types.StatusNone
	s.canBack, s.canForward = false, false
	s.deps.Notifier.Notify(types.Notification{
		Name: name,
		Args: map[string]string{
			"mime_type": s.mimeType,
			"backend":   s.backend,
			"url":       s.url,
		},
	})
}

func (s *Session) respawn() {
	if s.process != nil || s.failed || s.destroyed || s.url == "" || s.Discovering() {
		return
	}
	s.logger.Info("respawning renderer")
	s.load()
}

// Update pumps the renderer, forwards cookieDiff when non-empty, tears the
// renderer down when it exited, and copies dirty pixels into the texture
// unless the session is hidden or suspended.
func (s *Session) Update(cookieDiff string) {
	if s.destroyed {
		return
	}
	if s.process == nil {
		if s.needsRespawn && s.visible && !s.suspended {
			s.respawn()
		}
		if s.process == nil {
			return
		}
	}

	for _, ev := range s.process.Idle() {
		s.handleEvent(ev)
		if s.process == nil {
			return
		}
	}

	if cookieDiff != "" {
		s.process.SetCookies(cookieDiff)
	}

	if s.process.Exited() {
		// the exit may have raced the pump above; collect what it reported
		for _, ev := range s.process.Idle() {
			s.handleEvent(ev)
			if s.process == nil {
				return
			}
		}
		s.logger.Info("renderer exited", zap.String("backend", s.backend), zap.Bool("failed", s.failed))
		s.destroyProcess()
		s.needsRespawn = true
		return
	}

	if s.suspended || !s.visible {
		return
	}
	s.updateTexture()
}

func (s *Session) handleEvent(ev types.Event) {
	switch e := ev.(type) {
	case types.NavigateBegin, types.NavigateComplete, types.LocationChanged:
		s.nav.Apply(ev)

	case types.PluginFailed:
		s.logger.Warn("renderer crashed", zap.String("backend", s.backend))
		s.observeFailure()
		s.fail(types.NotifyMediaPluginFailed)

	case types.PluginFailedLaunch:
		s.logger.Warn("renderer failed to initialize", zap.String("backend", s.backend))
		s.observeFailure()
		s.fail(types.NotifyNoPlugin)

	case types.CookieSet:
		if s.deps.Reporter != nil {
			s.deps.Reporter.ReportCookie(s, e.Cookie)
		}

	case types.StatusChanged:
		s.status = e.Status

	case types.HistoryChanged:
		s.canBack, s.canForward = e.BackAvailable, e.ForwardAvailable
	}

	s.emit(ev)
}

// CookieHost returns the host cookies reported by this session default to
func (s *Session) CookieHost() string {
	raw := s.nav.CurrentURL()
	if raw == "" {
		raw = s.url
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func (s *Session) updateTexture() {
	if s.target.IsNil() || s.deps.Textures == nil {
		return
	}
	tex, ok := s.deps.Textures.Texture(s.target)
	if !ok {
		return
	}
	if _, err := s.pipeline.Update(s.process.Surface(), tex); err != nil {
		s.logger.Warn("texture update failed", zap.Error(err))
	}
}

func (s *Session) destroyProcess() {
	if s.process == nil {
		return
	}
	p := s.process
	s.process = nil
	s.backend = ""
	s.deps.Reaper.Reap(p)
}

// Destroy shuts the renderer down and returns the texture to its non-media
// state. Pending discovery results are discarded. Calling Destroy twice is
// harmless.
func (s *Session) Destroy() {
	if s.destroyed {
		return
	}
	s.generation++
	s.stopDiscovery()
	s.destroyProcess()

	if !s.target.IsNil() && s.deps.Textures != nil {
		if tex, ok := s.deps.Textures.Texture(s.target); ok {
			s.pipeline.Release(tex)
		}
	}
	s.destroyed = true
	s.observers = nil
	s.logger.Debug("session destroyed")
}

func (s *Session) priority() types.Priority {
	if !s.visible || s.suspended {
		return types.PriorityHidden
	}
	return types.PriorityNormal
}

// SetVisible shows or hides the session. Hidden renderers keep running at
// a lower priority; showing a session whose renderer exited restarts it.
func (s *Session) SetVisible(visible bool) {
	s.visible = visible
	if s.process != nil {
		s.process.SetPriority(s.priority())
		return
	}
	if visible && !s.suspended {
		s.respawn()
	}
}

// SetSuspended stops texture updates and deprioritizes the renderer
func (s *Session) SetSuspended(suspended bool) {
	s.suspended = suspended
	if s.process != nil {
		s.process.SetPriority(s.priority())
	}
}

func (s *Session) observeLaunch(backend, outcome string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveLaunch(backend, outcome)
	}
}

func (s *Session) observeFailure() {
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObservePluginFailure(s.backend)
	}
}

// schemeOf returns the lowercased scheme of rawURL, or "" when it has
// none. A bare host:port such as localhost:8080/x has no scheme.
func schemeOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return ""
	}
	if port, _, _ := strings.Cut(u.Opaque, "/"); port != "" && strings.Trim(port, "0123456789") == "" {
		return ""
	}
	return u.Scheme
}
