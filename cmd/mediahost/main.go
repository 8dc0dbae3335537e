package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	debugapi "github.com/GriffinCanCode/AgentOS/media/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/media/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/media/internal/domain/mimetypes"
	"github.com/GriffinCanCode/AgentOS/media/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/media/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/media/internal/domain/texture"
	"github.com/GriffinCanCode/AgentOS/media/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/media/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/media/internal/logging"
	"github.com/GriffinCanCode/AgentOS/media/internal/providers/discovery"
	"github.com/GriffinCanCode/AgentOS/media/internal/providers/plugin"
	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	dev := flag.Bool("dev", false, "Development logging")
	debugAddr := flag.String("debug", "", "Serve the debug API on this address")
	var urls []string
	flag.Func("open", "Open a session for URL (repeatable)", func(s string) error {
		urls = append(urls, s)
		return nil
	})
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if *debugAddr != "" {
		cfg.Debug.Enabled = true
		cfg.Debug.Addr = *debugAddr
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, urls, logger); err != nil {
		logger.Error("media host stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, urls []string, logger *logging.Logger) error {
	table := mimetypes.Default()
	if cfg.Media.MimeTable != "" {
		t, err := mimetypes.Load(cfg.Media.MimeTable)
		if err != nil {
			return err
		}
		table = t
	}

	profile, err := cfg.Media.Profile()
	if err != nil {
		return err
	}
	background, err := cfg.Media.BackgroundColor()
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(promReg)

	agent := registry.Agent{
		Product: cfg.Media.Product,
		Version: cfg.Media.Version,
		Channel: cfg.Media.Channel,
		Skin:    cfg.Media.Skin,
	}

	discoveryCfg := discovery.DefaultConfig()
	discoveryCfg.Timeout = cfg.Discovery.Timeout
	discoveryCfg.RetryMax = cfg.Discovery.Retries
	discoveryCfg.RateLimit = cfg.Discovery.RateLimit
	discoveryCfg.Burst = cfg.Discovery.Burst
	discoveryCfg.FailureThreshold = cfg.Discovery.FailureThreshold
	discoveryCfg.Cooldown = cfg.Discovery.Cooldown
	discoveryCfg.UserAgent = agent.String()
	prober := discovery.New(discoveryCfg, logger.Component("discovery"), discovery.WithObserver(metrics))

	launcher := plugin.NewExecLauncher(plugin.Config{
		LauncherPath:  cfg.Plugin.LauncherPath,
		LauncherArgs:  cfg.Plugin.LauncherArgs,
		PluginDir:     cfg.Plugin.Dir,
		PluginSuffix:  cfg.Plugin.Suffix,
		ShutdownGrace: cfg.Plugin.ShutdownGrace,
	}, logger.Component("plugin"))

	notifications := logger.Component("notify")
	notifier := types.NotifierFunc(func(n types.Notification) {
		fields := []zap.Field{zap.String("name", n.Name)}
		for k, v := range n.Args {
			fields = append(fields, zap.String(k, v))
		}
		notifications.Warn("media notification", fields...)
	})

	defaults := session.DefaultSettings()
	defaults.Width = cfg.Media.Width
	defaults.Height = cfg.Media.Height
	defaults.Volume = cfg.Media.Volume
	defaults.Background = background
	defaults.HomeURL = cfg.Media.HomeURL
	defaults.Language = cfg.Plugin.Language
	defaults.UserDataDir = profile.BrowserProfile()
	defaults.CookiesEnabled = cfg.Cookies.Enabled
	defaults.Proxy = session.Proxy{Enabled: cfg.Proxy.Enabled, Host: cfg.Proxy.Host, Port: cfg.Proxy.Port}

	regCfg := registry.Config{
		Defaults:   defaults,
		Agent:      agent,
		ProfileDir: cfg.Media.SettingsDir,
	}
	if cfg.Cookies.Persist {
		regCfg.CookieFile = profile.CookieFile()
	}

	textures := texture.NewMemoryResolver()
	reg := registry.New(regCfg, registry.Deps{
		Launcher:   launcher,
		Discoverer: prober,
		Fetcher:    prober,
		Agents:     prober,
		Table:      table,
		Textures:   textures,
		Notifier:   notifier,
		Metrics:    metrics,
		Logger:     logger.Component("registry"),
	})

	// A missing snapshot is not an error; a corrupt one leaves the jar empty.
	_ = reg.LoadCookies()

	for _, u := range urls {
		target := types.NewTargetID()
		textures.Bind(target)
		reg.CreateOrUpdate(target, u, "", cfg.Media.Width, cfg.Media.Height, true, false)
		logger.Info("session opened", zap.String("target", target.String()), zap.String("url", u))
	}

	var srv *http.Server
	serveErr := make(chan error, 1)
	if cfg.Debug.Enabled {
		srv = newDebugServer(cfg, reg, prober, metrics, promReg, logger)
		go func() {
			logger.Info("debug API listening", zap.String("addr", cfg.Debug.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()
	}

	ticker := time.NewTicker(cfg.Media.FrameInterval())
	defer ticker.Stop()

	logger.Info("media host started",
		zap.Duration("frame_interval", cfg.Media.FrameInterval()),
		zap.String("agent", agent.String()),
		zap.String("profile", profile.Root))

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			break loop
		case err := <-serveErr:
			runErr = fmt.Errorf("debug API: %w", err)
			break loop
		case <-ticker.C:
			reg.Tick()
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("debug API shutdown", zap.Error(err))
		}
		cancel()
	}
	return errors.Join(runErr, reg.Close())
}

func newDebugServer(cfg *config.Config, reg *registry.Registry, prober *discovery.Client, metrics *monitoring.Metrics, gatherer prometheus.Gatherer, logger *logging.Logger) *http.Server {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	limits := middleware.DefaultRateLimitConfig()
	limits.RequestsPerSecond = cfg.Debug.RateLimit
	limits.Burst = 2 * cfg.Debug.RateLimit

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Debug.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.Debug.AllowedOrigins
	}

	h := debugapi.NewHandlers(reg, prober, metrics, cfg.Media.Version)
	router := debugapi.NewRouter(h, debugapi.RouterConfig{
		CORS:        cors,
		RateLimit:   limits,
		GlobalLimit: middleware.RateLimitConfig{RequestsPerSecond: 10 * cfg.Debug.RateLimit, Burst: 20 * cfg.Debug.RateLimit},
		Gatherer:    gatherer,
	}, metrics, logger.Component("debug"))

	return &http.Server{
		Addr:              cfg.Debug.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
