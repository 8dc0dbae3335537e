package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/paths"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all media host configuration.
type Config struct {
	Media     MediaConfig
	Plugin    PluginConfig
	Discovery DiscoveryConfig
	Cookies   CookieConfig
	Proxy     ProxyConfig
	Logging   LogConfig
	Debug     DebugConfig
}

// MediaConfig holds session defaults and the user agent parts.
type MediaConfig struct {
	FrameRate   int     `envconfig:"MEDIA_FRAME_RATE" default:"30"`
	Width       int     `envconfig:"MEDIA_WIDTH" default:"1024"`
	Height      int     `envconfig:"MEDIA_HEIGHT" default:"1024"`
	Volume      float32 `envconfig:"MEDIA_VOLUME" default:"1"`
	Product     string  `envconfig:"MEDIA_AGENT_PRODUCT" default:"AgentOS"`
	Version     string  `envconfig:"MEDIA_AGENT_VERSION" default:"1.0.0"`
	Channel     string  `envconfig:"MEDIA_AGENT_CHANNEL" default:"Release"`
	Skin        string  `envconfig:"MEDIA_AGENT_SKIN" default:"default"`
	Background  string  `envconfig:"MEDIA_BACKGROUND" default:"#000000ff"`
	HomeURL     string  `envconfig:"MEDIA_HOME_URL" default:"about:blank"`
	MimeTable   string  `envconfig:"MEDIA_MIME_TABLE"`
	SettingsDir string  `envconfig:"MEDIA_SETTINGS_DIR" default:"settings"`
	Account     string  `envconfig:"MEDIA_ACCOUNT"`
}

// PluginConfig locates renderer binaries.
type PluginConfig struct {
	LauncherPath  string        `envconfig:"PLUGIN_LAUNCHER" default:"bin/media_launcher"`
	LauncherArgs  []string      `envconfig:"PLUGIN_LAUNCHER_ARGS"`
	Dir           string        `envconfig:"PLUGIN_DIR" default:"plugins"`
	Suffix        string        `envconfig:"PLUGIN_SUFFIX"`
	ShutdownGrace time.Duration `envconfig:"PLUGIN_SHUTDOWN_GRACE" default:"5s"`
	Language      string        `envconfig:"PLUGIN_LANGUAGE" default:"en"`
}

// DiscoveryConfig tunes content type probing.
type DiscoveryConfig struct {
	Timeout          time.Duration `envconfig:"DISCOVERY_TIMEOUT" default:"10s"`
	Retries          int           `envconfig:"DISCOVERY_RETRIES" default:"1"`
	RateLimit        float64       `envconfig:"DISCOVERY_RATE_LIMIT" default:"20"`
	Burst            int           `envconfig:"DISCOVERY_BURST" default:"10"`
	FailureThreshold int           `envconfig:"DISCOVERY_FAILURE_THRESHOLD" default:"3"`
	Cooldown         time.Duration `envconfig:"DISCOVERY_COOLDOWN" default:"30s"`
}

// CookieConfig holds cookie jar configuration.
type CookieConfig struct {
	Enabled bool `envconfig:"COOKIES_ENABLED" default:"true"`
	Persist bool `envconfig:"COOKIES_PERSIST" default:"true"`
}

// ProxyConfig holds renderer proxy configuration.
type ProxyConfig struct {
	Enabled bool   `envconfig:"PROXY_ENABLED" default:"false"`
	Host    string `envconfig:"PROXY_HOST"`
	Port    int    `envconfig:"PROXY_PORT" default:"8080"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// DebugConfig holds the debug HTTP surface configuration.
type DebugConfig struct {
	Enabled        bool     `envconfig:"DEBUG_ENABLED" default:"false"`
	Addr           string   `envconfig:"DEBUG_ADDR" default:"127.0.0.1:9191"`
	AllowedOrigins []string `envconfig:"DEBUG_ALLOWED_ORIGINS"`
	RateLimit      int      `envconfig:"DEBUG_RATE_LIMIT" default:"20"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Media: MediaConfig{
			FrameRate:   30,
			Width:       1024,
			Height:      1024,
			Volume:      1,
			Product:     "AgentOS",
			Version:     "1.0.0",
			Channel:     "Release",
			Skin:        "default",
			Background:  "#000000ff",
			HomeURL:     "about:blank",
			SettingsDir: "settings",
		},
		Plugin: PluginConfig{
			LauncherPath:  "bin/media_launcher",
			Dir:           "plugins",
			ShutdownGrace: 5 * time.Second,
			Language:      "en",
		},
		Discovery: DiscoveryConfig{
			Timeout:          10 * time.Second,
			Retries:          1,
			RateLimit:        20,
			Burst:            10,
			FailureThreshold: 3,
			Cooldown:         30 * time.Second,
		},
		Cookies: CookieConfig{
			Enabled: true,
			Persist: true,
		},
		Proxy: ProxyConfig{
			Port: 8080,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Debug: DebugConfig{
			Addr:      "127.0.0.1:9191",
			RateLimit: 20,
		},
	}
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	var errs []error
	if c.Media.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame rate must be positive, got %d", c.Media.FrameRate))
	}
	if c.Media.Width <= 0 || c.Media.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid default size %dx%d", c.Media.Width, c.Media.Height))
	}
	if _, err := c.Media.BackgroundColor(); err != nil {
		errs = append(errs, err)
	}
	if c.Media.Account != "" {
		if err := paths.ValidateAccountName(c.Media.Account); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Proxy.Enabled {
		if c.Proxy.Host == "" {
			errs = append(errs, errors.New("proxy enabled without a host"))
		}
		if c.Proxy.Port <= 0 || c.Proxy.Port > 65535 {
			errs = append(errs, fmt.Errorf("invalid proxy port %d", c.Proxy.Port))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// FrameInterval is the time between two registry ticks
func (m MediaConfig) FrameInterval() time.Duration {
	if m.FrameRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(m.FrameRate)
}

// BackgroundColor parses Background as #rrggbb or #rrggbbaa
func (m MediaConfig) BackgroundColor() (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(m.Background), "#")
	if len(s) == 6 {
		s += "ff"
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 4 {
		return color.RGBA{}, fmt.Errorf("invalid background color %q", m.Background)
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

// Profile returns the directory of the active profile
func (m MediaConfig) Profile() (paths.Profile, error) {
	if m.Account == "" {
		return paths.At(m.SettingsDir), nil
	}
	return paths.Account(m.SettingsDir, m.Account)
}
