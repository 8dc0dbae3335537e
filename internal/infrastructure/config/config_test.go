package config

import (
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MEDIA_FRAME_RATE", "60")
	t.Setenv("MEDIA_AGENT_SKIN", "dark")
	t.Setenv("MEDIA_ACCOUNT", "alice")
	t.Setenv("PLUGIN_LAUNCHER_ARGS", "--sandbox,--quiet")
	t.Setenv("PLUGIN_SHUTDOWN_GRACE", "750ms")
	t.Setenv("DISCOVERY_RATE_LIMIT", "2.5")
	t.Setenv("PROXY_ENABLED", "true")
	t.Setenv("PROXY_HOST", "proxy.local")
	t.Setenv("PROXY_PORT", "3128")
	t.Setenv("DEBUG_ALLOWED_ORIGINS", "http://localhost:3000,https://tools.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Media.FrameRate)
	assert.Equal(t, "dark", cfg.Media.Skin)
	assert.Equal(t, []string{"--sandbox", "--quiet"}, cfg.Plugin.LauncherArgs)
	assert.Equal(t, 750*time.Millisecond, cfg.Plugin.ShutdownGrace)
	assert.InDelta(t, 2.5, cfg.Discovery.RateLimit, 1e-9)
	assert.Equal(t, ProxyConfig{Enabled: true, Host: "proxy.local", Port: 3128}, cfg.Proxy)
	assert.Equal(t, time.Second/60, cfg.Media.FrameInterval())
	assert.Equal(t, []string{"http://localhost:3000", "https://tools.local"}, cfg.Debug.AllowedOrigins)

	profile, err := cfg.Media.Profile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("settings", "alice"), profile.Root)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"frame rate", map[string]string{"MEDIA_FRAME_RATE": "0"}},
		{"background", map[string]string{"MEDIA_BACKGROUND": "blue"}},
		{"account", map[string]string{"MEDIA_ACCOUNT": "../etc"}},
		{"proxy host", map[string]string{"PROXY_ENABLED": "true"}},
		{"not a number", map[string]string{"MEDIA_WIDTH": "wide"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)

			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}

func TestBackgroundColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#000000ff", color.RGBA{A: 0xff}, true},
		{"#336699", color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}, true},
		{"11223344", color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}, true},
		{"#123", color.RGBA{}, false},
		{"#zzzzzz", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, err := MediaConfig{Background: tt.in}.BackgroundColor()
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDefaultProfileIsSettingsDir(t *testing.T) {
	profile, err := Default().Media.Profile()
	require.NoError(t, err)
	assert.Equal(t, "settings", profile.Root)
}
