package plugin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperPlugin is not a real test. It is re-executed by the launcher
// tests to act as a renderer.
func TestHelperPlugin(t *testing.T) {
	if os.Getenv("MEDIA_HELPER_PLUGIN") != "1" {
		return
	}
	runHelperPlugin(os.Getenv("MEDIA_HELPER_MODE"))
	os.Exit(0)
}

func runHelperPlugin(mode string) {
	if mode == "die_early" {
		os.Exit(2)
	}

	out := os.Stdout
	r := NewReader(os.Stdin)
	for {
		var c Command
		if err := r.Next(&c); err != nil {
			if mode == "ignore_shutdown" {
				time.Sleep(time.Hour)
			}
			return
		}

		switch c.Op {
		case OpInit:
			_ = WriteLine(out, Message{Event: EventReady})
			_ = WriteLine(out, Message{Event: EventSizeChanged, Width: 3, Height: 2, BitsWidth: 4, BitsHeight: 2, Depth: 4})
			_ = WriteLine(out, Message{Event: EventFrame, X: 0, Y: 0, Width: 2, Height: 1, Pixels: []byte{
				0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f,
			}})
		case OpLoadURI:
			if strings.HasPrefix(c.URL, "crash:") {
				os.Exit(3)
			}
			_ = WriteLine(out, Message{Event: EventNavigateBegin, URL: c.URL})
			_ = WriteLine(out, Message{Event: EventLocationChanged, URL: c.URL})
			_ = WriteLine(out, Message{Event: EventNavigateComplete, URL: c.URL})
		case OpSetCookies:
			_ = WriteLine(out, Message{Event: EventCookieSet, Cookie: c.Text})
		case OpShutdown:
			if mode != "ignore_shutdown" {
				return
			}
		}
	}
}

func newTestLauncher(t *testing.T, mode string, grace time.Duration) *ExecLauncher {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media_plugin_test"), []byte("stub"), 0o755))

	return NewExecLauncher(Config{
		LauncherPath:  os.Args[0],
		LauncherArgs:  []string{"-test.run=^TestHelperPlugin$", "--"},
		PluginDir:     dir,
		ShutdownGrace: grace,
		Env:           []string{"MEDIA_HELPER_PLUGIN=1", "MEDIA_HELPER_MODE=" + mode},
	}, nil)
}

func launch(t *testing.T, l *ExecLauncher) types.Process {
	t.Helper()
	p, err := l.Launch(context.Background(), types.LaunchRequest{Backend: "media_plugin_test", Width: 4, Height: 2})
	require.NoError(t, err)
	return p
}

// collect pumps p until pred accepts the events seen so far.
func collect(t *testing.T, p types.Process, pred func([]types.Event) bool) []types.Event {
	t.Helper()
	var events []types.Event
	require.Eventually(t, func() bool {
		events = append(events, p.Idle()...)
		return pred(events)
	}, 10*time.Second, 10*time.Millisecond)
	return events
}

func contains[T types.Event](events []types.Event) int {
	n := 0
	for _, ev := range events {
		if _, ok := ev.(T); ok {
			n++
		}
	}
	return n
}

func TestLaunchErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		cfg    Config
		reason string
	}{
		{
			name:   "no launcher configured",
			cfg:    Config{PluginDir: dir},
			reason: "launcher unavailable",
		},
		{
			name:   "launcher missing",
			cfg:    Config{LauncherPath: filepath.Join(dir, "nope"), PluginDir: dir},
			reason: "launcher unavailable",
		},
		{
			name:   "plugin missing",
			cfg:    Config{LauncherPath: os.Args[0], PluginDir: dir},
			reason: "plugin unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewExecLauncher(tt.cfg, nil)
			_, err := l.Launch(context.Background(), types.LaunchRequest{Backend: "media_plugin_cef"})

			var lerr *types.LaunchError
			require.ErrorAs(t, err, &lerr)
			assert.Equal(t, "media_plugin_cef", lerr.Backend)
			assert.Equal(t, tt.reason, lerr.Reason)
		})
	}
}

func TestRendererRoundTrip(t *testing.T) {
	l := newTestLauncher(t, "", time.Second)
	p := launch(t, l)
	defer p.Terminate()

	p.LoadURI("https://example.com/")
	events := collect(t, p, func(evs []types.Event) bool {
		return contains[types.NavigateComplete](evs) == 1
	})
	assert.Equal(t, []types.Event{
		types.NavigateBegin{URL: "https://example.com/"},
		types.LocationChanged{URL: "https://example.com/"},
		types.NavigateComplete{URL: "https://example.com/"},
	}, events)

	surf := p.Surface()
	require.NotNil(t, surf)
	assert.Equal(t, 3, surf.Width())
	assert.Equal(t, 4, surf.BitsWidth())
	assert.Equal(t, 16, surf.Stride())
	assert.Equal(t, byte(0x7f), surf.Bits()[4])
	assert.Equal(t, byte(0), surf.Bits()[8])
	dirty, ok := surf.DirtyRect()
	assert.True(t, ok)
	assert.Equal(t, 3, dirty.Dx())

	p.SetCookies("a=1; domain=example.com; path=/")
	events = collect(t, p, func(evs []types.Event) bool {
		return contains[types.CookieSet](evs) == 1
	})
	assert.Equal(t, types.CookieSet{Cookie: "a=1; domain=example.com; path=/"}, events[0])

	require.NoError(t, p.Close())
	assert.True(t, p.Exited())
	assert.Empty(t, p.Idle(), "a requested shutdown is not a crash")
}

func TestCrashIsReportedOnce(t *testing.T) {
	p := launch(t, newTestLauncher(t, "", time.Second))
	defer p.Terminate()

	p.LoadURI("crash://now")
	events := collect(t, p, func(evs []types.Event) bool {
		return contains[types.PluginFailed](evs) > 0
	})
	assert.Equal(t, 1, contains[types.PluginFailed](events))
	assert.True(t, p.Exited())
	assert.Empty(t, p.Idle())
	assert.False(t, p.KeyEvent(types.KeyDown, 'A', 0))
}

func TestExitBeforeReadyIsFailedLaunch(t *testing.T) {
	p := launch(t, newTestLauncher(t, "die_early", time.Second))
	defer p.Terminate()

	events := collect(t, p, func(evs []types.Event) bool {
		return len(evs) > 0
	})
	assert.Equal(t, []types.Event{types.PluginFailedLaunch{}}, events)
}

func TestCloseKillsUnresponsiveRenderer(t *testing.T) {
	p := launch(t, newTestLauncher(t, "ignore_shutdown", 100*time.Millisecond))

	collect(t, p, func([]types.Event) bool {
		return p.Surface() != nil
	})

	start := time.Now()
	require.NoError(t, p.Close())
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, p.Exited())

	// Commands after close are dropped rather than panicking.
	p.Play()
	assert.NoError(t, p.Terminate())
}
