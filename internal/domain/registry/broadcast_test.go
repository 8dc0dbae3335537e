package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/media/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/media/tests/helpers/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSessions(t *testing.T, f *fixture) []*testutil.FakeProcess {
	t.Helper()
	f.reg.CreateOrUpdate(types.NewTargetID(), "about:a", "", 0, 0, false, false)
	f.reg.CreateOrUpdate(types.NewTargetID(), "rtsp://cam.example/", "", 0, 0, false, false)
	procs := f.launcher.Processes()
	require.Len(t, procs, 2)
	for _, p := range procs {
		p.ResetCalls()
	}
	return procs
}

func TestBroadcastReachesEverySession(t *testing.T) {
	tests := []struct {
		name   string
		change Change
		call   string
	}{
		{"cookies enabled", CookiesEnabled(false), "EnableCookies false"},
		{"proxy", Proxy{Enabled: true, Host: "proxy.local", Port: 8080}, "SetProxy true proxy.local:8080"},
		{"volume", Volume(0.25), "SetVolume 0.25"},
		{"user agent", UserAgent("Custom/1.0"), "SetUserAgent Custom/1.0"},
		{"clear cache", ClearCache{}, "ClearCache"},
		{"clear cookies", ClearAllCookies{}, "ClearCookies"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{})
			procs := twoSessions(t, f)

			f.reg.Broadcast(tt.change)

			for _, p := range procs {
				assert.True(t, p.Called(tt.call), "%s on %s", tt.call, p.Backend())
			}
		})
	}
}

func TestBroadcastBecomesDefaultForNewSessions(t *testing.T) {
	f := newFixture(t, Config{})

	f.reg.Broadcast(CookiesEnabled(false))
	f.reg.Broadcast(Proxy{Enabled: true, Host: "proxy.local", Port: 3128})
	f.reg.Broadcast(Volume(0.5))
	f.reg.Broadcast(UserAgent("Custom/1.0"))

	s := f.reg.CreateOrUpdate(types.NewTargetID(), "about:blank", "", 0, 0, false, false)
	assert.Equal(t, session.Proxy{Enabled: true, Host: "proxy.local", Port: 3128}, s.Settings().Proxy)

	p := f.launcher.Last()
	for _, call := range []string{
		"EnableCookies false",
		"SetProxy true proxy.local:3128",
		"SetVolume 0.5",
		"SetUserAgent Custom/1.0",
	} {
		assert.True(t, p.Called(call), call)
	}
}

func TestSkinRecomposesUserAgent(t *testing.T) {
	f := newFixture(t, Config{Agent: Agent{Product: "Viewer", Version: "2.1.0", Channel: "Release"}})
	procs := twoSessions(t, f)

	f.reg.Broadcast(Skin("dark"))
	for _, p := range procs {
		assert.True(t, p.Called("SetUserAgent Viewer/2.1.0 (Release; dark skin)"))
	}
	assert.Equal(t, "Viewer/2.1.0 (Release; dark skin)", f.discoverer.UserAgent())

	f.reg.Broadcast(UserAgent("Custom/1.0"))
	assert.Equal(t, "Custom/1.0", f.discoverer.UserAgent())

	f.reg.Broadcast(UserAgent(""))
	for _, p := range procs {
		calls := p.Calls()
		assert.Equal(t, "SetUserAgent Viewer/2.1.0 (Release; dark skin)", calls[len(calls)-1])
	}
	assert.Equal(t, "Viewer/2.1.0 (Release; dark skin)", f.discoverer.UserAgent())
}

func TestClearCachePendsForSessionsWithoutRenderer(t *testing.T) {
	f := newFixture(t, Config{})
	s := f.reg.CreateOrUpdate(types.NewTargetID(), "", "", 0, 0, false, false)

	f.reg.Broadcast(ClearCache{})
	assert.True(t, s.PendingClearCache())

	s.Navigate("about:blank", "", true)
	assert.True(t, f.launcher.Last().Called("ClearCache"))
}

func TestClearPurgesProfiles(t *testing.T) {
	base := t.TempDir()
	for _, rel := range []string{
		"plugin_cookies.txt",
		"alice/browser_profile/cookies",
		"alice/cache/blob",
		"alice/settings.xml",
	} {
		p := filepath.Join(base, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}
	f := newFixture(t, Config{ProfileDir: base})
	require.NoError(t, f.reg.AddCookie("sid", "1", "example.com", epoch.Add(time.Hour), "/", false))

	f.reg.Broadcast(ClearAllCookies{})
	require.NoError(t, f.reg.Wait())

	assert.Equal(t, 0, f.reg.Cookies().Len())
	assert.NoFileExists(t, filepath.Join(base, "plugin_cookies.txt"))
	assert.NoFileExists(t, filepath.Join(base, "alice", "browser_profile", "cookies"))
	assert.FileExists(t, filepath.Join(base, "alice", "cache", "blob"))

	f.reg.Broadcast(ClearCache{})
	require.NoError(t, f.reg.Wait())
	assert.NoFileExists(t, filepath.Join(base, "alice", "cache", "blob"))
	assert.FileExists(t, filepath.Join(base, "alice", "settings.xml"))
}
