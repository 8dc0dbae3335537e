package registry

import (
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/media/internal/domain/navigation"
	"github.com/GriffinCanCode/AgentOS/media/internal/domain/texture"
	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/media/tests/helpers/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	reg        *Registry
	launcher   *testutil.FakeLauncher
	discoverer *testutil.FakeDiscoverer
	notifier   *testutil.MockNotifier
	textures   *texture.MemoryResolver
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		launcher:   testutil.NewFakeLauncher(),
		discoverer: testutil.NewFakeDiscoverer(),
		notifier:   testutil.NewMockNotifier(t),
		textures:   texture.NewMemoryResolver(),
	}
	f.reg = New(cfg, Deps{
		Launcher:   f.launcher,
		Discoverer: f.discoverer,
		Agents:     f.discoverer,
		Textures:   f.textures,
		Notifier:   f.notifier,
		Clock:      func() time.Time { return epoch },
	})
	t.Cleanup(func() {
		_ = f.reg.Close()
	})
	return f
}

func TestCreateOrUpdateReusesSessionPerTarget(t *testing.T) {
	f := newFixture(t, Config{})
	target := types.NewTargetID()

	first := f.reg.CreateOrUpdate(target, "about:one", "", 640, 480, false, false)
	second := f.reg.CreateOrUpdate(target, "rtsp://cam.example/", "", 320, 240, true, true)

	assert.Same(t, first, second)
	assert.Equal(t, 1, f.reg.Len())
	assert.Equal(t, "rtsp://cam.example/", second.URL())
	assert.Equal(t, 320, second.Settings().Width)
	assert.True(t, second.Settings().Loop)

	got, ok := f.reg.Lookup(target)
	require.True(t, ok)
	assert.Same(t, first, got)

	// re-targeting stops the old media before loading the new one
	old := f.launcher.Processes()[0]
	assert.True(t, old.Called("Stop"))
}

func TestAtMostOneSessionPerTarget(t *testing.T) {
	f := newFixture(t, Config{})
	targets := []types.TargetID{types.NewTargetID(), types.NewTargetID(), types.NewTargetID()}

	for i := range 12 {
		f.reg.CreateOrUpdate(targets[i%len(targets)], "about:blank", "", 0, 0, false, false)
		seen := make(map[types.TargetID]int)
		for _, s := range f.reg.Sessions() {
			seen[s.Target()]++
		}
		for target, n := range seen {
			assert.Equal(t, 1, n, "target %s", target)
		}
	}
	assert.Equal(t, 3, f.reg.Len())
}

func TestNullTargetIsNeverIndexed(t *testing.T) {
	f := newFixture(t, Config{})

	a := f.reg.CreateOrUpdate(types.NilTarget, "about:blank", "", 0, 0, false, false)
	b := f.reg.CreateOrUpdate(types.NilTarget, "about:blank", "", 0, 0, false, false)

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, f.reg.Len())
	_, ok := f.reg.Lookup(types.NilTarget)
	assert.False(t, ok)
}

func TestRemoveIsIdempotent(t *testing.T) {
	f := newFixture(t, Config{})
	target := types.NewTargetID()
	s := f.reg.CreateOrUpdate(target, "about:blank", "", 0, 0, false, false)
	p := f.launcher.Last()

	f.reg.Remove(s)
	f.reg.Remove(s)
	f.reg.Remove(nil)
	require.NoError(t, f.reg.Wait())

	assert.Equal(t, 0, f.reg.Len())
	assert.True(t, s.Destroyed())
	assert.True(t, p.Closed())
	_, ok := f.reg.Lookup(target)
	assert.False(t, ok)

	fresh := f.reg.CreateOrUpdate(target, "about:blank", "", 0, 0, false, false)
	assert.NotSame(t, s, fresh)
}

func TestTickIsolatesCrashes(t *testing.T) {
	f := newFixture(t, Config{})
	a := f.reg.CreateOrUpdate(types.NewTargetID(), "about:a", "", 0, 0, false, false)
	pa := f.launcher.Last()
	b := f.reg.CreateOrUpdate(types.NewTargetID(), "about:b", "", 0, 0, false, false)
	pb := f.launcher.Last()
	c := f.reg.CreateOrUpdate(types.NewTargetID(), "about:c", "", 0, 0, false, false)
	pc := f.launcher.Last()

	pa.PanicOnIdle("renderer pipe corrupted")
	pb.Push(types.PluginFailed{})
	pb.Exit()
	pc.Push(types.NavigateBegin{URL: "about:c"}, types.LocationChanged{URL: "about:c"})

	assert.NotPanics(t, f.reg.Tick)

	assert.False(t, a.Failed())
	assert.True(t, b.Failed())
	assert.False(t, b.HasProcess())
	assert.Equal(t, navigation.ServerFirstLocationChanged, c.NavState())
	assert.Equal(t, "about:c", c.CurrentURL())
	assert.Equal(t, 1, f.notifier.CountNotifications(types.NotifyMediaPluginFailed))

	// the panicking session recovers on the next frame
	pa.Push(types.NavigateBegin{URL: "about:a"})
	f.reg.Tick()
	assert.Equal(t, navigation.ServerBegun, a.NavState())
}

func TestTickAppliesDiscoveryResults(t *testing.T) {
	f := newFixture(t, Config{})
	f.discoverer.Set("http://video.example/clip", "video/mp4")
	s := f.reg.CreateOrUpdate(types.NewTargetID(), "http://video.example/clip", "", 0, 0, false, false)

	require.Eventually(t, func() bool {
		return f.reg.inbox.Len() > 0
	}, time.Second, 5*time.Millisecond)
	f.reg.Tick()

	assert.Equal(t, "media_plugin_libvlc", s.Backend())
}

func TestMimeHintSkipsDiscovery(t *testing.T) {
	f := newFixture(t, Config{})
	s := f.reg.CreateOrUpdate(types.NewTargetID(), "http://video.example/clip", "video/mp4", 0, 0, false, false)

	assert.Empty(t, f.discoverer.Lookups())
	assert.Equal(t, "media_plugin_libvlc", s.Backend())
}

func TestTargetOperations(t *testing.T) {
	f := newFixture(t, Config{})
	one, two := types.NewTargetID(), types.NewTargetID()
	s1 := f.reg.CreateOrUpdate(one, "about:blank", "", 0, 0, false, false)
	p1 := f.launcher.Last()
	s2 := f.reg.CreateOrUpdate(two, "about:blank", "", 0, 0, false, false)

	require.NoError(t, f.reg.Play(one))
	require.NoError(t, f.reg.Pause(one))
	require.NoError(t, f.reg.Stop(one))
	require.NoError(t, f.reg.Navigate(one, "about:next", ""))
	for _, call := range []string{"Play", "Pause", "Stop", "LoadURI about:next"} {
		assert.True(t, p1.Called(call), call)
	}

	require.NoError(t, f.reg.Focus(one))
	require.NoError(t, f.reg.Focus(two))
	assert.False(t, s1.Focused())
	assert.True(t, s2.Focused())
	focused, ok := f.reg.Focused()
	require.True(t, ok)
	assert.Same(t, s2, focused)

	f.reg.Blur()
	assert.False(t, s2.Focused())

	require.NoError(t, f.reg.SetVisible(one, false))
	assert.Equal(t, types.PriorityHidden, p1.CurrentPriority())

	missing := types.NewTargetID()
	assert.ErrorIs(t, f.reg.Play(missing), ErrUnknownTarget)
	assert.ErrorIs(t, f.reg.Navigate(missing, "about:blank", ""), ErrUnknownTarget)
	assert.ErrorIs(t, f.reg.Focus(missing), ErrUnknownTarget)
	assert.ErrorIs(t, f.reg.SetVisible(missing, true), ErrUnknownTarget)
}

func TestSnapshotIsPublishedPerTick(t *testing.T) {
	f := newFixture(t, Config{})
	assert.Empty(t, f.reg.Snapshot())

	target := types.NewTargetID()
	f.reg.CreateOrUpdate(target, "about:blank", "", 0, 0, false, false)
	f.reg.CreateOrUpdate(types.NilTarget, "", "", 0, 0, false, false)
	assert.Empty(t, f.reg.Snapshot(), "snapshot only changes on tick")

	f.reg.Tick()
	infos := f.reg.Snapshot()
	require.Len(t, infos, 2)
	assert.Equal(t, target.String(), infos[0].Target)
	assert.Equal(t, "media_plugin_cef", infos[0].Backend)
	assert.Equal(t, "server_sent", infos[0].NavState)
	assert.True(t, infos[0].Running)
	assert.Empty(t, infos[1].Target)
	assert.False(t, infos[1].Running)
}

func TestCloseDestroysEverything(t *testing.T) {
	f := newFixture(t, Config{})
	s := f.reg.CreateOrUpdate(types.NewTargetID(), "about:blank", "", 0, 0, false, false)
	p := f.launcher.Last()

	require.NoError(t, f.reg.Close())
	require.NoError(t, f.reg.Close())

	assert.True(t, s.Destroyed())
	assert.True(t, p.Closed())
	assert.Equal(t, 0, f.reg.Len())
	assert.Empty(t, f.reg.Snapshot())
}

func TestAgentString(t *testing.T) {
	assert.Equal(t, "", Agent{}.String())
	assert.Equal(t, "Viewer/2.1.0 (Release; default skin)",
		Agent{Product: "Viewer", Version: "2.1.0", Channel: "Release"}.String())
	assert.Equal(t, "Viewer/2.1.0 (Beta; dark skin)",
		Agent{Product: "Viewer", Version: "2.1.0", Channel: "Beta", Skin: "dark"}.String())
}
