package session

import (
	"testing"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/media/tests/helpers/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func launchedSession(t *testing.T, surf *testutil.FakeSurface) (*Session, *testutil.FakeProcess) {
	t.Helper()
	h := newHarness(t)
	if surf != nil {
		h.launcher.WithSurfaces(func() types.Surface { return surf })
	}
	s := h.session(t)
	h.textures.Bind(s.Target())
	s.Navigate("about:blank", "", true)
	p := h.launcher.Last()
	require.NotNil(t, p)
	p.ResetCalls()
	return s, p
}

func TestMouseCoordinateSpaces(t *testing.T) {
	surf := testutil.NewFakeSurface(300, 200, 4)
	s, p := launchedSession(t, surf)
	s.Update("")

	tests := []struct {
		name string
		in   types.MouseInput
		want string
	}{
		{
			name: "renderer",
			in:   types.MouseInput{Kind: types.MouseDown, Space: types.SpaceRenderer, X: 12, Y: 34, Button: 1},
			want: "MouseEvent down 1 12,34 0",
		},
		{
			name: "surface",
			in:   types.MouseInput{Kind: types.MouseMove, Space: types.SpaceSurface, X: 50, Y: 25, SurfaceW: 100, SurfaceH: 100},
			want: "MouseEvent move 0 150,50 0",
		},
		{
			// texture is 512x256 with 200 used rows
			name: "texture",
			in:   types.MouseInput{Kind: types.MouseUp, Space: types.SpaceTexture, X: 0.25, Y: 0.5},
			want: "MouseEvent up 0 128,72 0",
		},
		{
			name: "texture wraps",
			in:   types.MouseInput{Kind: types.MouseDoubleClick, Space: types.SpaceTexture, X: 1.25, Y: -0.5},
			want: "MouseEvent double_click 0 128,72 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.ResetCalls()
			assert.True(t, s.HandleInput(tt.in))
			assert.Equal(t, []string{tt.want}, p.Calls())
		})
	}
}

func TestMouseCaptureLostReleasesAtLastPosition(t *testing.T) {
	s, p := launchedSession(t, nil)

	s.HandleInput(types.MouseInput{Kind: types.MouseDown, X: 40, Y: 60})
	s.MouseCaptureLost()

	assert.Equal(t, []string{
		"MouseEvent down 0 40,60 0",
		"MouseEvent up 0 40,60 0",
	}, p.Calls())
}

func TestClipboardShortcuts(t *testing.T) {
	s, p := launchedSession(t, nil)

	assert.True(t, s.HandleInput(types.KeyInput{Key: 'C', Modifiers: types.ModControl}))
	assert.True(t, s.HandleInput(types.KeyInput{Key: 'V', Modifiers: types.ModControl}))
	assert.True(t, s.HandleInput(types.KeyInput{Key: 'X', Modifiers: types.ModControl}))
	assert.Equal(t, []string{"Copy", "Paste", "Cut"}, p.Calls())

	p.ResetCalls()
	s.HandleInput(types.KeyInput{Key: 'C', Modifiers: types.ModControl | types.ModShift})
	assert.Equal(t, []string{"KeyEvent down 67 3", "KeyEvent up 67 3"}, p.Calls())
}

func TestKeysAreSentAsPressAndRelease(t *testing.T) {
	s, p := launchedSession(t, nil)

	assert.True(t, s.HandleInput(types.KeyInput{Key: 'A'}))
	assert.Equal(t, []string{"KeyEvent down 65 0", "KeyEvent up 65 0"}, p.Calls())

	p.SetKeyResult(false)
	assert.False(t, s.HandleInput(types.KeyInput{Key: 'B'}))
}

func TestTextInputFiltersControlCharacters(t *testing.T) {
	s, p := launchedSession(t, nil)

	assert.False(t, s.HandleInput(types.TextInput{Char: '\b'}))
	assert.False(t, s.HandleInput(types.TextInput{Char: 127}))
	assert.True(t, s.HandleInput(types.TextInput{Char: 'é'}))
	assert.Equal(t, []string{"TextInput é 0"}, p.Calls())
}

func TestScrollIsForwardedVerbatim(t *testing.T) {
	s, p := launchedSession(t, nil)

	assert.True(t, s.HandleInput(types.ScrollInput{DX: 0, DY: -3, Modifiers: types.ModShift}))
	assert.Equal(t, []string{"ScrollEvent 0,-3 1"}, p.Calls())
}
