package navigation

import (
	"testing"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	home  = "http://example.com/"
	page2 = "http://example.com/page2"
)

func TestTransitions(t *testing.T) {
	tests := []struct {
		name      string
		request   string
		current   string
		events    []types.Event
		wantState State
		wantURL   string
	}{
		{
			name:      "begin without request",
			events:    []types.Event{types.NavigateBegin{URL: home}},
			wantState: Begun,
		},
		{
			name:      "begin after request",
			request:   home,
			events:    []types.Event{types.NavigateBegin{URL: home}},
			wantState: ServerBegun,
		},
		{
			name:      "location changed to new url",
			events:    []types.Event{types.NavigateBegin{URL: home}, types.LocationChanged{URL: home}},
			wantState: FirstLocationChanged,
			wantURL:   home,
		},
		{
			name:    "location changed to current url",
			current: home,
			events: []types.Event{
				types.NavigateBegin{URL: home},
				types.LocationChanged{URL: home},
			},
			wantState: FirstLocationChangedSpurious,
			wantURL:   home,
		},
		{
			name:      "complete before location changed",
			events:    []types.Event{types.NavigateBegin{URL: page2}, types.NavigateComplete{URL: page2}},
			wantState: CompleteBeforeLocationChanged,
			wantURL:   page2,
		},
		{
			name:    "complete to current url",
			current: page2,
			events: []types.Event{
				types.NavigateBegin{URL: page2},
				types.NavigateComplete{URL: page2},
			},
			wantState: CompleteBeforeLocationChangedSpurious,
			wantURL:   page2,
		},
		{
			name:    "server location changed always updates url",
			request: home,
			current: home,
			events: []types.Event{
				types.NavigateBegin{URL: home},
				types.LocationChanged{URL: home},
			},
			wantState: ServerFirstLocationChanged,
			wantURL:   home,
		},
		{
			name:    "server complete",
			request: page2,
			events: []types.Event{
				types.NavigateBegin{URL: page2},
				types.NavigateComplete{URL: page2},
			},
			wantState: ServerCompleteBeforeLocationChanged,
			wantURL:   page2,
		},
		{
			name:      "location changed while idle is untracked",
			events:    []types.Event{types.LocationChanged{URL: page2}},
			wantState: None,
		},
		{
			name:      "location changed before begin of request",
			request:   home,
			events:    []types.Event{types.LocationChanged{URL: home}},
			wantState: None,
		},
		{
			name:      "complete while idle leaves state alone",
			events:    []types.Event{types.NavigateComplete{URL: page2}},
			wantState: None,
		},
		{
			name: "complete after first location changed leaves state alone",
			events: []types.Event{
				types.NavigateBegin{URL: home},
				types.LocationChanged{URL: home},
				types.NavigateComplete{URL: page2},
			},
			wantState: FirstLocationChanged,
			wantURL:   home,
		},
		{
			name:      "unrelated events are ignored",
			events:    []types.Event{types.NavigateBegin{URL: home}, types.CookieSet{Cookie: "a=b"}, types.PluginFailed{}},
			wantState: Begun,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(nil)
			m.currentURL = tt.current
			if tt.request != "" {
				m.Request(tt.request)
			}
			for _, ev := range tt.events {
				m.Apply(ev)
			}
			assert.Equal(t, tt.wantState, m.State())
			assert.Equal(t, tt.wantURL, m.CurrentURL())
		})
	}
}

func TestRequestResetsToServerSent(t *testing.T) {
	m := New(nil)
	m.Apply(types.NavigateBegin{URL: home})
	m.Apply(types.LocationChanged{URL: home})
	require.Equal(t, FirstLocationChanged, m.State())

	m.Request(page2)
	assert.Equal(t, ServerSent, m.State())
	assert.Equal(t, page2, m.PendingURL())
	assert.Equal(t, home, m.CurrentURL(), "request must not touch the confirmed url")
}

func TestSameURLTwiceIsSpurious(t *testing.T) {
	for _, second := range []func(string) types.Event{
		func(u string) types.Event { return types.LocationChanged{URL: u} },
		func(u string) types.Event { return types.NavigateComplete{URL: u} },
	} {
		m := New(nil)
		m.Apply(types.NavigateBegin{URL: home})
		m.Apply(types.LocationChanged{URL: home})
		require.Equal(t, home, m.CurrentURL())

		m.Apply(types.NavigateBegin{URL: home})
		changed := m.Apply(second(home))

		assert.True(t, m.State().Spurious())
		assert.Equal(t, home, m.CurrentURL())
		assert.True(t, changed, "state moved even though the url did not")
	}
}

func TestSpuriousStateFallsThroughToNone(t *testing.T) {
	m := New(nil)
	m.currentURL = home

	m.Apply(types.NavigateBegin{URL: home})
	assert.Equal(t, Begun, m.State())

	m.Apply(types.LocationChanged{URL: home})
	assert.Equal(t, FirstLocationChangedSpurious, m.State())
	assert.Equal(t, home, m.CurrentURL())

	m.Apply(types.LocationChanged{URL: page2})
	assert.Equal(t, None, m.State())
	assert.Equal(t, home, m.CurrentURL(), "untracked redirect must not advance the url")

	// a fresh begin makes the stream trackable again
	m.Apply(types.NavigateBegin{URL: page2})
	m.Apply(types.LocationChanged{URL: page2})
	assert.Equal(t, FirstLocationChanged, m.State())
	assert.Equal(t, page2, m.CurrentURL())
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "server_complete_before_location_changed", ServerCompleteBeforeLocationChanged.String())
	assert.Equal(t, "unknown", State(99).String())
	assert.True(t, ServerSent.ServerDirected())
	assert.False(t, Begun.ServerDirected())
}
