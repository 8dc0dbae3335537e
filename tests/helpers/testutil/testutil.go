// Package testutil provides fakes and mocks for media layer tests.
package testutil

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"github.com/stretchr/testify/mock"
)

// FakeSurface is an in-memory renderer output buffer.
type FakeSurface struct {
	ContentW  int
	ContentH  int
	BufW      int
	BufH      int
	PixDepth  int
	RowStride int
	Pix       []byte
	Dirty     image.Rectangle
	HasDirty  bool
	Invalid   bool
	Clears    int
}

// NewFakeSurface creates a surface whose buffer is exactly the content size.
func NewFakeSurface(width, height, depth int) *FakeSurface {
	s := &FakeSurface{PixDepth: depth}
	s.Resize(width, height, width, height)
	return s
}

// Resize reallocates the buffer and marks the whole content dirty.
func (s *FakeSurface) Resize(contentW, contentH, bufW, bufH int) {
	s.ContentW, s.ContentH = contentW, contentH
	s.BufW, s.BufH = bufW, bufH
	s.RowStride = bufW * s.PixDepth
	s.Pix = make([]byte, s.RowStride*bufH)
	s.MarkDirty(image.Rect(0, 0, contentW, contentH))
}

// Fill sets every byte of the content region to v and marks it dirty.
func (s *FakeSurface) Fill(v byte) {
	for y := 0; y < s.ContentH; y++ {
		row := s.Pix[y*s.RowStride : y*s.RowStride+s.ContentW*s.PixDepth]
		for i := range row {
			row[i] = v
		}
	}
	s.MarkDirty(image.Rect(0, 0, s.ContentW, s.ContentH))
}

// MarkDirty records r as the pending dirty region.
func (s *FakeSurface) MarkDirty(r image.Rectangle) {
	s.Dirty = r
	s.HasDirty = true
}

func (s *FakeSurface) Valid() bool     { return !s.Invalid && s.Pix != nil }
func (s *FakeSurface) Width() int      { return s.ContentW }
func (s *FakeSurface) Height() int     { return s.ContentH }
func (s *FakeSurface) BitsWidth() int  { return s.BufW }
func (s *FakeSurface) BitsHeight() int { return s.BufH }
func (s *FakeSurface) Depth() int      { return s.PixDepth }
func (s *FakeSurface) Stride() int     { return s.RowStride }
func (s *FakeSurface) Bits() []byte    { return s.Pix }
func (s *FakeSurface) DirtyRect() (image.Rectangle, bool) {
	return s.Dirty, s.HasDirty
}

// ClearDirty implements types.Surface.
func (s *FakeSurface) ClearDirty() {
	s.HasDirty = false
	s.Dirty = image.Rectangle{}
	s.Clears++
}

// FakeProcess records every call made on it and replays queued events.
type FakeProcess struct {
	mu         sync.Mutex
	backend    string
	calls      []string
	pending    []types.Event
	exited     bool
	closed     bool
	terminated bool
	priority   types.Priority
	surface    types.Surface
	idlePanic  any
	keyResult  bool
	crashAfter bool
}

// NewFakeProcess creates a running fake for backend.
func NewFakeProcess(backend string) *FakeProcess {
	return &FakeProcess{backend: backend, keyResult: true}
}

func (p *FakeProcess) record(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded calls in order.
func (p *FakeProcess) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// Called reports whether a call equal to call was recorded.
func (p *FakeProcess) Called(call string) bool {
	for _, c := range p.Calls() {
		if c == call {
			return true
		}
	}
	return false
}

// ResetCalls forgets the recorded calls.
func (p *FakeProcess) ResetCalls() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

// Push queues events for the next Idle.
func (p *FakeProcess) Push(events ...types.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, events...)
}

// Exit makes the process report that it has exited.
func (p *FakeProcess) Exit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exited = true
}

// CrashAfterIdle makes the process die right after the next Idle returns,
// with PluginFailed left for the Idle after that.
func (p *FakeProcess) CrashAfterIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.crashAfter = true
}

// PanicOnIdle makes the next Idle panic with v.
func (p *FakeProcess) PanicOnIdle(v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idlePanic = v
}

// SetSurface attaches an output surface.
func (p *FakeProcess) SetSurface(s types.Surface) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surface = s
}

// SetKeyResult sets what KeyEvent reports as handled.
func (p *FakeProcess) SetKeyResult(handled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keyResult = handled
}

// Closed reports whether Close was called.
func (p *FakeProcess) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Terminated reports whether Terminate was called.
func (p *FakeProcess) Terminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

// CurrentPriority returns the last priority set.
func (p *FakeProcess) CurrentPriority() types.Priority {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.priority
}

func (p *FakeProcess) Backend() string { return p.backend }

func (p *FakeProcess) LoadURI(url string)      { p.record("LoadURI %s", url) }
func (p *FakeProcess) BrowseStop()             { p.record("BrowseStop") }
func (p *FakeProcess) NavigateHome(url string) { p.record("NavigateHome %s", url) }

func (p *FakeProcess) Play()                { p.record("Play") }
func (p *FakeProcess) Pause()               { p.record("Pause") }
func (p *FakeProcess) Stop()                { p.record("Stop") }
func (p *FakeProcess) Seek(t float32)       { p.record("Seek %g", t) }
func (p *FakeProcess) SetVolume(v float32)  { p.record("SetVolume %g", v) }
func (p *FakeProcess) SetLoop(loop bool)    { p.record("SetLoop %t", loop) }
func (p *FakeProcess) SetAutoScale(on bool) { p.record("SetAutoScale %t", on) }
func (p *FakeProcess) SetSize(w, h int)     { p.record("SetSize %dx%d", w, h) }
func (p *FakeProcess) Focus(focus bool)     { p.record("Focus %t", focus) }
func (p *FakeProcess) Cut()                 { p.record("Cut") }
func (p *FakeProcess) Copy()                { p.record("Copy") }
func (p *FakeProcess) Paste()               { p.record("Paste") }
func (p *FakeProcess) PickFileResponse(f string) {
	p.record("PickFileResponse %s", f)
}

func (p *FakeProcess) MouseEvent(kind types.MouseKind, button, x, y int, mods types.Modifiers) {
	p.record("MouseEvent %s %d %d,%d %d", kind, button, x, y, mods)
}

func (p *FakeProcess) ScrollEvent(dx, dy int, mods types.Modifiers) {
	p.record("ScrollEvent %d,%d %d", dx, dy, mods)
}

func (p *FakeProcess) KeyEvent(kind types.KeyKind, key types.Key, mods types.Modifiers) bool {
	p.record("KeyEvent %s %d %d", kind, key, mods)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keyResult
}

func (p *FakeProcess) TextInput(text string, mods types.Modifiers) {
	p.record("TextInput %s %d", text, mods)
}

func (p *FakeProcess) SetCookies(cookies string) { p.record("SetCookies %s", cookies) }
func (p *FakeProcess) EnableCookies(on bool)     { p.record("EnableCookies %t", on) }
func (p *FakeProcess) ClearCache()               { p.record("ClearCache") }
func (p *FakeProcess) ClearCookies()             { p.record("ClearCookies") }

func (p *FakeProcess) SetProxy(enabled bool, host string, port int) {
	p.record("SetProxy %t %s:%d", enabled, host, port)
}

func (p *FakeProcess) SetUserAgent(agent string) { p.record("SetUserAgent %s", agent) }

func (p *FakeProcess) SetBackgroundColor(c color.RGBA) {
	p.record("SetBackgroundColor %d,%d,%d,%d", c.R, c.G, c.B, c.A)
}

func (p *FakeProcess) SetPriority(pr types.Priority) {
	p.record("SetPriority %s", pr)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.priority = pr
}

// Idle implements types.Process.
func (p *FakeProcess) Idle() []types.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v := p.idlePanic; v != nil {
		p.idlePanic = nil
		panic(v)
	}
	events := p.pending
	p.pending = nil
	if p.crashAfter {
		p.crashAfter = false
		p.exited = true
		p.pending = []types.Event{types.PluginFailed{}}
	}
	return events
}

func (p *FakeProcess) Exited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exited
}

func (p *FakeProcess) Surface() types.Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.surface
}

func (p *FakeProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.exited = true
	return nil
}

func (p *FakeProcess) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminated = true
	p.exited = true
	return nil
}

// FakeLauncher hands out FakeProcesses and records launch requests.
type FakeLauncher struct {
	mu        sync.Mutex
	failures  map[string]error
	requests  []types.LaunchRequest
	processes []*FakeProcess
	surface   func() types.Surface
}

// NewFakeLauncher creates a launcher that succeeds for every backend.
func NewFakeLauncher() *FakeLauncher {
	return &FakeLauncher{failures: make(map[string]error)}
}

// FailBackend makes launches of backend fail with a LaunchError.
func (l *FakeLauncher) FailBackend(backend, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[backend] = &types.LaunchError{Backend: backend, Reason: reason}
}

// WithSurfaces gives each launched process a surface from newSurface.
func (l *FakeLauncher) WithSurfaces(newSurface func() types.Surface) *FakeLauncher {
	l.surface = newSurface
	return l
}

// Launch implements types.Launcher.
func (l *FakeLauncher) Launch(ctx context.Context, req types.LaunchRequest) (types.Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, req)
	if err, ok := l.failures[req.Backend]; ok {
		return nil, err
	}
	p := NewFakeProcess(req.Backend)
	if l.surface != nil {
		p.surface = l.surface()
	}
	l.processes = append(l.processes, p)
	return p, nil
}

// Requests returns the launch requests seen so far.
func (l *FakeLauncher) Requests() []types.LaunchRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.LaunchRequest(nil), l.requests...)
}

// Processes returns every process launched so far.
func (l *FakeLauncher) Processes() []*FakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*FakeProcess(nil), l.processes...)
}

// Last returns the most recently launched process, or nil.
func (l *FakeLauncher) Last() *FakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.processes) == 0 {
		return nil
	}
	return l.processes[len(l.processes)-1]
}

// FakeDiscoverer answers MIME lookups from a table. Lookups for URLs in
// hold block until Release is called or the context ends.
type FakeDiscoverer struct {
	mu      sync.Mutex
	types   map[string]string
	errs    map[string]error
	hold    map[string]chan struct{}
	lookups []string
	agent   string
}

// NewFakeDiscoverer creates an empty discoverer; unknown URLs resolve to "".
func NewFakeDiscoverer() *FakeDiscoverer {
	return &FakeDiscoverer{
		types: make(map[string]string),
		errs:  make(map[string]error),
		hold:  make(map[string]chan struct{}),
	}
}

// Set maps url to mimeType.
func (d *FakeDiscoverer) Set(url, mimeType string) *FakeDiscoverer {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.types[url] = mimeType
	return d
}

// Fail makes lookups of url return err.
func (d *FakeDiscoverer) Fail(url string, err error) *FakeDiscoverer {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs[url] = err
	return d
}

// Hold blocks lookups of url until Release.
func (d *FakeDiscoverer) Hold(url string) *FakeDiscoverer {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hold[url] = make(chan struct{})
	return d
}

// Release unblocks held lookups of url.
func (d *FakeDiscoverer) Release(url string) {
	d.mu.Lock()
	ch, ok := d.hold[url]
	delete(d.hold, url)
	d.mu.Unlock()
	if ok {
		close(ch)
	}
}

// SetUserAgent records agent.
func (d *FakeDiscoverer) SetUserAgent(agent string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agent = agent
}

// UserAgent returns the last agent set.
func (d *FakeDiscoverer) UserAgent() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.agent
}

// Lookups returns the URLs looked up so far.
func (d *FakeDiscoverer) Lookups() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.lookups...)
}

// Discover resolves url.
func (d *FakeDiscoverer) Discover(ctx context.Context, url string) (string, error) {
	d.mu.Lock()
	d.lookups = append(d.lookups, url)
	ch := d.hold[url]
	d.mu.Unlock()

	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.errs[url]; err != nil {
		return "", err
	}
	return d.types[url], nil
}

// MockNotifier is a mock implementation of types.Notifier.
type MockNotifier struct {
	mock.Mock
}

// Notify mocks the Notify method.
func (m *MockNotifier) Notify(n types.Notification) {
	m.Called(n)
}

// NewMockNotifier creates a notifier mock that accepts any notification.
func NewMockNotifier(t *testing.T) *MockNotifier {
	t.Helper()
	m := new(MockNotifier)
	m.On("Notify", mock.Anything).Maybe()
	return m
}

// CountNotifications returns how many notifications named name were sent.
func (m *MockNotifier) CountNotifications(name string) int {
	n := 0
	for _, call := range m.Calls {
		if call.Method != "Notify" {
			continue
		}
		if note, ok := call.Arguments.Get(0).(types.Notification); ok && note.Name == name {
			n++
		}
	}
	return n
}
