package plugin

import (
	"errors"
	"image/color"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"go.uber.org/zap"
)

const outboxSize = 1024

// process is a running renderer child
type process struct {
	backend string
	cmd     *exec.Cmd
	grace   time.Duration
	logger  *zap.Logger

	outMu     sync.Mutex
	outbox    chan []byte
	outClosed bool

	mu      sync.Mutex
	inbox   []Message
	waitErr error
	done    chan struct{}

	closing  atomic.Bool
	ready    bool
	reported bool
	surface  surface
}

func start(cmd *exec.Cmd, backend string, grace time.Duration, logger *zap.Logger) (*process, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &process{
		backend: backend,
		cmd:     cmd,
		grace:   grace,
		logger:  logger,
		outbox:  make(chan []byte, outboxSize),
		done:    make(chan struct{}),
	}
	go p.writeLoop(stdin)
	go p.readLoop(stdout)
	return p, nil
}

func (p *process) writeLoop(stdin io.WriteCloser) {
	defer stdin.Close()
	for line := range p.outbox {
		if _, err := stdin.Write(line); err != nil {
			p.logger.Debug("renderer stdin closed", zap.Error(err))
			for range p.outbox {
			}
			return
		}
	}
}

// readLoop collects messages until stdout closes, then reaps the child.
func (p *process) readLoop(stdout io.Reader) {
	r := NewReader(stdout)
	for {
		var m Message
		err := r.Next(&m)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			p.logger.Warn("dropping renderer message", zap.Error(err))
			continue
		}
		p.mu.Lock()
		p.inbox = append(p.inbox, m)
		p.mu.Unlock()
	}

	err := p.cmd.Wait()
	p.mu.Lock()
	p.waitErr = err
	p.mu.Unlock()
	close(p.done)
}

func (p *process) send(c Command) {
	line, err := EncodeLine(c)
	if err != nil {
		p.logger.Error("encode command", zap.String("op", c.Op), zap.Error(err))
		return
	}

	p.outMu.Lock()
	defer p.outMu.Unlock()
	if p.outClosed {
		return
	}
	select {
	case p.outbox <- line:
	default:
		p.logger.Warn("renderer command queue full, dropping", zap.String("op", c.Op))
	}
}

func (p *process) Backend() string { return p.backend }

func (p *process) LoadURI(url string)      { p.send(Command{Op: OpLoadURI, URL: url}) }
func (p *process) BrowseStop()             { p.send(Command{Op: OpBrowseStop}) }
func (p *process) NavigateHome(url string) { p.send(Command{Op: OpNavigateHome, URL: url}) }

func (p *process) Play()                { p.send(Command{Op: OpPlay}) }
func (p *process) Pause()               { p.send(Command{Op: OpPause}) }
func (p *process) Stop()                { p.send(Command{Op: OpStop}) }
func (p *process) Seek(t float32)       { p.send(Command{Op: OpSeek, Value: t}) }
func (p *process) SetVolume(v float32)  { p.send(Command{Op: OpSetVolume, Value: v}) }
func (p *process) SetLoop(loop bool)    { p.send(Command{Op: OpSetLoop, Enabled: boolPtr(loop)}) }
func (p *process) SetAutoScale(on bool) { p.send(Command{Op: OpSetAutoScale, Enabled: boolPtr(on)}) }
func (p *process) SetSize(width, height int) {
	p.send(Command{Op: OpSetSize, Width: width, Height: height})
}

func (p *process) Focus(focus bool) { p.send(Command{Op: OpFocus, Enabled: boolPtr(focus)}) }

func (p *process) MouseEvent(kind types.MouseKind, button, x, y int, mods types.Modifiers) {
	p.send(Command{Op: OpMouseEvent, Kind: kind.String(), Button: button, X: x, Y: y, Modifiers: uint32(mods)})
}

func (p *process) ScrollEvent(dx, dy int, mods types.Modifiers) {
	p.send(Command{Op: OpScrollEvent, X: dx, Y: dy, Modifiers: uint32(mods)})
}

// KeyEvent reports the key as handled once it has been queued.
func (p *process) KeyEvent(kind types.KeyKind, key types.Key, mods types.Modifiers) bool {
	if p.reaped() {
		return false
	}
	p.send(Command{Op: OpKeyEvent, Kind: kind.String(), Key: uint32(key), Modifiers: uint32(mods)})
	return true
}

func (p *process) TextInput(text string, mods types.Modifiers) {
	p.send(Command{Op: OpTextInput, Text: text, Modifiers: uint32(mods)})
}

func (p *process) Cut()                      { p.send(Command{Op: OpCut}) }
func (p *process) Copy()                     { p.send(Command{Op: OpCopy}) }
func (p *process) Paste()                    { p.send(Command{Op: OpPaste}) }
func (p *process) PickFileResponse(f string) { p.send(Command{Op: OpPickFileResponse, Text: f}) }

func (p *process) SetCookies(cookies string) { p.send(Command{Op: OpSetCookies, Text: cookies}) }
func (p *process) EnableCookies(on bool)     { p.send(Command{Op: OpEnableCookies, Enabled: boolPtr(on)}) }
func (p *process) ClearCache()               { p.send(Command{Op: OpClearCache}) }
func (p *process) ClearCookies()             { p.send(Command{Op: OpClearCookies}) }

func (p *process) SetProxy(enabled bool, host string, port int) {
	p.send(Command{Op: OpSetProxy, Enabled: boolPtr(enabled), Host: host, Port: port})
}

func (p *process) SetUserAgent(agent string) { p.send(Command{Op: OpSetUserAgent, Text: agent}) }

func (p *process) SetBackgroundColor(c color.RGBA) {
	p.send(Command{Op: OpSetBackground, Color: []uint8{c.R, c.G, c.B, c.A}})
}

func (p *process) SetPriority(pr types.Priority) {
	p.send(Command{Op: OpSetPriority, Priority: pr.String()})
}

// Idle converts the messages received since the last call into events and
// applies frame data to the local surface.
func (p *process) Idle() []types.Event {
	p.mu.Lock()
	inbox := p.inbox
	p.inbox = nil
	p.mu.Unlock()

	var events []types.Event
	for _, m := range inbox {
		if ev := p.apply(m); ev != nil {
			events = append(events, ev)
		}
	}

	if p.reaped() && !p.reported && !p.closing.Load() {
		p.reported = true
		p.mu.Lock()
		waitErr := p.waitErr
		p.mu.Unlock()
		p.logger.Warn("renderer exited unexpectedly", zap.Bool("initialized", p.ready), zap.Error(waitErr))
		if p.ready {
			events = append(events, types.PluginFailed{})
		} else {
			events = append(events, types.PluginFailedLaunch{})
		}
	}
	return events
}

func (p *process) apply(m Message) types.Event {
	switch m.Event {
	case EventReady:
		p.ready = true
	case EventSizeChanged:
		p.surface.resize(m)
	case EventFrame:
		if !p.surface.blit(m) {
			p.logger.Debug("frame outside surface dropped", zap.Int("x", m.X), zap.Int("y", m.Y))
		}
	case EventNavigateBegin:
		return types.NavigateBegin{URL: m.URL}
	case EventNavigateComplete:
		return types.NavigateComplete{URL: m.URL}
	case EventLocationChanged:
		return types.LocationChanged{URL: m.URL}
	case EventCloseRequest:
		return types.CloseRequest{Target: m.Target}
	case EventGeometryChange:
		return types.GeometryChange{Target: m.Target, X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
	case EventPickFileRequest:
		return types.PickFileRequest{}
	case EventCookieSet:
		return types.CookieSet{Cookie: m.Cookie}
	case EventClickLink:
		return types.ClickLink{URL: m.URL, Target: m.Target, NoFollow: m.NoFollow}
	case EventStatusChanged:
		return types.StatusChanged{Status: types.ParseMediaStatus(m.Status)}
	case EventHistoryChanged:
		return types.HistoryChanged{BackAvailable: m.Back, ForwardAvailable: m.Forward}
	default:
		p.logger.Debug("unknown renderer message", zap.String("event", m.Event))
	}
	return nil
}

// Exited reports an unrequested exit only after Idle has turned it into a
// failure event, so callers never see the exit before the crash.
func (p *process) Exited() bool {
	return p.reaped() && (p.reported || p.closing.Load())
}

func (p *process) reaped() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *process) Surface() types.Surface {
	if !p.surface.Valid() {
		return nil
	}
	return &p.surface
}

// Close asks the renderer to shut down and kills it if it is still
// running after the grace period. It blocks until the child is reaped.
func (p *process) Close() error {
	p.closeOutbox(true)

	select {
	case <-p.done:
		return nil
	case <-time.After(p.grace):
	}

	p.logger.Warn("renderer ignored shutdown, killing", zap.Duration("grace", p.grace))
	return p.kill()
}

// Terminate kills the renderer without asking
func (p *process) Terminate() error {
	p.closeOutbox(false)
	return p.kill()
}

func (p *process) closeOutbox(graceful bool) {
	if graceful {
		p.send(Command{Op: OpShutdown})
	}

	p.outMu.Lock()
	defer p.outMu.Unlock()
	p.closing.Store(true)
	if !p.outClosed {
		p.outClosed = true
		close(p.outbox)
	}
}

func (p *process) kill() error {
	if p.reaped() {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	<-p.done
	return nil
}
