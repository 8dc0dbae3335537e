package plugin

import (
	"bufio"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
)

// Command ops
const (
	OpInit             = "init"
	OpShutdown         = "shutdown"
	OpLoadURI          = "load_uri"
	OpBrowseStop       = "browse_stop"
	OpNavigateHome     = "navigate_home"
	OpPlay             = "play"
	OpPause            = "pause"
	OpStop             = "stop"
	OpSeek             = "seek"
	OpSetVolume        = "set_volume"
	OpSetLoop          = "set_loop"
	OpSetAutoScale     = "set_auto_scale"
	OpSetSize          = "set_size"
	OpFocus            = "focus"
	OpMouseEvent       = "mouse_event"
	OpScrollEvent      = "scroll_event"
	OpKeyEvent         = "key_event"
	OpTextInput        = "text_input"
	OpCut              = "cut"
	OpCopy             = "copy"
	OpPaste            = "paste"
	OpPickFileResponse = "pick_file_response"
	OpSetCookies       = "set_cookies"
	OpEnableCookies    = "enable_cookies"
	OpClearCache       = "clear_cache"
	OpClearCookies     = "clear_cookies"
	OpSetProxy         = "set_proxy"
	OpSetUserAgent     = "set_user_agent"
	OpSetBackground    = "set_background_color"
	OpSetPriority      = "set_priority"
)

// Message events
const (
	EventReady            = "ready"
	EventSizeChanged      = "size_changed"
	EventFrame            = "frame"
	EventNavigateBegin    = "navigate_begin"
	EventNavigateComplete = "navigate_complete"
	EventLocationChanged  = "location_changed"
	EventCloseRequest     = "close_request"
	EventGeometryChange   = "geometry_change"
	EventPickFileRequest  = "pick_file_request"
	EventCookieSet        = "cookie_set"
	EventClickLink        = "click_link"
	EventStatusChanged    = "status_changed"
	EventHistoryChanged   = "history_changed"
)

// Command is one host to renderer line
type Command struct {
	Op          string  `json:"op"`
	Backend     string  `json:"backend,omitempty"`
	UserDataDir string  `json:"user_data_dir,omitempty"`
	Language    string  `json:"language,omitempty"`
	Target      string  `json:"target,omitempty"`
	URL         string  `json:"url,omitempty"`
	Text        string  `json:"text,omitempty"`
	Host        string  `json:"host,omitempty"`
	Port        int     `json:"port,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
	Value       float32 `json:"value,omitempty"`
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`
	Kind        string  `json:"kind,omitempty"`
	Button      int     `json:"button,omitempty"`
	X           int     `json:"x,omitempty"`
	Y           int     `json:"y,omitempty"`
	Key         uint32  `json:"key,omitempty"`
	Modifiers   uint32  `json:"modifiers,omitempty"`
	Color       []uint8 `json:"color,omitempty"`
	Priority    string  `json:"priority,omitempty"`
}

// Message is one renderer to host line
type Message struct {
	Event      string `json:"event"`
	URL        string `json:"url,omitempty"`
	Target     string `json:"target,omitempty"`
	Status     string `json:"status,omitempty"`
	Cookie     string `json:"cookie,omitempty"`
	NoFollow   bool   `json:"no_follow,omitempty"`
	Back       bool   `json:"back,omitempty"`
	Forward    bool   `json:"forward,omitempty"`
	X          int    `json:"x,omitempty"`
	Y          int    `json:"y,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	BitsWidth  int    `json:"bits_width,omitempty"`
	BitsHeight int    `json:"bits_height,omitempty"`
	Depth      int    `json:"depth,omitempty"`
	Pixels     []byte `json:"pixels,omitempty"`
}

func boolPtr(b bool) *bool {
	return &b
}

// EncodeLine marshals v followed by a newline
func EncodeLine(v any) ([]byte, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteLine writes v as one protocol line
func WriteLine(w io.Writer, v any) error {
	line, err := EncodeLine(v)
	if err != nil {
		return err
	}
	_, err = w.Write(line)
	return err
}

const maxLine = 64 << 20

// Reader decodes protocol lines
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r. Lines may be up to 64 MiB to fit full frames.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Reader{scanner: s}
}

// Next decodes the next non-empty line into v. It returns io.EOF at the
// end of the stream.
func (r *Reader) Next(v any) error {
	for r.scanner.Scan() {
		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := sonic.Unmarshal(line, v); err != nil {
			return fmt.Errorf("decode protocol line: %w", err)
		}
		return nil
	}
	if err := r.scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}
