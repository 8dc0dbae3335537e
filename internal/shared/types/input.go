package types

// Modifiers is a bit mask of held modifier keys
type Modifiers uint32

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModMeta
)

// MouseKind distinguishes mouse event types forwarded to a renderer
type MouseKind int

const (
	MouseDown MouseKind = iota
	MouseUp
	MouseMove
	MouseDoubleClick
)

func (k MouseKind) String() string {
	switch k {
	case MouseDown:
		return "down"
	case MouseUp:
		return "up"
	case MouseMove:
		return "move"
	case MouseDoubleClick:
		return "double_click"
	default:
		return "unknown"
	}
}

// KeyKind distinguishes key press and release
type KeyKind int

const (
	KeyDown KeyKind = iota
	KeyUp
)

func (k KeyKind) String() string {
	if k == KeyUp {
		return "up"
	}
	return "down"
}

// Key is a host key code. Printable keys use their upper-case ASCII value.
type Key uint32

// Priority is the scheduling priority requested from a plugin process
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHidden
)

func (p Priority) String() string {
	if p == PriorityHidden {
		return "hidden"
	}
	return "normal"
}

// CoordSpace tells how a pointer position is expressed
type CoordSpace int

const (
	// SpaceRenderer positions are already in the renderer's pixel space.
	SpaceRenderer CoordSpace = iota
	// SpaceSurface positions are pixels of the hosting surface, whose size
	// is carried in the event.
	SpaceSurface
	// SpaceTexture positions are (u, v) texture coordinates, wrapped into [0, 1).
	SpaceTexture
)

// InputEvent is a host input event routed to a focused session.
type InputEvent interface {
	inputEvent()
}

// MouseInput is a pointer button or motion event.
type MouseInput struct {
	Kind      MouseKind
	Space     CoordSpace
	X, Y      float64
	SurfaceW  int
	SurfaceH  int
	Button    int
	Modifiers Modifiers
}

// ScrollInput is a scroll wheel event.
type ScrollInput struct {
	DX, DY    int
	Modifiers Modifiers
}

// KeyInput is a single key press.
type KeyInput struct {
	Key       Key
	Modifiers Modifiers
}

// TextInput is a single typed character.
type TextInput struct {
	Char      rune
	Modifiers Modifiers
}

func (MouseInput) inputEvent()  {}
func (ScrollInput) inputEvent() {}
func (KeyInput) inputEvent()    {}
func (TextInput) inputEvent()   {}
