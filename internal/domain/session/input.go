package session

import (
	"math"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
)

// HandleInput forwards a host input event to the renderer and reports
// whether it was consumed
func (s *Session) HandleInput(ev types.InputEvent) bool {
	if s.process == nil {
		return false
	}

	switch e := ev.(type) {
	case types.MouseInput:
		x, y := s.rendererPoint(e)
		s.lastMouseX, s.lastMouseY = x, y
		s.process.MouseEvent(e.Kind, e.Button, x, y, e.Modifiers)
		return true

	case types.ScrollInput:
		s.process.ScrollEvent(e.DX, e.DY, e.Modifiers)
		return true

	case types.KeyInput:
		return s.handleKey(e)

	case types.TextInput:
		if e.Char < 32 || e.Char == 127 {
			return false
		}
		s.process.TextInput(string(e.Char), e.Modifiers)
		return true
	}
	return false
}

func (s *Session) handleKey(e types.KeyInput) bool {
	if e.Modifiers == types.ModControl {
		switch e.Key {
		case 'C':
			s.process.Copy()
			return true
		case 'V':
			s.process.Paste()
			return true
		case 'X':
			s.process.Cut()
			return true
		}
	}

	handled := s.process.KeyEvent(types.KeyDown, e.Key, e.Modifiers)
	s.process.KeyEvent(types.KeyUp, e.Key, e.Modifiers)
	return handled
}

// MouseCaptureLost releases a drag at the last forwarded position
func (s *Session) MouseCaptureLost() {
	if s.process != nil {
		s.process.MouseEvent(types.MouseUp, 0, s.lastMouseX, s.lastMouseY, 0)
	}
}

// rendererSize is the size of the renderer's content
func (s *Session) rendererSize() (int, int) {
	if s.process != nil {
		if surf := s.process.Surface(); surf != nil && surf.Valid() && surf.Width() > 0 && surf.Height() > 0 {
			return surf.Width(), surf.Height()
		}
	}
	return s.settings.Width, s.settings.Height
}

func (s *Session) rendererPoint(e types.MouseInput) (int, int) {
	switch e.Space {
	case types.SpaceSurface:
		if e.SurfaceW <= 0 || e.SurfaceH <= 0 {
			return round(e.X), round(e.Y)
		}
		w, h := s.rendererSize()
		return round(e.X * float64(w) / float64(e.SurfaceW)), round(e.Y * float64(h) / float64(e.SurfaceH))

	case types.SpaceTexture:
		u := e.X - math.Floor(e.X)
		v := e.Y - math.Floor(e.Y)

		texW, texH := s.pipeline.TextureSize()
		_, usedH := s.pipeline.UsedSize()
		if texW == 0 || texH == 0 {
			texW, texH = s.rendererSize()
			usedH = texH
		}
		x := round(u * float64(texW))
		y := round((1-v)*float64(texH)) - (texH - usedH)
		return x, y
	}
	return round(e.X), round(e.Y)
}

func round(f float64) int {
	return int(math.Round(f))
}
