package plugin

import "image"

// surface mirrors the renderer's output buffer from size_changed and
// frame messages. It is only touched from Idle.
type surface struct {
	width, height         int
	bitsWidth, bitsHeight int
	depth                 int
	bits                  []byte
	dirty                 image.Rectangle
}

func (s *surface) Valid() bool     { return s.bits != nil }
func (s *surface) Width() int      { return s.width }
func (s *surface) Height() int     { return s.height }
func (s *surface) BitsWidth() int  { return s.bitsWidth }
func (s *surface) BitsHeight() int { return s.bitsHeight }
func (s *surface) Depth() int      { return s.depth }
func (s *surface) Stride() int     { return s.bitsWidth * s.depth }
func (s *surface) Bits() []byte    { return s.bits }

func (s *surface) DirtyRect() (image.Rectangle, bool) {
	return s.dirty, !s.dirty.Empty()
}

func (s *surface) ClearDirty() {
	s.dirty = image.Rectangle{}
}

func (s *surface) resize(m Message) {
	if m.Depth <= 0 || m.BitsWidth <= 0 || m.BitsHeight <= 0 {
		s.bits = nil
		return
	}
	s.width, s.height = m.Width, m.Height
	if m.BitsWidth != s.bitsWidth || m.BitsHeight != s.bitsHeight || m.Depth != s.depth || s.bits == nil {
		s.bitsWidth, s.bitsHeight, s.depth = m.BitsWidth, m.BitsHeight, m.Depth
		s.bits = make([]byte, s.bitsWidth*s.bitsHeight*s.depth)
	}
	s.dirty = image.Rect(0, 0, s.width, s.height)
}

// blit copies a frame into the buffer and grows the dirty rectangle.
// Frames that do not fit are clipped.
func (s *surface) blit(m Message) bool {
	if s.bits == nil || m.Width <= 0 || m.Height <= 0 {
		return false
	}
	r := image.Rect(m.X, m.Y, m.X+m.Width, m.Y+m.Height).Intersect(image.Rect(0, 0, s.bitsWidth, s.bitsHeight))
	if r.Empty() || len(m.Pixels) < m.Width*m.Height*s.depth {
		return false
	}

	srcStride := m.Width * s.depth
	rowBytes := r.Dx() * s.depth
	for y := r.Min.Y; y < r.Max.Y; y++ {
		so := (y-m.Y)*srcStride + (r.Min.X-m.X)*s.depth
		do := y*s.Stride() + r.Min.X*s.depth
		copy(s.bits[do:do+rowBytes], m.Pixels[so:so+rowBytes])
	}
	s.dirty = s.dirty.Union(r)
	return true
}
