package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	xdraw "golang.org/x/image/draw"
)

var (
	ErrNotAllocated = errors.New("texture not allocated")
	ErrDepth        = errors.New("unsupported pixel depth")
	ErrBounds       = errors.New("rectangle outside texture")
)

// MemoryTexture is a CPU-side texture. It backs headless hosts and tests.
type MemoryTexture struct {
	pix         []byte
	width       int
	height      int
	depth       int
	mediaBacked bool
	allocations int
}

// NewMemoryTexture returns an empty, non-media texture
func NewMemoryTexture() *MemoryTexture {
	return &MemoryTexture{}
}

func (t *MemoryTexture) Width() int        { return t.width }
func (t *MemoryTexture) Height() int       { return t.height }
func (t *MemoryTexture) Depth() int        { return t.depth }
func (t *MemoryTexture) MediaBacked() bool { return t.mediaBacked }
func (t *MemoryTexture) Allocations() int  { return t.allocations }

// Allocate implements types.Texture
func (t *MemoryTexture) Allocate(width, height, depth int, bg color.RGBA) error {
	if depth < 1 || depth > 4 {
		return fmt.Errorf("%w: %d", ErrDepth, depth)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBounds, width, height)
	}

	t.pix = make([]byte, width*height*depth)
	t.width, t.height, t.depth = width, height, depth
	t.mediaBacked = true
	t.allocations++

	if depth == 4 {
		xdraw.Draw(t.rgba(), image.Rect(0, 0, width, height), image.NewUniform(bg), image.Point{}, xdraw.Src)
		return nil
	}
	fill := []byte{bg.R, bg.G, bg.B, bg.A}[:depth]
	for i := 0; i < len(t.pix); i += depth {
		copy(t.pix[i:], fill)
	}
	return nil
}

// SetSubImage implements types.Texture
func (t *MemoryTexture) SetSubImage(src []byte, stride, depth int, r image.Rectangle) error {
	if t.pix == nil {
		return ErrNotAllocated
	}
	if depth != t.depth {
		return fmt.Errorf("%w: source %d, texture %d", ErrDepth, depth, t.depth)
	}
	if !r.In(image.Rect(0, 0, t.width, t.height)) {
		return fmt.Errorf("%w: %v", ErrBounds, r)
	}
	if r.Empty() {
		return nil
	}
	if len(src) < (r.Max.Y-1)*stride+r.Max.X*depth {
		return fmt.Errorf("%w: source holds %d bytes", ErrBounds, len(src))
	}

	if depth == 4 && len(src) >= r.Max.Y*stride {
		srcImg := &image.RGBA{
			Pix:    src,
			Stride: stride,
			Rect:   image.Rect(0, 0, stride/4, len(src)/stride),
		}
		xdraw.Draw(t.rgba(), r, srcImg, r.Min, xdraw.Src)
		return nil
	}

	rowBytes := r.Dx() * depth
	dstStride := t.width * depth
	for y := r.Min.Y; y < r.Max.Y; y++ {
		so := y*stride + r.Min.X*depth
		do := y*dstStride + r.Min.X*depth
		copy(t.pix[do:do+rowBytes], src[so:so+rowBytes])
	}
	return nil
}

// Restore implements types.Texture
func (t *MemoryTexture) Restore() {
	t.pix = nil
	t.width, t.height, t.depth = 0, 0, 0
	t.mediaBacked = false
}

// PixelAt returns the bytes of the pixel at (x, y)
func (t *MemoryTexture) PixelAt(x, y int) []byte {
	if t.pix == nil || x < 0 || y < 0 || x >= t.width || y >= t.height {
		return nil
	}
	off := (y*t.width + x) * t.depth
	return append([]byte(nil), t.pix[off:off+t.depth]...)
}

func (t *MemoryTexture) rgba() *image.RGBA {
	return &image.RGBA{
		Pix:    t.pix,
		Stride: t.width * 4,
		Rect:   image.Rect(0, 0, t.width, t.height),
	}
}

// MemoryResolver hands out one MemoryTexture per target
type MemoryResolver struct {
	mu       sync.Mutex
	textures map[types.TargetID]*MemoryTexture
}

// NewMemoryResolver creates an empty resolver
func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{textures: make(map[types.TargetID]*MemoryTexture)}
}

// Bind returns the texture for target, creating it on first use
func (r *MemoryResolver) Bind(target types.TargetID) *MemoryTexture {
	r.mu.Lock()
	defer r.mu.Unlock()
	tex, ok := r.textures[target]
	if !ok {
		tex = NewMemoryTexture()
		r.textures[target] = tex
	}
	return tex
}

// Unbind forgets the texture for target
func (r *MemoryResolver) Unbind(target types.TargetID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.textures, target)
}

// Texture implements types.TextureResolver. The nil target never resolves.
func (r *MemoryResolver) Texture(target types.TargetID) (types.Texture, bool) {
	if target.IsNil() {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tex, ok := r.textures[target]
	if !ok {
		return nil, false
	}
	return tex, true
}
