// Package texture moves renderer pixels into GPU-side textures.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"go.uber.org/zap"
)

var ErrShortBuffer = errors.New("surface buffer shorter than its reported geometry")

// NextPow2 returns the smallest power of two that is >= n
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Result describes what one Update did
type Result struct {
	Reallocated bool
	Copied      image.Rectangle
}

// Pipeline tracks the destination texture geometry of one session and
// copies dirty surface regions into it.
type Pipeline struct {
	texW, texH   int
	usedW, usedH int
	needsNew     bool
	background   color.RGBA
	logger       *zap.Logger
}

// NewPipeline creates a pipeline that allocates on its first update
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		needsNew:   true,
		background: color.RGBA{A: 0xff},
		logger:     logger,
	}
}

// SetBackground sets the color new allocations are cleared to
func (p *Pipeline) SetBackground(c color.RGBA) {
	p.background = c
}

// Invalidate forces a reallocation on the next update, e.g. after the
// backing renderer changed.
func (p *Pipeline) Invalidate() {
	p.needsNew = true
}

// TextureSize returns the allocated texture dimensions
func (p *Pipeline) TextureSize() (int, int) {
	return p.texW, p.texH
}

// UsedSize returns the content dimensions inside the texture
func (p *Pipeline) UsedSize() (int, int) {
	return p.usedW, p.usedH
}

// Release restores tex to its non-media state and resets the geometry
func (p *Pipeline) Release(tex types.Texture) {
	if tex != nil && tex.MediaBacked() {
		tex.Restore()
	}
	p.texW, p.texH = 0, 0
	p.usedW, p.usedH = 0, 0
	p.needsNew = true
}

// Update copies the pending surface pixels into tex, reallocating tex
// first when its geometry no longer matches the surface.
func (p *Pipeline) Update(surf types.Surface, tex types.Texture) (Result, error) {
	if surf == nil || tex == nil || !surf.Valid() {
		return Result{}, nil
	}

	bitsW, bitsH := surf.BitsWidth(), surf.BitsHeight()
	if bitsW <= 0 || bitsH <= 0 {
		return Result{}, nil
	}
	usedW, usedH := min(surf.Width(), bitsW), min(surf.Height(), bitsH)
	wantW, wantH := NextPow2(bitsW), NextPow2(bitsH)

	var res Result
	var region image.Rectangle

	if p.needsReallocation(tex, wantW, wantH, usedW, usedH) {
		if err := tex.Allocate(wantW, wantH, surf.Depth(), p.background); err != nil {
			p.needsNew = true
			return Result{}, fmt.Errorf("allocate %dx%d texture: %w", wantW, wantH, err)
		}
		p.logger.Debug("texture reallocated",
			zap.Int("width", wantW),
			zap.Int("height", wantH),
			zap.Int("used_width", usedW),
			zap.Int("used_height", usedH))

		p.texW, p.texH = wantW, wantH
		p.usedW, p.usedH = usedW, usedH
		p.needsNew = false
		res.Reallocated = true
		region = image.Rect(0, 0, usedW, usedH)
	} else {
		dirty, ok := surf.DirtyRect()
		if !ok {
			return res, nil
		}
		region = dirty
	}

	region = region.Intersect(image.Rect(0, 0, p.texW, p.texH)).Intersect(image.Rect(0, 0, bitsW, bitsH))
	if region.Empty() {
		surf.ClearDirty()
		return res, nil
	}

	bits, stride, depth := surf.Bits(), surf.Stride(), surf.Depth()
	if need := (region.Max.Y-1)*stride + region.Max.X*depth; len(bits) < need {
		return res, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(bits), need)
	}
	if err := tex.SetSubImage(bits, stride, depth, region); err != nil {
		return res, fmt.Errorf("copy %v: %w", region, err)
	}

	surf.ClearDirty()
	res.Copied = region
	return res, nil
}

func (p *Pipeline) needsReallocation(tex types.Texture, wantW, wantH, usedW, usedH int) bool {
	switch {
	case p.needsNew:
		return true
	case !tex.MediaBacked():
		return true
	case !isPow2(tex.Width()) || !isPow2(tex.Height()):
		return true
	case tex.Width() != wantW || tex.Height() != wantH:
		return true
	case usedW != p.usedW || usedH != p.usedH:
		return true
	}
	return false
}
