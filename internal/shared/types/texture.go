package types

import (
	"image"
	"image/color"
)

// Texture is the GPU-side destination a session copies renderer pixels into.
type Texture interface {
	Width() int
	Height() int
	// MediaBacked reports whether the texture is currently configured for
	// media display (single level, explicit format).
	MediaBacked() bool
	// Allocate replaces the storage with a width x height buffer of the
	// given depth cleared to bg, and marks the texture media backed.
	Allocate(width, height, depth int, bg color.RGBA) error
	// SetSubImage copies r from src, laid out with the given row stride and
	// pixel depth, into the same rectangle of the texture.
	SetSubImage(src []byte, stride, depth int, r image.Rectangle) error
	// Restore returns a borrowed texture to its non-media state.
	Restore()
}

// TextureResolver finds the texture bound to a target
type TextureResolver interface {
	Texture(target TargetID) (Texture, bool)
}
