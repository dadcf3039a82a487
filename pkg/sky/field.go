package sky

import (
	"github.com/gravlens/go-gravlens/pkg/core"
)

// Field is a 2D tileable color field sampled by normalized UV coordinates.
// Implementations must wrap coordinates to [0,1) rather than clamp, so the
// field tiles seamlessly under an animated sampling drift.
type Field interface {
	Sample(u, v float64) core.Color
}

// ImageField provides colors from a 2D image with wraparound sampling
type ImageField struct {
	Width  int
	Height int
	Pixels []core.Color // Row-major: Pixels[y*Width + x]
}

// NewImageField creates a new image-backed field
func NewImageField(width, height int, pixels []core.Color) *ImageField {
	return &ImageField{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Wrap reduces a coordinate to its fractional part in [0,1)
func Wrap(x float64) float64 {
	x = x - float64(int(x))
	if x < 0 {
		x += 1.0
	}
	return x
}

// Sample returns the field color at (u,v) using nearest-neighbor filtering.
// Coordinates are wrapped, never clamped.
func (f *ImageField) Sample(u, v float64) core.Color {
	u = Wrap(u)
	v = Wrap(v)

	// V=0 is bottom, V=1 is top (flip V for image coordinates where origin is top-left)
	x := int(u * float64(f.Width))
	y := int((1.0 - v) * float64(f.Height))

	if x >= f.Width {
		x = f.Width - 1
	}
	if y >= f.Height {
		y = f.Height - 1
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	return f.Pixels[y*f.Width+x]
}
