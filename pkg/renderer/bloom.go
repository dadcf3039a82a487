package renderer

import (
	"image"

	"github.com/gravlens/go-gravlens/pkg/core"
)

// BloomConfig controls the post-process glow pass
type BloomConfig struct {
	Strength  float64 // additive gain for the blurred highlights
	Radius    int     // blur radius in pixels
	Threshold float64 // luminance cutoff for the highlight extract
}

// ApplyBloom runs a threshold-extract, separable box blur, additive composite
// pass over the image in place. Strength 0 or radius 0 is a no-op.
func ApplyBloom(img *image.RGBA, cfg BloomConfig) {
	if cfg.Strength <= 0 || cfg.Radius <= 0 {
		return
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return
	}

	// Extract highlights above the luminance threshold into a float buffer.
	bright := make([]core.Color, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)
			c := core.NewColor(
				float64(img.Pix[i])/255.0,
				float64(img.Pix[i+1])/255.0,
				float64(img.Pix[i+2])/255.0,
			)
			if c.Luminance() >= cfg.Threshold {
				bright[y*w+x] = c
			}
		}
	}

	blurred := boxBlur(bright, w, h, cfg.Radius)

	// Additive composite back into the image.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			glow := blurred[y*w+x].Multiply(cfg.Strength)
			if glow.R == 0 && glow.G == 0 && glow.B == 0 {
				continue
			}
			i := img.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)
			img.Pix[i] = addByte(img.Pix[i], glow.R)
			img.Pix[i+1] = addByte(img.Pix[i+1], glow.G)
			img.Pix[i+2] = addByte(img.Pix[i+2], glow.B)
		}
	}
}

// boxBlur applies one horizontal and one vertical box pass with the given radius
func boxBlur(src []core.Color, w, h, radius int) []core.Color {
	tmp := make([]core.Color, w*h)
	dst := make([]core.Color, w*h)
	inv := 1.0 / float64(2*radius+1)

	// Horizontal pass with a sliding window.
	for y := 0; y < h; y++ {
		row := src[y*w : (y+1)*w]
		var sum core.Color
		for x := -radius; x <= radius; x++ {
			sum = sum.Add(row[clampIndex(x, w)])
		}
		for x := 0; x < w; x++ {
			tmp[y*w+x] = sum.Multiply(inv)
			sum = sum.Add(row[clampIndex(x+radius+1, w)])
			sum = sum.Subtract(row[clampIndex(x-radius, w)])
		}
	}

	// Vertical pass.
	for x := 0; x < w; x++ {
		var sum core.Color
		for y := -radius; y <= radius; y++ {
			sum = sum.Add(tmp[clampIndex(y, h)*w+x])
		}
		for y := 0; y < h; y++ {
			dst[y*w+x] = sum.Multiply(inv)
			sum = sum.Add(tmp[clampIndex(y+radius+1, h)*w+x])
			sum = sum.Subtract(tmp[clampIndex(y-radius, h)*w+x])
		}
	}
	return dst
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func addByte(b uint8, add float64) uint8 {
	v := float64(b) + 255.0*add
	if v > 255 {
		return 255
	}
	return uint8(v)
}
