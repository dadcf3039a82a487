package sky

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/gravlens/go-gravlens/pkg/core"
)

// maxEdge bounds the loaded field size; larger sources are downscaled so
// per-pixel sampling stays cache-friendly.
const maxEdge = 2048

// Load loads a PNG or JPEG image into an ImageField
func Load(filename string) (*ImageField, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open sky image: %w", err)
	}
	defer file.Close()

	// Decode image (auto-detects PNG/JPEG from file header)
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sky image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
		img = downscale(img, maxEdge)
		bounds = img.Bounds()
	}

	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Color, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535], convert to [0, 1]
			pixels[y*width+x] = core.NewColor(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}

	return NewImageField(width, height, pixels), nil
}

// LoadOrPlaceholder loads a sky image, substituting a placeholder field on any
// failure so the frame loop never observes a load error.
func LoadOrPlaceholder(filename string, logger core.Logger) Field {
	if filename == "" {
		return Procedural(1024, 512, 1)
	}
	field, err := Load(filename)
	if err != nil {
		if logger != nil {
			logger.Printf("sky: %v, using placeholder field\n", err)
		}
		return Placeholder(256, 256)
	}
	return field
}

// downscale resizes an image so its longest edge is at most edge pixels
func downscale(img image.Image, edge int) image.Image {
	bounds := img.Bounds()
	scale := float64(edge) / float64(max(bounds.Dx(), bounds.Dy()))
	dst := image.NewRGBA(image.Rect(0, 0,
		int(float64(bounds.Dx())*scale),
		int(float64(bounds.Dy())*scale)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

// Placeholder returns a visibly distinct substitute field: a flat dark fill
// crossed by a magenta marker grid. It is only ever shown when the configured
// sky image could not be loaded.
func Placeholder(width, height int) *ImageField {
	base := core.NewColor(0.08, 0.08, 0.10)
	marker := core.NewColor(0.85, 0.0, 0.85)

	pixels := make([]core.Color, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := base
			if x%32 == 0 || y%32 == 0 {
				c = marker
			}
			pixels[y*width+x] = c
		}
	}
	return NewImageField(width, height, pixels)
}

// Procedural generates a deterministic starfield so the viewer runs with no
// image asset on disk. The seed selects a different star layout.
func Procedural(width, height int, seed uint64) *ImageField {
	pixels := make([]core.Color, width*height)

	// Faint vertical nebula gradient behind the stars.
	top := core.NewColor(0.02, 0.02, 0.06)
	bottom := core.NewColor(0.01, 0.015, 0.03)
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height-1)
		c := top.Multiply(1 - t).Add(bottom.Multiply(t))
		for x := 0; x < width; x++ {
			pixels[y*width+x] = c
		}
	}

	// Hash-placed stars with a few brightness tiers.
	count := width * height / 300
	state := seed*0x9E3779B97F4A7C15 + 1
	next := func() uint64 {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		return state
	}
	for i := 0; i < count; i++ {
		x := int(next() % uint64(width))
		y := int(next() % uint64(height))
		mag := float64(next()%1000) / 1000.0
		brightness := 0.25 + 0.75*mag*mag
		tint := core.NewColor(brightness, brightness, brightness)
		if next()%8 == 0 {
			tint = core.NewColor(brightness, brightness*0.85, brightness*0.7)
		}
		pixels[y*width+x] = tint

		// Bright stars get a small cross bloom baked in.
		if brightness > 0.9 {
			glow := tint.Multiply(0.4)
			for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				gx := (x + d[0] + width) % width
				gy := (y + d[1] + height) % height
				pixels[gy*width+gx] = pixels[gy*width+gx].Add(glow).Clamp(0, 1)
			}
		}
	}

	return NewImageField(width, height, pixels)
}
