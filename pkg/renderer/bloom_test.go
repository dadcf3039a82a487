package renderer

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

// highlightImage is black with a bright white square in the middle
func highlightImage(size, square int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}
	lo := size/2 - square/2
	for y := lo; y < lo+square; y++ {
		for x := lo; x < lo+square; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return img
}

func TestApplyBloomSpreadsHighlights(t *testing.T) {
	img := highlightImage(32, 4)
	ApplyBloom(img, BloomConfig{Strength: 1.0, Radius: 4, Threshold: 0.5})

	// A pixel just outside the square should have picked up glow.
	glow := img.RGBAAt(32/2+5, 32/2)
	if glow.R == 0 {
		t.Error("bloom should spread the highlight beyond the square")
	}

	// A far corner stays dark.
	corner := img.RGBAAt(1, 1)
	if corner.R != 0 {
		t.Errorf("bloom radius 4 should not reach the corner, got %v", corner)
	}
}

func TestApplyBloomThreshold(t *testing.T) {
	img := highlightImage(32, 4)

	// Threshold above the highlight luminance: nothing extracted.
	before := append([]byte(nil), img.Pix...)
	ApplyBloom(img, BloomConfig{Strength: 1.0, Radius: 4, Threshold: 1.1})
	if !bytes.Equal(before, img.Pix) {
		t.Error("threshold above all luminance should be a no-op")
	}
}

func TestApplyBloomDisabled(t *testing.T) {
	img := highlightImage(16, 2)
	before := append([]byte(nil), img.Pix...)

	ApplyBloom(img, BloomConfig{Strength: 0, Radius: 4, Threshold: 0.5})
	if !bytes.Equal(before, img.Pix) {
		t.Error("zero strength must be a no-op")
	}

	ApplyBloom(img, BloomConfig{Strength: 1, Radius: 0, Threshold: 0.5})
	if !bytes.Equal(before, img.Pix) {
		t.Error("zero radius must be a no-op")
	}
}
