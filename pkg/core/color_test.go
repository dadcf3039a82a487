package core

import (
	"math"
	"testing"
)

func TestColorArithmetic(t *testing.T) {
	a := NewColor(0.1, 0.2, 0.3)
	b := NewColor(0.4, 0.5, 0.6)

	sum := a.Add(b)
	if sum != (Color{0.5, 0.7, 0.9}) {
		t.Errorf("Add: %v", sum)
	}

	diff := b.Subtract(a)
	want := Color{0.3, 0.3, 0.3}
	if math.Abs(diff.R-want.R) > 1e-12 || math.Abs(diff.G-want.G) > 1e-12 || math.Abs(diff.B-want.B) > 1e-12 {
		t.Errorf("Subtract: %v", diff)
	}

	scaled := a.Multiply(2)
	if scaled != (Color{0.2, 0.4, 0.6}) {
		t.Errorf("Multiply: %v", scaled)
	}

	mod := a.MultiplyColor(b)
	if math.Abs(mod.G-0.1) > 1e-12 {
		t.Errorf("MultiplyColor: %v", mod)
	}
}

func TestColorClamp(t *testing.T) {
	c := NewColor(-0.5, 0.5, 1.5).Clamp(0, 1)
	if c != (Color{0, 0.5, 1}) {
		t.Errorf("Clamp: %v", c)
	}
}

func TestColorGammaCorrect(t *testing.T) {
	c := NewColor(0.25, 0.25, 0.25).GammaCorrect(2.0)
	if math.Abs(c.R-0.5) > 1e-12 {
		t.Errorf("gamma 2.0 of 0.25 should be 0.5, got %f", c.R)
	}
}

func TestColorLuminance(t *testing.T) {
	if l := NewColor(1, 1, 1).Luminance(); math.Abs(l-1) > 1e-12 {
		t.Errorf("white luminance: %f", l)
	}
	if NewColor(0, 1, 0).Luminance() <= NewColor(0, 0, 1).Luminance() {
		t.Error("green should be perceptually brighter than blue")
	}
	if Black.Luminance() != 0 {
		t.Error("black luminance should be zero")
	}
}
