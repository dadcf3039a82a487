package lens

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gravlens/go-gravlens/pkg/core"
)

// flatField is a uniform background for transform tests
type flatField struct {
	c core.Color
}

func (f flatField) Sample(u, v float64) core.Color { return f.c }

// testFrame builds the reference scene: camera at (0,0,10) looking down -Z at
// a black hole at (0,0,-15).
func testFrame(width, height int, strength, horizon float64) Frame {
	camera := NewCamera(CameraConfig{
		Center: mgl64.Vec3{0, 0, 10},
		LookAt: mgl64.Vec3{0, 0, -15},
		Up:     mgl64.Vec3{0, 1, 0},
		VFov:   50,
		Width:  width,
		Height: height,
	})
	return Frame{
		Camera:     camera,
		BlackHole:  mgl64.Vec3{0, 0, -15},
		Horizon:    horizon,
		Strength:   strength,
		Brightness: 1.0,
		Time:       0,
		Sky:        flatField{core.NewColor(0.5, 0.5, 0.5)},
	}
}

// impactParameter computes the perpendicular ray-to-hole distance for a pixel
// using only the public camera API
func impactParameter(uv mgl64.Vec2, f Frame) float64 {
	dir := f.Camera.RayDirection(uv)
	toHole := f.BlackHole.Sub(f.Camera.Position())
	tca := toHole.Dot(dir)
	return math.Sqrt(toHole.Dot(toHole) - tca*tca)
}

func TestAbsorptionMatchesImpactParameter(t *testing.T) {
	f := testFrame(320, 180, 0.03334, 1.69)

	// Scan a pixel grid: absorbed exactly when the impact parameter is
	// inside the horizon.
	for j := 0; j < 18; j++ {
		for i := 0; i < 32; i++ {
			uv := mgl64.Vec2{(float64(i) + 0.5) / 32, (float64(j) + 0.5) / 18}
			d := impactParameter(uv, f)
			tr := TraceUV(uv, f)

			if d < f.Horizon && tr.Outcome != OutcomeAbsorbed {
				t.Errorf("uv %v: impact %f inside horizon %f but not absorbed", uv, d, f.Horizon)
			}
			if d >= f.Horizon && tr.Outcome == OutcomeAbsorbed {
				t.Errorf("uv %v: impact %f outside horizon %f but absorbed", uv, d, f.Horizon)
			}
		}
	}
}

func TestAbsorbedResultIsOpaqueBlack(t *testing.T) {
	f := testFrame(320, 180, 0.03334, 1.69)

	result := Sample(mgl64.Vec2{0.5, 0.5}, f)
	if !result.Absorbed {
		t.Fatal("center pixel of a centered hole should be absorbed")
	}
	if result.Color != core.Black {
		t.Errorf("absorbed pixel should be black, got %v", result.Color)
	}
}

func TestIdentityAtZeroStrength(t *testing.T) {
	f := testFrame(320, 180, 0, 0.5)

	uvs := []mgl64.Vec2{
		{0.1, 0.1}, {0.9, 0.2}, {0.25, 0.8}, {0.7, 0.65}, {0.5, 0.9},
	}
	for _, uv := range uvs {
		tr := TraceUV(uv, f)
		if tr.Outcome == OutcomeAbsorbed {
			continue
		}
		if diff := tr.SourceUV.Sub(uv).Len(); diff > 1e-9 {
			t.Errorf("uv %v: zero strength should remap to identity, offset %e", uv, diff)
		}
	}
}

func TestCenterSymmetry(t *testing.T) {
	f := testFrame(320, 180, 0.03334, 1.69)

	for _, dx := range []float64{0.05, 0.1, 0.2, 0.3} {
		left := mgl64.Vec2{0.5 - dx, 0.5}
		right := mgl64.Vec2{0.5 + dx, 0.5}

		trL := TraceUV(left, f)
		trR := TraceUV(right, f)
		if trL.Outcome != OutcomeLensed || trR.Outcome != OutcomeLensed {
			continue
		}

		defL := trL.SourceUV.Sub(left).Len()
		defR := trR.SourceUV.Sub(right).Len()
		if math.Abs(defL-defR) > 1e-9 {
			t.Errorf("dx %f: asymmetric deflection %e vs %e", dx, defL, defR)
		}
	}
}

func TestMonotonicMagnification(t *testing.T) {
	uv := mgl64.Vec2{0.5 + 0.2, 0.5}
	prev := -1.0
	for _, strength := range []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1} {
		f := testFrame(320, 180, strength, 1.69)
		tr := TraceUV(uv, f)
		if tr.Outcome != OutcomeLensed {
			t.Fatalf("strength %f: expected lensed outcome, got %d", strength, tr.Outcome)
		}
		deflection := tr.SourceUV.Sub(uv).Len()
		if deflection <= prev {
			t.Errorf("strength %f: deflection %e not greater than %e", strength, deflection, prev)
		}
		prev = deflection
	}
}

func TestEndToEndScenario(t *testing.T) {
	// Black hole at (0,0,-15), horizon 1.69, strength 0.03334, camera at
	// (0,0,10) looking down -Z.
	f := testFrame(320, 180, 0.03334, 1.69)

	// Exact center of the hole's projection: absorbed.
	center := Sample(mgl64.Vec2{0.5, 0.5}, f)
	if !center.Absorbed {
		t.Error("center pixel should be absorbed")
	}

	// 0.3 away in aspect-corrected space: defined, deflected color.
	aspect := f.Camera.Aspect()
	uv := mgl64.Vec2{0.5 + 0.3/aspect, 0.5}
	tr := TraceUV(uv, f)
	if tr.Outcome != OutcomeLensed {
		t.Fatalf("offset pixel should be lensed, got outcome %d", tr.Outcome)
	}

	deflection := tr.SourceUV.Sub(uv).Len()
	if !(deflection > 0) || math.IsInf(deflection, 0) || math.IsNaN(deflection) {
		t.Errorf("deflected distance should be strictly positive and finite, got %e", deflection)
	}

	result := Sample(uv, f)
	if result.Absorbed {
		t.Error("offset pixel should not be absorbed")
	}
	t.Logf("offset pixel: source %v, deflection %e", tr.SourceUV, deflection)
}

func TestNearZeroScreenDistanceFallsBack(t *testing.T) {
	// Tiny horizon so the absorption test misses, pixel almost exactly on
	// the hole's projection: r² under epsilon must fall back to unlensed
	// background, not divide by near-zero.
	f := testFrame(320, 180, 0.03334, 0.001)

	uv := mgl64.Vec2{0.5 + 0.0005/f.Camera.Aspect(), 0.5}
	tr := TraceUV(uv, f)
	if tr.Outcome != OutcomeBackground {
		t.Fatalf("expected background fallback, got outcome %d", tr.Outcome)
	}
	if tr.SourceUV != uv {
		t.Errorf("fallback should sample at the pixel's own uv, got %v", tr.SourceUV)
	}
}

func TestBehindCameraMargin(t *testing.T) {
	f := testFrame(320, 180, 0.03334, 0.5)
	uv := mgl64.Vec2{0.5, 0.5}

	// Hole just behind the camera but within the 2x-horizon margin: the
	// ray still passes inside the horizon, so the pixel is absorbed
	// rather than abruptly dropping to background.
	f.BlackHole = mgl64.Vec3{0, 0, 10.5}
	if tr := TraceUV(uv, f); tr.Outcome != OutcomeAbsorbed {
		t.Errorf("hole within behind-camera margin: expected absorbed, got %d", tr.Outcome)
	}

	// Hole well behind the camera, outside the margin: unlensed background.
	f.BlackHole = mgl64.Vec3{0, 0, 13}
	tr := TraceUV(uv, f)
	if tr.Outcome != OutcomeBackground {
		t.Errorf("hole outside behind-camera margin: expected background, got %d", tr.Outcome)
	}
	if tr.SourceUV != uv {
		t.Errorf("background fallback should keep the pixel's own uv")
	}
}

func TestDriftSharedAndBounded(t *testing.T) {
	for _, elapsed := range []float64{0, 1.5, 30, 1234.5} {
		d1 := Drift(elapsed)
		d2 := Drift(elapsed)
		if d1 != d2 {
			t.Errorf("drift must be a pure function of elapsed time")
		}
		if math.Abs(d1.X()) > driftAmplitude || math.Abs(d1.Y()) > driftAmplitude {
			t.Errorf("t=%f: drift %v exceeds amplitude %f", elapsed, d1, driftAmplitude)
		}
	}

	if Drift(10) == Drift(20) {
		t.Error("drift should vary with elapsed time")
	}
}

func TestBrightnessScalesBackground(t *testing.T) {
	f := testFrame(320, 180, 0.03334, 1.69)
	uv := mgl64.Vec2{0.1, 0.1}

	f.Brightness = 2.0
	bright := Sample(uv, f)
	f.Brightness = 1.0
	normal := Sample(uv, f)

	if math.Abs(bright.Color.R-2*normal.Color.R) > 1e-12 {
		t.Errorf("brightness 2 should double the sampled color: %v vs %v", bright.Color, normal.Color)
	}
}
