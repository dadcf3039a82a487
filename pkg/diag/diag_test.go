package diag

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gravlens/go-gravlens/pkg/lens"
)

func TestDeflectionCurveShape(t *testing.T) {
	points := DeflectionCurve(0.03334, 0.02, 0.5, 64)
	if len(points) != 64 {
		t.Fatalf("expected 64 samples, got %d", len(points))
	}
	if points[0].R != 0.02 || math.Abs(points[63].R-0.5) > 1e-12 {
		t.Errorf("domain endpoints: %f .. %f", points[0].R, points[63].R)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Deflection >= points[i-1].Deflection {
			t.Fatalf("deflection must decrease with distance: sample %d", i)
		}
	}
	if math.Abs(points[0].Deflection-0.03334/0.02) > 1e-12 {
		t.Errorf("first sample: %f", points[0].Deflection)
	}
}

func TestDeflectionCurveDegenerateDomain(t *testing.T) {
	if DeflectionCurve(0.03, 0.5, 0.1, 8) != nil {
		t.Error("inverted domain should yield no curve")
	}
	if DeflectionCurve(0.03, 0, 0.5, 8) != nil {
		t.Error("zero rMin would divide by zero, should yield no curve")
	}
	if DeflectionCurve(0.03, 0.1, 0.5, 1) != nil {
		t.Error("a single sample is not a curve")
	}
}

func TestRayPathsSkipNearHorizon(t *testing.T) {
	holeUV := mgl64.Vec2{0.5, 0.5}
	paths := RayPaths(holeUV, 0.08, 0.03334, 16.0/9.0, 4)

	if len(paths) != 8 {
		t.Fatalf("expected 4 paths per side, got %d", len(paths))
	}

	drawn, absorbed := 0, 0
	for _, p := range paths {
		if p.Absorbed {
			if p.Points != nil {
				t.Error("absorbed paths must not carry points")
			}
			absorbed++
			continue
		}
		drawn++
		if len(p.Points) < 2 {
			t.Error("drawn path needs at least two points")
		}
	}
	if drawn == 0 {
		t.Error("some paths should survive outside the horizon margin")
	}
	if absorbed == 0 {
		t.Error("paths at the horizon itself must be skipped, not drawn")
	}
}

func TestRayPathsBendTowardHole(t *testing.T) {
	holeUV := mgl64.Vec2{0.5, 0.5}
	aspect := 16.0 / 9.0
	paths := RayPaths(holeUV, 0.05, 0.03334, aspect, 3)

	for _, p := range paths {
		if p.Absorbed {
			continue
		}
		first := p.Points[0]
		last := p.Points[len(p.Points)-1]

		// Downstream of closest approach the path is pulled toward the
		// hole's vertical position.
		startDist := math.Abs(first.Y() - holeUV.Y())
		endDist := math.Abs(last.Y() - holeUV.Y())
		if endDist >= startDist {
			t.Errorf("path did not bend toward the hole: %f -> %f", startDist, endDist)
		}
	}
}

func TestScreenHorizonCenteredScene(t *testing.T) {
	camera := lens.NewCamera(lens.CameraConfig{
		Center: mgl64.Vec3{0, 0, 10},
		LookAt: mgl64.Vec3{0, 0, -15},
		Up:     mgl64.Vec3{0, 1, 0},
		VFov:   50,
		Width:  320,
		Height: 180,
	})
	blackHole := mgl64.Vec3{0, 0, -15}

	r, ok := ScreenHorizon(camera, blackHole, 1.69)
	if !ok {
		t.Fatal("centered hole should project")
	}
	if r <= 0 || r > 0.5 {
		t.Errorf("screen horizon %f out of plausible range", r)
	}

	// Larger horizon must appear larger on screen.
	r2, _ := ScreenHorizon(camera, blackHole, 3.0)
	if r2 <= r {
		t.Errorf("horizon 3.0 should project larger than 1.69: %f vs %f", r2, r)
	}

	// Behind the camera the estimate is undefined.
	if _, ok := ScreenHorizon(camera, mgl64.Vec3{0, 0, 30}, 1.69); ok {
		t.Error("hole behind the camera should not yield a screen radius")
	}
}
