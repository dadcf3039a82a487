// Package diag provides the overlay diagnostics: decorative bent-light paths
// and the deflection-vs-distance curve. Both are deliberately rough
// restatements of the lensing remap for display only. They consume the same
// public parameters as the per-pixel transform but never share its code path,
// and their output is allowed to diverge from it.
package diag

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gravlens/go-gravlens/pkg/lens"
)

// absorbMargin widens the skip band around the horizon so paths that would
// graze the silhouette are dropped instead of drawn through it.
const absorbMargin = 0.15

// Path is one approximate light path as a screen-UV polyline. Absorbed paths
// carry no points and are not drawn.
type Path struct {
	Points   []mgl64.Vec2
	Absorbed bool
}

// ScreenHorizon estimates the event horizon's apparent radius in
// aspect-corrected UV units by projecting a point one horizon-radius to the
// camera's right of the hole. Returns false when the hole cannot be projected.
func ScreenHorizon(camera *lens.Camera, blackHole mgl64.Vec3, horizon float64) (float64, bool) {
	center, ok := camera.ProjectToUV(blackHole)
	if !ok {
		return 0, false
	}
	rim, ok := camera.ProjectToUV(blackHole.Add(camera.Right().Mul(horizon)))
	if !ok {
		return 0, false
	}
	d := rim.Sub(center)
	d[0] *= camera.Aspect()
	return d.Len(), true
}

// RayPaths builds count approximate paths passing the hole at evenly spaced
// impact distances on both sides. Each path runs horizontally across the
// screen in aspect-corrected space: straight until closest approach, then
// bent toward the hole by the small-angle deflection strength/b.
func RayPaths(holeUV mgl64.Vec2, screenHorizon, strength, aspect float64, count int) []Path {
	if count < 1 {
		return nil
	}

	const span = 0.55 // horizontal half-extent of each path, aspect-corrected UV
	maxImpact := screenHorizon*3 + 0.25

	paths := make([]Path, 0, 2*count)
	for side := -1; side <= 1; side += 2 {
		for i := 0; i < count; i++ {
			b := float64(side) * (screenHorizon + (maxImpact-screenHorizon)*float64(i)/float64(count))
			paths = append(paths, tracePath(holeUV, screenHorizon, strength, aspect, b, span))
		}
	}
	return paths
}

func tracePath(holeUV mgl64.Vec2, screenHorizon, strength, aspect, b, span float64) Path {
	abs := b
	if abs < 0 {
		abs = -abs
	}
	if abs < screenHorizon*(1+absorbMargin) {
		return Path{Absorbed: true}
	}

	// Total bend applied after closest approach, pulled toward the axis.
	bend := strength / abs
	if b < 0 {
		bend = -bend
	}

	const segments = 12
	points := make([]mgl64.Vec2, 0, segments+1)
	for s := 0; s <= segments; s++ {
		x := -span + 2*span*float64(s)/float64(segments)
		y := b
		if x > 0 {
			y -= bend * x
		}
		// De-correct the aspect factor to return to raw UV.
		points = append(points, mgl64.Vec2{holeUV.X() + x/aspect, holeUV.Y() + y})
	}
	return Path{Points: points}
}
