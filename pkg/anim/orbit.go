// Package anim animates the black hole's world position. The lensing
// transform only consumes the resulting position, never the motion law.
package anim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Orbit moves the black hole on a Lissajous-like figure in the plane
// perpendicular to the default view direction. Position is a pure function of
// elapsed time, so pausing and scrubbing stay deterministic.
type Orbit struct {
	Center mgl64.Vec3 // rest position
	Radius float64    // excursion in world units
	Speed  float64    // angular rate in radians/second
}

// Frequency ratio between the two axes. Chosen irrational-ish so the figure
// never visibly closes.
const axisRatio = 1.318

// Position returns the black-hole world position at elapsed time t
func (o Orbit) Position(t float64) mgl64.Vec3 {
	if o.Radius == 0 || o.Speed == 0 {
		return o.Center
	}
	phase := t * o.Speed
	return o.Center.Add(mgl64.Vec3{
		o.Radius * math.Sin(phase),
		o.Radius * 0.6 * math.Sin(phase*axisRatio),
		0,
	})
}
