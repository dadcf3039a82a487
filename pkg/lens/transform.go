package lens

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gravlens/go-gravlens/pkg/core"
	"github.com/gravlens/go-gravlens/pkg/sky"
)

const (
	// epsilon guards every division by a squared screen distance
	epsilon = 1e-6

	// behindMargin keeps lensing alive when the hole sits just behind the
	// camera at grazing geometry, in multiples of the horizon radius.
	// Without it the lensing halo drops out abruptly near the margin.
	behindMargin = 2.0

	// Background drift: two incommensurate frequencies, amplitude about
	// 0.5% of UV space.
	driftAmplitude = 0.005
	driftFreqX     = 0.37
	driftFreqY     = 0.59
)

// Frame is the immutable per-frame snapshot consumed by Sample. The host
// assembles one Frame per displayed frame; all per-pixel evaluations of that
// frame observe the same snapshot, so no evaluation can see a half-updated
// parameter set.
type Frame struct {
	Camera     *Camera
	BlackHole  mgl64.Vec3 // black-hole world position
	Horizon    float64    // event-horizon radius, world units
	Strength   float64    // screen-space Einstein-radius-squared
	Brightness float64    // background brightness scalar
	Time       float64    // elapsed seconds, shared by every pixel of the frame
	Sky        sky.Field
}

// NewFrame captures a parameter set and scene state into a snapshot
func NewFrame(camera *Camera, blackHole mgl64.Vec3, params Params, elapsed float64, field sky.Field) Frame {
	return Frame{
		Camera:     camera,
		BlackHole:  blackHole,
		Horizon:    params.HorizonRadius,
		Strength:   params.Strength,
		Brightness: params.Brightness,
		Time:       elapsed,
		Sky:        field,
	}
}

// Outcome classifies a traced pixel
type Outcome int

const (
	// OutcomeBackground: the pixel samples the background at its own UV
	// (degenerate geometry or hole effectively behind the camera)
	OutcomeBackground Outcome = iota
	// OutcomeAbsorbed: the ray passes inside the event horizon
	OutcomeAbsorbed
	// OutcomeLensed: the pixel samples the background at a deflected UV
	OutcomeLensed
)

// Trace is the geometric result of the transform for one pixel: either
// absorbed, or a background sampling coordinate before drift and wrap.
type Trace struct {
	Outcome  Outcome
	SourceUV mgl64.Vec2
}

// Result is the color outcome for one pixel. Exactly one of the two cases
// holds: absorbed (opaque black) or a defined color.
type Result struct {
	Color    core.Color
	Absorbed bool
}

// TraceUV maps an observed screen position to its background-sample position.
//
// Steps: reconstruct the pixel's world ray, test closest approach against the
// black hole (with the behind-camera margin exception), absorb rays whose
// impact parameter falls inside the event horizon, then remap the sampling
// coordinate radially around the hole's screen projection by a factor of
// (1 - strength/r²) in aspect-corrected UV space.
//
// Pure function of its inputs; every input yields a defined Trace.
func TraceUV(uv mgl64.Vec2, f Frame) Trace {
	origin := f.Camera.Position()
	dir := f.Camera.RayDirection(uv)

	// Signed distance along the ray to the point of closest approach.
	toHole := f.BlackHole.Sub(origin)
	tca := toHole.Dot(dir)
	if tca < 0 && toHole.Len() > behindMargin*f.Horizon {
		// Hole is behind the ray origin and outside the guard margin.
		return Trace{Outcome: OutcomeBackground, SourceUV: uv}
	}

	// Impact parameter: perpendicular distance from the hole to the ray.
	dSq := toHole.Dot(toHole) - tca*tca
	if dSq < f.Horizon*f.Horizon {
		return Trace{Outcome: OutcomeAbsorbed}
	}

	holeUV, ok := f.Camera.ProjectToUV(f.BlackHole)
	if !ok {
		// Projection undefined behind the camera.
		return Trace{Outcome: OutcomeBackground, SourceUV: uv}
	}

	// Screen-space distances are measured in a square-pixel metric, not raw
	// UV, or the halo comes out elliptical.
	aspect := f.Camera.Aspect()
	centered := uv.Sub(holeUV)
	centered[0] *= aspect

	rSq := centered.Dot(centered)
	if rSq < epsilon {
		// On-screen coincidence with the projection that step 3 did not
		// catch (hole off-screen or at an extreme angle).
		return Trace{Outcome: OutcomeBackground, SourceUV: uv}
	}

	// The (1 - strength/r²) factor pulls the sample point radially through
	// the lens center as r² shrinks.
	offset := centered.Mul(1.0 - f.Strength/rSq)
	offset[0] /= aspect

	return Trace{Outcome: OutcomeLensed, SourceUV: holeUV.Add(offset)}
}

// Drift returns the shared time-dependent background scroll offset for a frame
func Drift(elapsed float64) mgl64.Vec2 {
	return mgl64.Vec2{
		driftAmplitude * math.Sin(elapsed*driftFreqX),
		driftAmplitude * math.Cos(elapsed*driftFreqY),
	}
}

// Sample produces the pixel color for an observed screen position: TraceUV
// plus the shared drift offset, wraparound background sampling, and
// brightness scaling.
func Sample(uv mgl64.Vec2, f Frame) Result {
	tr := TraceUV(uv, f)
	if tr.Outcome == OutcomeAbsorbed {
		return Result{Color: core.Black, Absorbed: true}
	}

	d := Drift(f.Time)
	c := f.Sky.Sample(tr.SourceUV.X()+d.X(), tr.SourceUV.Y()+d.Y())
	return Result{Color: c.Multiply(f.Brightness)}
}
