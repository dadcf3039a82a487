package lens

// Parameter ranges enforced by Clamp. Values outside these ranges never reach
// the transform.
const (
	MinStrength = 0.00001
	MaxStrength = 0.1

	MinHorizon = 0.01
	MaxHorizon = 5.0

	MaxBrightness = 4.0

	MaxOrbitRadius = 10.0
	MaxOrbitSpeed  = 2.0

	MaxBloomStrength  = 2.0
	MaxBloomRadius    = 32
	MaxBloomThreshold = 1.0
)

// Params is the user-adjustable parameter surface. A Params value is captured
// into a Frame snapshot once per frame; the transform never reads it directly.
type Params struct {
	Strength      float64 // screen-space Einstein-radius-squared
	HorizonRadius float64 // event-horizon radius, world units
	Brightness    float64 // background brightness scalar

	OrbitRadius float64 // black-hole animation radius, world units
	OrbitSpeed  float64 // black-hole animation speed, radians/second

	BloomStrength  float64
	BloomRadius    int // pixels
	BloomThreshold float64
}

// DefaultParams returns the startup parameter set
func DefaultParams() Params {
	return Params{
		Strength:      0.03334,
		HorizonRadius: 1.69,
		Brightness:    1.0,

		OrbitRadius: 2.5,
		OrbitSpeed:  0.25,

		BloomStrength:  0.8,
		BloomRadius:    6,
		BloomThreshold: 0.55,
	}
}

// Clamp returns a copy with every parameter forced into its valid range
func (p Params) Clamp() Params {
	p.Strength = clamp(p.Strength, MinStrength, MaxStrength)
	p.HorizonRadius = clamp(p.HorizonRadius, MinHorizon, MaxHorizon)
	p.Brightness = clamp(p.Brightness, 0, MaxBrightness)
	p.OrbitRadius = clamp(p.OrbitRadius, 0, MaxOrbitRadius)
	p.OrbitSpeed = clamp(p.OrbitSpeed, 0, MaxOrbitSpeed)
	p.BloomStrength = clamp(p.BloomStrength, 0, MaxBloomStrength)
	if p.BloomRadius < 0 {
		p.BloomRadius = 0
	}
	if p.BloomRadius > MaxBloomRadius {
		p.BloomRadius = MaxBloomRadius
	}
	p.BloomThreshold = clamp(p.BloomThreshold, 0, MaxBloomThreshold)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
