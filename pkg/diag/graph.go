package diag

// CurvePoint is one sample of the deflection curve
type CurvePoint struct {
	R          float64 // aspect-corrected UV distance from the hole
	Deflection float64 // strength / r
}

// DeflectionCurve samples strength/r over a fixed UV-distance domain for the
// HUD graph. Illustrative only; it has no feedback into the transform.
func DeflectionCurve(strength, rMin, rMax float64, n int) []CurvePoint {
	if n < 2 || rMax <= rMin || rMin <= 0 {
		return nil
	}
	points := make([]CurvePoint, n)
	for i := 0; i < n; i++ {
		r := rMin + (rMax-rMin)*float64(i)/float64(n-1)
		points[i] = CurvePoint{R: r, Deflection: strength / r}
	}
	return points
}
