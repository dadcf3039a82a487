package renderer

import "time"

// FrameStats contains statistics about one rendered frame
type FrameStats struct {
	TotalPixels    int           // total number of pixels evaluated
	AbsorbedPixels int           // pixels inside the event-horizon silhouette
	Duration       time.Duration // wall-clock render time for the frame
}

// AbsorbedFraction returns the share of the frame covered by the silhouette
func (fs FrameStats) AbsorbedFraction() float64 {
	if fs.TotalPixels == 0 {
		return 0
	}
	return float64(fs.AbsorbedPixels) / float64(fs.TotalPixels)
}
