package renderer

import (
	"context"
	"image"

	"github.com/gravlens/go-gravlens/pkg/lens"
)

// FrameFn builds the Frame snapshot for a given elapsed time. The callback
// owns all state mutation (camera, animator, parameters); the renderer only
// consumes the resulting snapshot.
type FrameFn func(elapsed float64) lens.Frame

// AnimationConfig configures a streamed frame sequence
type AnimationConfig struct {
	Frames int     // number of frames to render
	Start  float64 // elapsed time of the first frame, seconds
	Step   float64 // time advance per frame, seconds
	Bloom  BloomConfig
}

// FrameResult is one rendered frame of an animation
type FrameResult struct {
	Index   int
	Elapsed float64
	Image   *image.RGBA
	Stats   FrameStats
	IsLast  bool
}

// RenderAnimation renders a frame sequence with channel-based communication.
// Frames are rendered one at a time; within each frame the band workers all
// observe the same snapshot. The error channel reports context cancellation.
func (r *Renderer) RenderAnimation(ctx context.Context, frameFn FrameFn, cfg AnimationConfig) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		for i := 0; i < cfg.Frames; i++ {
			select {
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			default:
			}

			elapsed := cfg.Start + float64(i)*cfg.Step
			img, stats := r.Render(frameFn(elapsed))
			ApplyBloom(img, cfg.Bloom)

			result := FrameResult{
				Index:   i,
				Elapsed: elapsed,
				Image:   img,
				Stats:   stats,
				IsLast:  i == cfg.Frames-1,
			}

			select {
			case frameChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return frameChan, errChan
}
