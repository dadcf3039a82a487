package renderer

import (
	"image"
	"image/color"
	"runtime"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gravlens/go-gravlens/pkg/core"
	"github.com/gravlens/go-gravlens/pkg/lens"
)

// bandHeight is the number of rows per worker task. Bands are cheap enough
// that a finer split buys no load balancing.
const bandHeight = 16

// bandTask represents a scanline-band rendering task for the worker pool.
// Every band of one frame carries the same Frame snapshot, so no pixel can
// observe a torn parameter set.
type bandTask struct {
	bounds image.Rectangle
	frame  lens.Frame
	img    *image.RGBA
}

// bandResult contains the per-band statistics from rendering a band
type bandResult struct {
	absorbed int
}

// Renderer evaluates the lensing transform once per pixel across a pool of
// workers. The transform is a pure function, so bands share nothing but the
// read-only Frame snapshot and disjoint rows of the output image.
type Renderer struct {
	width      int
	height     int
	numWorkers int

	tasks   chan bandTask
	results chan bandResult
	wg      sync.WaitGroup
	logger  core.Logger
}

// NewRenderer creates a renderer with the specified worker count and starts
// its workers. numWorkers <= 0 uses the CPU count.
func NewRenderer(width, height, numWorkers int, logger core.Logger) *Renderer {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = core.NewStdoutLogger()
	}

	maxBands := (height + bandHeight - 1) / bandHeight
	r := &Renderer{
		width:      width,
		height:     height,
		numWorkers: numWorkers,
		tasks:      make(chan bandTask, maxBands),
		results:    make(chan bandResult, maxBands),
		logger:     logger,
	}

	for i := 0; i < numWorkers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return r
}

// Resolution returns the output size in pixels
func (r *Renderer) Resolution() (int, int) {
	return r.width, r.height
}

// NumWorkers returns the worker count
func (r *Renderer) NumWorkers() int {
	return r.numWorkers
}

// Close shuts the worker pool down. The renderer cannot be used afterwards.
func (r *Renderer) Close() {
	close(r.tasks)
	r.wg.Wait()
	close(r.results)
}

// Render evaluates one full frame and returns the image plus statistics.
// Render must be called from a single goroutine; the parallelism lives in the
// band workers.
func (r *Renderer) Render(frame lens.Frame) (*image.RGBA, FrameStats) {
	start := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))

	bands := 0
	for y := 0; y < r.height; y += bandHeight {
		y1 := min(y+bandHeight, r.height)
		r.tasks <- bandTask{
			bounds: image.Rect(0, y, r.width, y1),
			frame:  frame,
			img:    img,
		}
		bands++
	}

	stats := FrameStats{TotalPixels: r.width * r.height}
	for i := 0; i < bands; i++ {
		result := <-r.results
		stats.AbsorbedPixels += result.absorbed
	}
	stats.Duration = time.Since(start)
	return img, stats
}

// worker is the main worker loop
func (r *Renderer) worker() {
	defer r.wg.Done()
	for task := range r.tasks {
		r.results <- bandResult{absorbed: r.renderBand(task)}
	}
}

// renderBand evaluates the transform for every pixel of one band and writes
// the rows into the shared output image. Bands have non-overlapping bounds,
// so this is thread-safe.
func (r *Renderer) renderBand(task bandTask) int {
	absorbed := 0
	for y := task.bounds.Min.Y; y < task.bounds.Max.Y; y++ {
		for x := task.bounds.Min.X; x < task.bounds.Max.X; x++ {
			// Pixel center in UV space; V=0 is the bottom row.
			uv := mgl64.Vec2{
				(float64(x) + 0.5) / float64(r.width),
				1.0 - (float64(y)+0.5)/float64(r.height),
			}
			result := lens.Sample(uv, task.frame)
			if result.Absorbed {
				absorbed++
			}
			task.img.SetRGBA(x, y, colorToRGBA(result.Color))
		}
	}
	return absorbed
}

// colorToRGBA converts a linear color to RGBA with gamma correction and clamping
func colorToRGBA(c core.Color) color.RGBA {
	c = c.GammaCorrect(2.0).Clamp(0.0, 1.0)
	return color.RGBA{
		R: uint8(255 * c.R),
		G: uint8(255 * c.G),
		B: uint8(255 * c.B),
		A: 255,
	}
}
