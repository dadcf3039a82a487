package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gravlens/go-gravlens/pkg/anim"
	"github.com/gravlens/go-gravlens/pkg/core"
	"github.com/gravlens/go-gravlens/pkg/lens"
	"github.com/gravlens/go-gravlens/pkg/renderer"
	"github.com/gravlens/go-gravlens/pkg/sky"
)

func main() {
	// Parse command line flags
	width := flag.Int("width", 960, "Output width in pixels")
	height := flag.Int("height", 540, "Output height in pixels")
	strength := flag.Float64("strength", lens.DefaultParams().Strength, "Lensing strength (screen-space Einstein radius squared)")
	horizon := flag.Float64("horizon", lens.DefaultParams().HorizonRadius, "Event-horizon radius in world units")
	brightness := flag.Float64("brightness", 1.0, "Background brightness")
	elapsed := flag.Float64("time", 0, "Elapsed time of the (first) frame in seconds")
	frames := flag.Int("frames", 1, "Number of animation frames to render")
	step := flag.Float64("step", 1.0/30.0, "Time advance per animation frame in seconds")
	skyPath := flag.String("sky", "", "Background sky image (PNG/JPEG); empty uses the generated starfield")
	workers := flag.Int("workers", 0, "Number of render workers (0 = CPU count)")
	outDir := flag.String("out", "output", "Output directory")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Gravitational Lensing Renderer")
		fmt.Println("Usage: gravlens [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Renders the screen-space lensing approximation around a black hole")
		fmt.Println("to <out>/render_<timestamp>.png, or <out>/frame_<n>.png for animations.")
		return
	}

	logger := core.NewStdoutLogger()
	logger.Printf("Starting lensing render (%dx%d)...\n", *width, *height)

	params := lens.DefaultParams()
	params.Strength = *strength
	params.HorizonRadius = *horizon
	params.Brightness = *brightness
	params = params.Clamp()

	field := sky.LoadOrPlaceholder(*skyPath, logger)

	blackHoleRest := mgl64.Vec3{0, 0, -15}
	camera := lens.NewCamera(lens.CameraConfig{
		Center: mgl64.Vec3{0, 0, 10},
		LookAt: blackHoleRest,
		Up:     mgl64.Vec3{0, 1, 0},
		VFov:   50,
		Width:  *width,
		Height: *height,
	})
	orbit := anim.Orbit{Center: blackHoleRest, Radius: params.OrbitRadius, Speed: params.OrbitSpeed}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		return
	}

	r := renderer.NewRenderer(*width, *height, *workers, logger)
	defer r.Close()

	bloom := renderer.BloomConfig{
		Strength:  params.BloomStrength,
		Radius:    params.BloomRadius,
		Threshold: params.BloomThreshold,
	}

	frameFn := func(t float64) lens.Frame {
		return lens.NewFrame(camera, orbit.Position(t), params, t, field)
	}

	if *frames <= 1 {
		img, stats := r.Render(frameFn(*elapsed))
		renderer.ApplyBloom(img, bloom)

		logger.Printf("Render completed in %v (%.1f%% absorbed)\n",
			stats.Duration, 100*stats.AbsorbedFraction())

		timestamp := time.Now().Format("20060102_150405")
		filename := filepath.Join(*outDir, fmt.Sprintf("render_%s.png", timestamp))
		if err := savePNG(filename, img); err != nil {
			fmt.Printf("Error saving PNG: %v\n", err)
			return
		}
		logger.Printf("Render saved as %s\n", filename)
		return
	}

	cfg := renderer.AnimationConfig{
		Frames: *frames,
		Start:  *elapsed,
		Step:   *step,
		Bloom:  bloom,
	}
	frameChan, errChan := r.RenderAnimation(context.Background(), frameFn, cfg)

	for result := range frameChan {
		filename := filepath.Join(*outDir, fmt.Sprintf("frame_%04d.png", result.Index))
		if err := savePNG(filename, result.Image); err != nil {
			fmt.Printf("Error saving PNG: %v\n", err)
			return
		}
		logger.Printf("Frame %d/%d saved as %s (%v)\n",
			result.Index+1, *frames, filename, result.Stats.Duration)
	}
	if err := <-errChan; err != nil {
		fmt.Printf("Animation aborted: %v\n", err)
	}
}

func savePNG(filename string, img *image.RGBA) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}
