// Command viewer is the interactive desktop viewer: a real-time approximation
// of gravitational lensing around an orbiting black hole, with keyboard
// control over the lensing parameters and optional diagnostic overlays.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gravlens/go-gravlens/pkg/anim"
	"github.com/gravlens/go-gravlens/pkg/config"
	"github.com/gravlens/go-gravlens/pkg/core"
	"github.com/gravlens/go-gravlens/pkg/diag"
	"github.com/gravlens/go-gravlens/pkg/lens"
	"github.com/gravlens/go-gravlens/pkg/renderer"
	"github.com/gravlens/go-gravlens/pkg/sky"
)

func main() {
	configPath := flag.String("config", "gravlens.toml", "Viewer configuration file (TOML)")
	flag.Parse()

	conf, err := config.ParseConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	game, err := newGame(conf)
	if err != nil {
		log.Fatalf("viewer: %v", err)
	}
	defer game.renderer.Close()

	ebiten.SetWindowTitle("gravlens")
	ebiten.SetWindowSize(conf.Window.Width, conf.Window.Height)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

// Game owns all mutable viewer state. Parameters are only ever mutated in
// Update and captured into an immutable Frame snapshot before Draw renders,
// so no evaluation pass can observe a half-updated parameter set.
type Game struct {
	conf     *config.Config
	params   lens.Params
	camera   *lens.Camera
	orbit    anim.Orbit
	field    sky.Field
	renderer *renderer.Renderer

	elapsed float64
	paused  bool
	bloomOn bool
	diagOn  bool
	helpOn  bool

	frame     lens.Frame
	frameImg  *ebiten.Image
	lastStats renderer.FrameStats
}

func newGame(conf *config.Config) (*Game, error) {
	rw := conf.Window.Width / conf.Window.RenderScale
	rh := conf.Window.Height / conf.Window.RenderScale
	if rw < 8 || rh < 8 {
		return nil, fmt.Errorf("render resolution %dx%d too small, check Window.RenderScale", rw, rh)
	}

	logger := core.NewStdoutLogger()
	params := conf.Params.Clamp()

	blackHoleRest := mgl64.Vec3{0, 0, conf.Scene.BlackHoleZ}
	camera := lens.NewCamera(lens.CameraConfig{
		Center: mgl64.Vec3{0, 0, conf.Scene.CameraZ},
		LookAt: blackHoleRest,
		Up:     mgl64.Vec3{0, 1, 0},
		VFov:   conf.Scene.VFov,
		Width:  rw,
		Height: rh,
	})

	g := &Game{
		conf:     conf,
		params:   params,
		camera:   camera,
		orbit:    anim.Orbit{Center: blackHoleRest, Radius: params.OrbitRadius, Speed: params.OrbitSpeed},
		field:    sky.LoadOrPlaceholder(conf.Sky.Image, logger),
		renderer: renderer.NewRenderer(rw, rh, conf.Workers, logger),
		bloomOn:  true,
		frameImg: ebiten.NewImage(rw, rh),
	}
	g.frame = g.snapshot()
	return g, nil
}

// snapshot captures the current parameters and scene state into the
// per-frame value consumed by the render pass
func (g *Game) snapshot() lens.Frame {
	return lens.NewFrame(g.camera, g.orbit.Position(g.elapsed), g.params, g.elapsed, g.field)
}

// Per-tick adjustment rates for held keys.
const (
	strengthRate   = 0.0004
	horizonRate    = 0.02
	brightnessRate = 0.02
	orbitRate      = 0.03
)

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.bloomOn = !g.bloomOn
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.diagOn = !g.diagOn
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) || inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.helpOn = !g.helpOn
	}

	adjust := func(up, down ebiten.Key, v *float64, rate float64) {
		if ebiten.IsKeyPressed(up) {
			*v += rate
		}
		if ebiten.IsKeyPressed(down) {
			*v -= rate
		}
	}
	adjust(ebiten.KeyW, ebiten.KeyS, &g.params.Strength, strengthRate)
	adjust(ebiten.KeyE, ebiten.KeyQ, &g.params.HorizonRadius, horizonRate)
	adjust(ebiten.KeyR, ebiten.KeyF, &g.params.Brightness, brightnessRate)
	adjust(ebiten.KeyT, ebiten.KeyG, &g.params.OrbitRadius, orbitRate)
	g.params = g.params.Clamp()

	g.orbit.Radius = g.params.OrbitRadius
	g.orbit.Speed = g.params.OrbitSpeed

	if !g.paused {
		g.elapsed += 1.0 / float64(ebiten.TPS())
	}

	g.frame = g.snapshot()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	img, stats := g.renderer.Render(g.frame)
	if g.bloomOn {
		renderer.ApplyBloom(img, renderer.BloomConfig{
			Strength:  g.params.BloomStrength,
			Radius:    g.params.BloomRadius,
			Threshold: g.params.BloomThreshold,
		})
	}
	g.lastStats = stats

	g.frameImg.WritePixels(img.Pix)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.conf.Window.RenderScale), float64(g.conf.Window.RenderScale))
	screen.DrawImage(g.frameImg, op)

	if g.diagOn {
		g.drawRayPaths(screen)
		g.drawDeflectionGraph(screen)
	}
	g.drawHUD(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.conf.Window.Width, g.conf.Window.Height
}

// uvToScreen maps a UV coordinate to window pixels (V=0 at the bottom)
func (g *Game) uvToScreen(uv mgl64.Vec2) (float32, float32) {
	return float32(uv.X() * float64(g.conf.Window.Width)),
		float32((1.0 - uv.Y()) * float64(g.conf.Window.Height))
}

var (
	rayColor   = color.RGBA{R: 255, G: 196, B: 64, A: 160}
	graphColor = color.RGBA{R: 96, G: 196, B: 255, A: 220}
	boxColor   = color.RGBA{R: 255, G: 255, B: 255, A: 64}
)

// drawRayPaths overlays the decorative bent-light paths. These are an
// approximation for display; they may diverge from the per-pixel transform.
func (g *Game) drawRayPaths(screen *ebiten.Image) {
	holeUV, ok := g.frame.Camera.ProjectToUV(g.frame.BlackHole)
	if !ok {
		return
	}
	screenHorizon, ok := diag.ScreenHorizon(g.frame.Camera, g.frame.BlackHole, g.frame.Horizon)
	if !ok {
		return
	}

	paths := diag.RayPaths(holeUV, screenHorizon, g.frame.Strength, g.frame.Camera.Aspect(), 4)
	for _, path := range paths {
		if path.Absorbed {
			continue
		}
		for i := 1; i < len(path.Points); i++ {
			x0, y0 := g.uvToScreen(path.Points[i-1])
			x1, y1 := g.uvToScreen(path.Points[i])
			vector.StrokeLine(screen, x0, y0, x1, y1, 1, rayColor, true)
		}
	}
}

// drawDeflectionGraph plots strength/r over a fixed UV-distance domain in the
// lower-left corner. Illustrative only.
func (g *Game) drawDeflectionGraph(screen *ebiten.Image) {
	const (
		gw, gh   = 200.0, 90.0
		margin   = 12.0
		rMin     = 0.02
		rMax     = 0.5
		nSamples = 64
	)
	x0 := float32(margin)
	y0 := float32(float64(g.conf.Window.Height) - margin - gh)

	// Frame box
	vector.StrokeRect(screen, x0, y0, gw, gh, 1, boxColor, false)

	points := diag.DeflectionCurve(g.frame.Strength, rMin, rMax, nSamples)
	if len(points) == 0 {
		return
	}
	maxD := points[0].Deflection
	for i := 1; i < len(points); i++ {
		px := x0 + float32(gw*(points[i-1].R-rMin)/(rMax-rMin))
		py := y0 + float32(gh*(1.0-points[i-1].Deflection/maxD))
		qx := x0 + float32(gw*(points[i].R-rMin)/(rMax-rMin))
		qy := y0 + float32(gh*(1.0-points[i].Deflection/maxD))
		vector.StrokeLine(screen, px, py, qx, qy, 1, graphColor, true)
	}
	ebitenutil.DebugPrintAt(screen, "deflection / distance", int(x0)+4, int(y0)-16)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	status := fmt.Sprintf(
		"strength %.5f  horizon %.2f  brightness %.2f  orbit %.2f  |  %.0fms  %.1f%% absorbed",
		g.params.Strength, g.params.HorizonRadius, g.params.Brightness, g.params.OrbitRadius,
		float64(g.lastStats.Duration.Milliseconds()), 100*g.lastStats.AbsorbedFraction())
	ebitenutil.DebugPrintAt(screen, status, 8, 8)

	if g.helpOn {
		help := "W/S strength  E/Q horizon  R/F brightness  T/G orbit radius\n" +
			"Space pause  B bloom  D diagnostics  H help  Esc quit"
		ebitenutil.DebugPrintAt(screen, help, 8, 28)
	} else {
		ebitenutil.DebugPrintAt(screen, "H for help", 8, 28)
	}
}
