package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gravlens/go-gravlens/pkg/anim"
	"github.com/gravlens/go-gravlens/pkg/core"
	"github.com/gravlens/go-gravlens/pkg/lens"
	"github.com/gravlens/go-gravlens/pkg/renderer"
	"github.com/gravlens/go-gravlens/pkg/sky"
)

// Server handles web requests for the lensing renderer
type Server struct {
	port   int
	field  sky.Field
	logger core.Logger
}

// NewServer creates a new web server. skyPath may be empty to use the
// generated starfield.
func NewServer(port int, skyPath string) *Server {
	logger := core.NewStdoutLogger()
	return &Server{
		port:   port,
		field:  sky.LoadOrPlaceholder(skyPath, logger),
		logger: logger,
	}
}

// FrameRequest represents a render request from the client
type FrameRequest struct {
	Width      int     `json:"width"`      // Image width
	Height     int     `json:"height"`     // Image height
	Strength   float64 `json:"strength"`   // Lensing strength
	Horizon    float64 `json:"horizon"`    // Event-horizon radius, world units
	Brightness float64 `json:"brightness"` // Background brightness
	Time       float64 `json:"time"`       // Elapsed time, seconds
	OrbitR     float64 `json:"orbitRadius"`
	OrbitSpeed float64 `json:"orbitSpeed"`
	BloomOn    bool    `json:"bloom"`
	Frames     int     `json:"frames"` // Animation frame count (SSE endpoint)
	FPS        int     `json:"fps"`    // Animation frame rate (SSE endpoint)
}

// FrameUpdate represents a single animation frame sent via SSE
type FrameUpdate struct {
	FrameNumber int     `json:"frameNumber"`
	TotalFrames int     `json:"totalFrames"`
	Elapsed     float64 `json:"elapsed"`
	ImageData   string  `json:"imageData"` // Base64 encoded PNG
	Stats       Stats   `json:"stats"`
	IsComplete  bool    `json:"isComplete"`
	ElapsedMs   int64   `json:"elapsedMs"`
}

// Stats represents frame render statistics
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	AbsorbedPixels   int     `json:"absorbedPixels"`
	AbsorbedFraction float64 `json:"absorbedFraction"`
	RenderMs         int64   `json:"renderMs"`
}

// Start starts the web server
func (s *Server) Start() error {
	http.Handle("/", http.FileServer(http.Dir("static/")))

	// API endpoints
	http.HandleFunc("/api/frame", s.handleFrame)
	http.HandleFunc("/api/animate", s.handleAnimate)
	http.HandleFunc("/api/params", s.handleParams)
	http.HandleFunc("/api/health", s.handleHealth)

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, nil)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleFrame renders a single frame from validated query parameters and
// returns it as PNG.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFrameRequest(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	rend, frameFn, bloom := s.buildPipeline(req)
	defer rend.Close()

	img, stats := rend.Render(frameFn(req.Time))
	if req.BloomOn {
		renderer.ApplyBloom(img, bloom)
	}

	s.logger.Printf("frame %dx%d rendered in %v (%.1f%% absorbed)\n",
		req.Width, req.Height, stats.Duration, 100*stats.AbsorbedFraction())

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, img); err != nil {
		log.Printf("frame encode error: %v", err)
	}
}

// handleAnimate streams an animated frame sequence as SSE events
func (s *Server) handleAnimate(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req, err := s.parseFrameRequest(r)
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	rend, frameFn, bloom := s.buildPipeline(req)
	defer rend.Close()

	cfg := renderer.AnimationConfig{
		Frames: req.Frames,
		Start:  req.Time,
		Step:   1.0 / float64(req.FPS),
	}
	if req.BloomOn {
		cfg.Bloom = bloom
	}

	// Use request context to detect client disconnection
	ctx := r.Context()
	startTime := time.Now()

	frameChan, errChan := rend.RenderAnimation(ctx, frameFn, cfg)

	for result := range frameChan {
		imageData, err := s.imageToBase64PNG(result.Image)
		if err != nil {
			s.sendSSEError(w, fmt.Sprintf("failed to encode frame: %v", err))
			return
		}

		update := FrameUpdate{
			FrameNumber: result.Index + 1,
			TotalFrames: req.Frames,
			Elapsed:     result.Elapsed,
			ImageData:   imageData,
			Stats: Stats{
				TotalPixels:      result.Stats.TotalPixels,
				AbsorbedPixels:   result.Stats.AbsorbedPixels,
				AbsorbedFraction: result.Stats.AbsorbedFraction(),
				RenderMs:         result.Stats.Duration.Milliseconds(),
			},
			IsComplete: result.IsLast,
			ElapsedMs:  time.Since(startTime).Milliseconds(),
		}
		if err := s.sendSSEUpdate(w, update); err != nil {
			return
		}
	}

	if err := <-errChan; err != nil {
		s.sendSSEError(w, fmt.Sprintf("Render error: %v", err))
		return
	}

	s.sendSSEEvent(w, "complete", "Animation completed")
}

// buildPipeline assembles the renderer, snapshot factory and bloom settings
// for one request
func (s *Server) buildPipeline(req *FrameRequest) (*renderer.Renderer, renderer.FrameFn, renderer.BloomConfig) {
	params := lens.Params{
		Strength:       req.Strength,
		HorizonRadius:  req.Horizon,
		Brightness:     req.Brightness,
		OrbitRadius:    req.OrbitR,
		OrbitSpeed:     req.OrbitSpeed,
		BloomStrength:  lens.DefaultParams().BloomStrength,
		BloomRadius:    lens.DefaultParams().BloomRadius,
		BloomThreshold: lens.DefaultParams().BloomThreshold,
	}.Clamp()

	blackHoleRest := mgl64.Vec3{0, 0, -15}
	camera := lens.NewCamera(lens.CameraConfig{
		Center: mgl64.Vec3{0, 0, 10},
		LookAt: blackHoleRest,
		Up:     mgl64.Vec3{0, 1, 0},
		VFov:   50,
		Width:  req.Width,
		Height: req.Height,
	})
	orbit := anim.Orbit{Center: blackHoleRest, Radius: params.OrbitRadius, Speed: params.OrbitSpeed}

	rend := renderer.NewRenderer(req.Width, req.Height, 0, s.logger)
	frameFn := func(t float64) lens.Frame {
		return lens.NewFrame(camera, orbit.Position(t), params, t, s.field)
	}
	bloom := renderer.BloomConfig{
		Strength:  params.BloomStrength,
		Radius:    params.BloomRadius,
		Threshold: params.BloomThreshold,
	}
	return rend, frameFn, bloom
}

// parseFrameRequest parses request parameters
func (s *Server) parseFrameRequest(r *http.Request) (*FrameRequest, error) {
	req := &FrameRequest{}

	var err error
	if req.Width, err = parseIntParam(r.URL.Query(), "width", 640, 64, 1920); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(r.URL.Query(), "height", 360, 64, 1080); err != nil {
		return nil, err
	}
	if req.Strength, err = parseFloatParam(r.URL.Query(), "strength", lens.DefaultParams().Strength, lens.MinStrength, lens.MaxStrength); err != nil {
		return nil, err
	}
	if req.Horizon, err = parseFloatParam(r.URL.Query(), "horizon", lens.DefaultParams().HorizonRadius, lens.MinHorizon, lens.MaxHorizon); err != nil {
		return nil, err
	}
	if req.Brightness, err = parseFloatParam(r.URL.Query(), "brightness", 1.0, 0, lens.MaxBrightness); err != nil {
		return nil, err
	}
	if req.Time, err = parseFloatParam(r.URL.Query(), "time", 0, 0, 86400); err != nil {
		return nil, err
	}
	if req.OrbitR, err = parseFloatParam(r.URL.Query(), "orbitRadius", 0, 0, lens.MaxOrbitRadius); err != nil {
		return nil, err
	}
	if req.OrbitSpeed, err = parseFloatParam(r.URL.Query(), "orbitSpeed", 0, 0, lens.MaxOrbitSpeed); err != nil {
		return nil, err
	}
	if req.Frames, err = parseIntParam(r.URL.Query(), "frames", 30, 1, 600); err != nil {
		return nil, err
	}
	if req.FPS, err = parseIntParam(r.URL.Query(), "fps", 15, 1, 60); err != nil {
		return nil, err
	}
	req.BloomOn = r.URL.Query().Get("bloom") != "0"

	if req.Width*req.Height > 1280*720 {
		log.Printf("Render warning: large frames render slowly on the CPU path")
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sendSSEUpdate sends a frame update via SSE
func (s *Server) sendSSEUpdate(w http.ResponseWriter, update FrameUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return s.sendSSEEvent(w, "frame", string(data))
}

// sendSSEError sends an error via SSE
func (s *Server) sendSSEError(w http.ResponseWriter, message string) error {
	return s.sendSSEEvent(w, "error", message)
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	if flusher, ok := w.(http.Flusher); ok {
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
		return nil
	}
	return fmt.Errorf("streaming not supported")
}

// handleParams returns the parameter defaults and validation limits
func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	defaults := lens.DefaultParams()
	response := map[string]interface{}{
		"defaults": map[string]interface{}{
			"strength":    defaults.Strength,
			"horizon":     defaults.HorizonRadius,
			"brightness":  defaults.Brightness,
			"orbitRadius": defaults.OrbitRadius,
			"orbitSpeed":  defaults.OrbitSpeed,
		},
		"limits": map[string]interface{}{
			"strength": map[string]float64{
				"min": lens.MinStrength,
				"max": lens.MaxStrength,
			},
			"horizon": map[string]float64{
				"min": lens.MinHorizon,
				"max": lens.MaxHorizon,
			},
			"brightness": map[string]float64{
				"min": 0,
				"max": lens.MaxBrightness,
			},
			"orbitRadius": map[string]float64{
				"min": 0,
				"max": lens.MaxOrbitRadius,
			},
			"orbitSpeed": map[string]float64{
				"min": 0,
				"max": lens.MaxOrbitSpeed,
			},
			"width": map[string]int{
				"min": 64,
				"max": 1920,
			},
			"height": map[string]int{
				"min": 64,
				"max": 1080,
			},
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
