// Package config loads the viewer configuration from a TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/gravlens/go-gravlens/pkg/lens"
)

// Config holds the parameters required to run the viewer.
type Config struct {
	Window  WindowConfig
	Sky     SkyConfig
	Scene   SceneConfig
	Params  lens.Params // startup values for the interactive parameter surface
	Workers int         // render worker count, 0 = CPU count
}

// WindowConfig is the desktop window layout. RenderScale divides the window
// size to get the internal render resolution; the per-pixel transform runs on
// the CPU, so rendering at full window resolution is expensive.
type WindowConfig struct {
	Width       int
	Height      int
	RenderScale int
}

// SkyConfig selects the background field. An empty image path uses the
// generated starfield; an unreadable file falls back to the placeholder.
type SkyConfig struct {
	Image string
}

// SceneConfig places the camera and the black hole's rest position. The
// camera sits at (0,0,CameraZ) looking down -Z.
type SceneConfig struct {
	CameraZ    float64
	BlackHoleZ float64
	VFov       float64 // vertical field of view, degrees
}

// DefaultConf are the default parameters.
var DefaultConf = &Config{
	Window:  WindowConfig{Width: 1280, Height: 720, RenderScale: 3},
	Sky:     SkyConfig{Image: ""},
	Scene:   SceneConfig{CameraZ: 10, BlackHoleZ: -15, VFov: 50},
	Params:  lens.DefaultParams(),
	Workers: 0,
}

// ParseConfig parses the TOML config file whose path is provided. A missing
// file is not an error: the defaults are returned unchanged.
func ParseConfig(path string) (*Config, error) {
	conf := *DefaultConf
	if path == "" {
		return &conf, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &conf, nil
	}
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	conf.Params = conf.Params.Clamp()
	return &conf, nil
}
