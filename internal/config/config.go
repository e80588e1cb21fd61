// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"math"

	"github.com/Faultbox/panoview/pkg/panorama"
)

// Config holds all viewer settings.
type Config struct {
	Viewport   ViewportConfig   `yaml:"viewport"`
	Render     RenderConfig     `yaml:"render"`
	Navigation NavigationConfig `yaml:"navigation"`
	Window     WindowConfig     `yaml:"window"`
	Detect     DetectConfig     `yaml:"detect"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ViewportConfig holds the output raster and field of view.
type ViewportConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	FOVDegrees float64 `yaml:"fov_degrees"`
}

// RenderConfig holds projection engine settings.
type RenderConfig struct {
	Trig           string `yaml:"trig"`            // "direct" or "table"
	AccuracyFactor int    `yaml:"accuracy_factor"` // table resolution
	Workers        int    `yaml:"workers"`         // 0 = GOMAXPROCS
}

// NavigationConfig holds pointer navigation settings.
type NavigationConfig struct {
	Mode            string  `yaml:"mode"` // smoothed, drag, absolute
	Smoothing       float64 `yaml:"smoothing"`
	PointerGain     float64 `yaml:"pointer_gain"`
	ZoomStepDegrees float64 `yaml:"zoom_step_degrees"`
	MinFOVDegrees   float64 `yaml:"min_fov_degrees"`
	MaxFOVDegrees   float64 `yaml:"max_fov_degrees"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// DetectConfig holds panorama detection settings.
type DetectConfig struct {
	MinWidth int `yaml:"min_width"` // untagged 2:1 images narrower than this are flat
}

// SnapshotConfig holds frame snapshot settings.
type SnapshotConfig struct {
	OutputDir string `yaml:"output_dir"`
	Prefix    string `yaml:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:      800,
			Height:     600,
			FOVDegrees: 110,
		},
		Render: RenderConfig{
			Trig:           "direct",
			AccuracyFactor: panorama.DefaultAccuracyFactor,
			Workers:        0,
		},
		Navigation: NavigationConfig{
			Mode:            "drag",
			Smoothing:       panorama.DefaultSmoothing,
			PointerGain:     panorama.DefaultPointerGain,
			ZoomStepDegrees: 5,
			MinFOVDegrees:   30,
			MaxFOVDegrees:   150,
		},
		Window: WindowConfig{
			Title:      "panoview",
			Fullscreen: false,
			VSync:      true,
		},
		Detect: DetectConfig{
			MinWidth: 2048,
		},
		Snapshot: SnapshotConfig{
			OutputDir: "snapshots",
			Prefix:    "panoview",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ViewportFor returns the engine viewport for a width x height output at
// the configured field of view.
func (c *Config) ViewportFor(width, height int) panorama.ViewportConfig {
	return panorama.ViewportConfig{
		Width:  width,
		Height: height,
		FOV:    panorama.Degrees(c.Viewport.FOVDegrees),
	}
}

// Validate checks the settings the engine cannot recover from. Range
// checks are written so NaN fails them.
func (c *Config) Validate() error {
	if err := c.ViewportFor(c.Viewport.Width, c.Viewport.Height).Validate(); err != nil {
		return fmt.Errorf("viewport: %w", err)
	}

	nav := c.Navigation
	if _, err := panorama.ParseNavigationMode(nav.Mode); err != nil {
		return fmt.Errorf("navigation: %w", err)
	}
	if !(nav.Smoothing > 0 && nav.Smoothing <= 1) {
		return fmt.Errorf("navigation: smoothing must be in (0, 1], got %v", nav.Smoothing)
	}
	if !positive(nav.PointerGain) {
		return fmt.Errorf("navigation: pointer_gain must be finite and positive, got %v", nav.PointerGain)
	}
	if !positive(nav.ZoomStepDegrees) {
		return fmt.Errorf("navigation: zoom_step_degrees must be finite and positive, got %v", nav.ZoomStepDegrees)
	}
	if !(nav.MinFOVDegrees > 0 && nav.MaxFOVDegrees < 180 && nav.MinFOVDegrees <= nav.MaxFOVDegrees) {
		return fmt.Errorf("navigation: fov range [%v, %v] must lie inside (0, 180)",
			nav.MinFOVDegrees, nav.MaxFOVDegrees)
	}

	// The smallest table is enough to check the name.
	trig, err := panorama.ParseTrig(c.Render.Trig, 2)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if _, ok := trig.(*panorama.TableLookup); ok && c.Render.AccuracyFactor < 2 {
		return fmt.Errorf("render: accuracy_factor must be at least 2, got %d", c.Render.AccuracyFactor)
	}

	if c.Detect.MinWidth < 1 {
		return fmt.Errorf("detect: min_width must be positive, got %d", c.Detect.MinWidth)
	}
	return nil
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}
