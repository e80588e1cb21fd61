package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWidth      = flag.Int("width", 0, "Viewport width")
	flagHeight     = flag.Int("height", 0, "Viewport height")
	flagFOV        = flag.Float64("fov", 0, "Horizontal field of view in degrees")
	flagMode       = flag.String("mode", "", "Navigation mode: smoothed, drag, absolute")
	flagTrig       = flag.String("trig", "", "Trig strategy: direct, table")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Viewport.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewport.Height = *flagHeight
	}
	if *flagFOV > 0 {
		cfg.Viewport.FOVDegrees = *flagFOV
	}
	if *flagMode != "" {
		cfg.Navigation.Mode = *flagMode
	}
	if *flagTrig != "" {
		cfg.Render.Trig = *flagTrig
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
}
