package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ImageConfigName is the per-panorama config file looked up next to the
// image being opened.
const ImageConfigName = "panoview.yaml"

// Load loads configuration with priority: defaults < file < flags. The
// image named by the first positional argument, if any, may carry its own
// config file.
func Load() (*Config, error) {
	var imagePath string
	if args := Args(); len(args) > 0 {
		imagePath = args[0]
	}
	return LoadFor(imagePath)
}

// LoadFor is Load for a specific image path, which may be empty.
func LoadFor(imagePath string) (*Config, error) {
	cfg := Default()

	// An explicit --config wins over any discovered file.
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile(imagePath)
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config among: a
// panoview.yaml beside imagePath, ./config.yaml and the user config dir.
func findConfigFile(imagePath string) string {
	var candidates []string
	if imagePath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(imagePath), ImageConfigName))
	}
	candidates = append(candidates,
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	)

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "panoview")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "panoview")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "panoview")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "panoview")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
