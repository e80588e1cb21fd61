package imageio

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Snapshotter writes rendered frames as PNG files.
type Snapshotter struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewSnapshotter creates a snapshot writer for outputDir. Files are named
// <prefix>_<timestamp>.png.
func NewSnapshotter(outputDir, prefix string) *Snapshotter {
	return &Snapshotter{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Save writes img under a timestamped name and returns the path.
func (s *Snapshotter) Save(img image.Image) (string, error) {
	filename := s.GenerateFilename()
	if err := SaveTo(filename, img); err != nil {
		return "", err
	}
	return filename, nil
}

// GenerateFilename generates a snapshot filename without saving.
func (s *Snapshotter) GenerateFilename() string {
	timestamp := s.now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.png", s.prefix, timestamp)
	if s.outputDir != "" {
		filename = filepath.Join(s.outputDir, filename)
	}
	return filename
}

// SaveTo writes img as PNG to path, creating parent directories.
func SaveTo(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}
