// Package panorama renders perspective views from equirectangular panoramas.
//
// The engine is split into a precomputed ray field (one camera-space unit
// vector per destination pixel), a mutable viewing orientation, a spherical
// mapper from directions to texture coordinates, and a projector that
// combines them into a destination raster. None of it performs I/O.
package panorama

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidConfiguration is returned for unusable viewport settings.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNonFinite is returned when navigation input contains NaN or Inf.
	ErrNonFinite = errors.New("non-finite input")
	// ErrOutOfBounds is returned for pointer positions outside the view.
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrFrameSize is returned when a destination does not match the ray field.
	ErrFrameSize = errors.New("frame size mismatch")
)

// ViewportConfig describes the destination raster and its field of view.
type ViewportConfig struct {
	Width  int
	Height int
	FOV    float64 // horizontal, radians
}

// Validate checks the configuration. Values are never clamped.
func (c ViewportConfig) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidConfiguration, c.Width)
	}
	if c.Height <= 0 {
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidConfiguration, c.Height)
	}
	// Written so NaN fails too.
	if !(c.FOV > 0 && c.FOV < math.Pi) {
		return fmt.Errorf("%w: fov must be in (0, pi) radians, got %v", ErrInvalidConfiguration, c.FOV)
	}
	return nil
}

// CameraPlaneDistance returns the distance from the eye to the image plane
// in pixel units, (width/2) / tan(fov/2).
func (c ViewportConfig) CameraPlaneDistance() float64 {
	return (float64(c.Width) / 2) / math.Tan(c.FOV/2)
}

// Degrees converts degrees to radians.
func Degrees(deg float64) float64 {
	return deg * math.Pi / 180
}
