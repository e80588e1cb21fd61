package panorama

import (
	"fmt"
	gomath "math"
	"sync"

	"github.com/Faultbox/panoview/pkg/math"
)

// DefaultSmoothing is the follow factor used for pointer-following navigation.
const DefaultSmoothing = 0.25

// Orientation is a yaw/pitch pair with its sines and cosines cached. It is
// a value: a render pass holds one for its whole duration.
type Orientation struct {
	Theta    float64 // yaw, around the vertical axis
	Phi      float64 // pitch, around the lateral axis
	SinTheta float64
	CosTheta float64
	SinPhi   float64
	CosPhi   float64
}

// NewOrientation returns the orientation for yaw theta and pitch phi.
func NewOrientation(theta, phi float64) Orientation {
	sinTheta, cosTheta := gomath.Sincos(theta)
	sinPhi, cosPhi := gomath.Sincos(phi)
	return Orientation{
		Theta:    theta,
		Phi:      phi,
		SinTheta: sinTheta,
		CosTheta: cosTheta,
		SinPhi:   sinPhi,
		CosPhi:   cosPhi,
	}
}

// Forward returns the direction at the center of the view.
func (o Orientation) Forward() math.Vec3 {
	return Rotate(math.Vec3{Z: 1}, o)
}

// OrientationState is the current viewing orientation. All mutations go
// through its methods; renders read it with Snapshot.
type OrientationState struct {
	mu  sync.RWMutex
	cur Orientation
}

// NewOrientationState returns a state looking down +Z.
func NewOrientationState() *OrientationState {
	return &OrientationState{cur: NewOrientation(0, 0)}
}

// Snapshot returns the current orientation as one consistent value.
func (s *OrientationState) Snapshot() Orientation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// SetOrientation replaces the orientation.
func (s *OrientationState) SetOrientation(theta, phi float64) error {
	if !finite(theta, phi) {
		return fmt.Errorf("%w: orientation (%v, %v)", ErrNonFinite, theta, phi)
	}
	s.mu.Lock()
	s.cur = NewOrientation(theta, phi)
	s.mu.Unlock()
	return nil
}

// SetFromVector turns the view to look along v. The zero vector resets the
// orientation to (0, 0).
func (s *OrientationState) SetFromVector(v math.Vec3) error {
	if !v.IsFinite() {
		return fmt.Errorf("%w: vector %v", ErrNonFinite, v)
	}
	return s.SetOrientation(v.Azimuth(), v.Elevation())
}

// TurnToward turns the view to look along the camera-space ray, taken
// relative to the current orientation. Reading the current orientation and
// replacing it happen under one lock.
func (s *OrientationState) TurnToward(ray math.Vec3) error {
	if !ray.IsFinite() {
		return fmt.Errorf("%w: ray %v", ErrNonFinite, ray)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := Rotate(ray, s.cur)
	theta, phi := v.Azimuth(), v.Elevation()
	if !finite(theta, phi) {
		return fmt.Errorf("%w: ray %v", ErrNonFinite, ray)
	}
	s.cur = NewOrientation(theta, phi)
	return nil
}

// FollowTarget moves the orientation a fraction alpha of the way toward the
// target. Repeated calls converge exponentially.
func (s *OrientationState) FollowTarget(targetTheta, targetPhi, alpha float64) error {
	if !finite(targetTheta, targetPhi, alpha) {
		return fmt.Errorf("%w: target (%v, %v) alpha %v", ErrNonFinite, targetTheta, targetPhi, alpha)
	}
	if alpha <= 0 || alpha > 1 {
		return fmt.Errorf("%w: smoothing must be in (0, 1], got %v", ErrInvalidConfiguration, alpha)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	theta := s.cur.Theta + (targetTheta-s.cur.Theta)*alpha
	phi := s.cur.Phi + (targetPhi-s.cur.Phi)*alpha
	if !finite(theta, phi) {
		return fmt.Errorf("%w: orientation overflow (%v, %v)", ErrNonFinite, theta, phi)
	}
	s.cur = NewOrientation(theta, phi)
	return nil
}

// ApplyDelta rotates the view as if the sphere were grabbed along rayFrom
// and dragged to rayTo. Both rays are unrotated ray field vectors.
func (s *OrientationState) ApplyDelta(rayFrom, rayTo math.Vec3) error {
	if !rayFrom.IsFinite() || !rayTo.IsFinite() {
		return fmt.Errorf("%w: delta %v -> %v", ErrNonFinite, rayFrom, rayTo)
	}
	dTheta := rayFrom.Azimuth() - rayTo.Azimuth()
	dPhi := rayFrom.Elevation() - rayTo.Elevation()

	s.mu.Lock()
	defer s.mu.Unlock()
	theta := s.cur.Theta + dTheta
	phi := s.cur.Phi + dPhi
	if !finite(theta, phi) {
		return fmt.Errorf("%w: orientation overflow (%v, %v)", ErrNonFinite, theta, phi)
	}
	s.cur = NewOrientation(theta, phi)
	return nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if gomath.IsNaN(v) || gomath.IsInf(v, 0) {
			return false
		}
	}
	return true
}
