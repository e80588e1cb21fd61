package panorama

import (
	gomath "math"

	"github.com/Faultbox/panoview/pkg/math"
)

const (
	invPi  = 1 / gomath.Pi
	inv2Pi = 1 / (2 * gomath.Pi)
)

// Rotate applies o to a camera-space vector: pitch about the lateral axis
// first, then yaw about the vertical axis. The two do not commute.
func Rotate(v math.Vec3, o Orientation) math.Vec3 {
	// pitch
	z := v.Z*o.CosPhi - v.Y*o.SinPhi
	y := v.Z*o.SinPhi + v.Y*o.CosPhi
	// yaw
	return math.Vec3{
		X: z*o.SinTheta + v.X*o.CosTheta,
		Y: y,
		Z: z*o.CosTheta - v.X*o.SinTheta,
	}
}

// SphericalMapper converts directions to equirectangular texture
// coordinates using a Trig strategy.
//
// Texture space: u runs 0..1 once around the vertical axis with u = 0.5
// looking down +Z and u = 0.75 looking down +X. v runs 0..1 from the -Y
// pole to the +Y pole. Camera space has +Y pointing down the screen, so
// v = 0 is straight up and maps to row 0 of the source.
type SphericalMapper struct {
	trig Trig
}

// NewSphericalMapper returns a mapper using trig. A nil trig means DirectTrig.
func NewSphericalMapper(trig Trig) *SphericalMapper {
	if trig == nil {
		trig = DirectTrig{}
	}
	return &SphericalMapper{trig: trig}
}

// Trig returns the strategy in use.
func (m *SphericalMapper) Trig() Trig {
	return m.trig
}

// ToUV maps a unit direction to texture coordinates in [0,1]x[0,1].
func (m *SphericalMapper) ToUV(vec math.Vec3) (u, v float64) {
	u = 0.5 + m.trig.Atan2(vec.X, vec.Z)*inv2Pi
	v = 0.5 + m.trig.Asin(clamp(vec.Y, -1, 1))*invPi
	return clamp01(u), clamp01(v)
}

// FromUV is the inverse of ToUV with exact trigonometry.
func FromUV(u, v float64) math.Vec3 {
	lon := (u - 0.5) * 2 * gomath.Pi
	lat := (v - 0.5) * gomath.Pi
	sinLon, cosLon := gomath.Sincos(lon)
	sinLat, cosLat := gomath.Sincos(lat)
	return math.Vec3{X: sinLon * cosLat, Y: sinLat, Z: cosLon * cosLat}
}

// ToTexel converts texture coordinates to a pixel of a w x h source.
// Out-of-range results are clamped, never wrapped.
func ToTexel(u, v float64, w, h int) (tx, ty int) {
	tx = clampInt(int(gomath.Floor(clamp01(u)*float64(w-1))), 0, w-1)
	ty = clampInt(int(gomath.Floor(clamp01(v)*float64(h-1))), 0, h-1)
	return tx, ty
}

func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// clamp01 also sends NaN to 0.
func clamp01(f float64) float64 {
	if !(f > 0) {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func clampInt(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}
