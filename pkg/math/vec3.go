// Package math provides the vector types shared by the projection engine.
package math

import "math"

// Vec3 is a 3D vector in double precision.
type Vec3 struct {
	X, Y, Z float64
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Length returns the magnitude.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns a unit vector. The zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Azimuth returns the angle around the vertical axis, atan2(x, z).
// Zero looks down +Z, positive turns toward +X.
func (v Vec3) Azimuth() float64 {
	return math.Atan2(v.X, v.Z)
}

// Elevation returns the angle above the XZ plane, atan2(y, |xz|).
func (v Vec3) Elevation() float64 {
	return math.Atan2(v.Y, math.Sqrt(v.X*v.X+v.Z*v.Z))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
