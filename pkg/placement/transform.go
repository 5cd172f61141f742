package placement

import (
	"math"

	"github.com/chewxy/math32"
)

// Vec3 is a point or direction in model space (x, y, z), +Y up.
type Vec3 [3]float32

// Quat is a rotation quaternion stored as (x, y, z, w).
type Quat [4]float32

// Transform places one module instance.
type Transform struct {
	// Angle is the angular position θ of the module on its ring, in radians.
	Angle float32 `json:"angle"`
	// Yaw is the rotation about +Y applied to the template, always −Angle.
	Yaw         float32 `json:"yaw"`
	Translation Vec3    `json:"translation"`
	Rotation    Quat    `json:"rotation"`
	Scale       float32 `json:"scale"`
}

// NewTransform builds the transform of a module at angle theta (radians),
// height y, uniform scale and unscaled radial displacement.
func NewTransform(theta, y, scale, radial float64) Transform {
	angle := float32(theta)
	yaw := -angle
	sin, cos := math32.Sincos(angle)
	d := float32(radial)
	hs, hc := math32.Sincos(yaw / 2)
	return Transform{
		Angle:       angle,
		Yaw:         yaw,
		Translation: Vec3{d * cos, float32(y), d * sin},
		Rotation:    Quat{0, hs, 0, hc},
		Scale:       float32(scale),
	}
}

// Outward returns the world direction the module faces, (cosθ, 0, sinθ).
func (t Transform) Outward() Vec3 {
	sin, cos := math32.Sincos(t.Angle)
	return Vec3{cos, 0, sin}
}

// Apply maps a template point into world space: scale, then yaw, then
// translate.
func (t Transform) Apply(p Vec3) Vec3 {
	sin, cos := math32.Sincos(t.Yaw)
	x, y, z := p[0]*t.Scale, p[1]*t.Scale, p[2]*t.Scale
	return Vec3{
		cos*x + sin*z + t.Translation[0],
		y + t.Translation[1],
		-sin*x + cos*z + t.Translation[2],
	}
}

// Matrix returns the column-major 4x4 matrix of the transform.
func (t Transform) Matrix() [16]float32 {
	sin, cos := math32.Sincos(t.Yaw)
	s := t.Scale
	return [16]float32{
		cos * s, 0, -sin * s, 0,
		0, s, 0, 0,
		sin * s, 0, cos * s, 0,
		t.Translation[0], t.Translation[1], t.Translation[2], 1,
	}
}

// Radial returns the horizontal distance of the instance pivot from the
// ring axis.
func (t Transform) Radial() float32 {
	return math32.Hypot(t.Translation[0], t.Translation[2])
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
