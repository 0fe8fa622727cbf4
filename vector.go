package nodemat

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector is a point or direction in 3D space.
type Vector struct {
	X, Y, Z float64
}

// V is shorthand for Vector{x, y, z}.
func V(x, y, z float64) Vector {
	return Vector{x, y, z}
}

func VectorFromVec3(v mgl64.Vec3) Vector {
	return Vector{v[0], v[1], v[2]}
}

func (a Vector) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{a.X, a.Y, a.Z}
}

func (a Vector) Length() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

func (a Vector) Normalize() Vector {
	d := a.Length()
	if d == 0 {
		return a
	}
	return Vector{a.X / d, a.Y / d, a.Z / d}
}

func (a Vector) Negate() Vector {
	return Vector{-a.X, -a.Y, -a.Z}
}

func (a Vector) Dot(b Vector) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func (a Vector) Cross(b Vector) Vector {
	x := a.Y*b.Z - a.Z*b.Y
	y := a.Z*b.X - a.X*b.Z
	z := a.X*b.Y - a.Y*b.X
	return Vector{x, y, z}
}

func (a Vector) Add(b Vector) Vector {
	return Vector{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func (a Vector) Sub(b Vector) Vector {
	return Vector{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func (a Vector) MulScalar(b float64) Vector {
	return Vector{a.X * b, a.Y * b, a.Z * b}
}

func (a Vector) DivScalar(b float64) Vector {
	return Vector{a.X / b, a.Y / b, a.Z / b}
}

func (a Vector) Min(b Vector) Vector {
	return Vector{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

func (a Vector) Max(b Vector) Vector {
	return Vector{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}

func (a Vector) Floor() Vector {
	return Vector{math.Floor(a.X), math.Floor(a.Y), math.Floor(a.Z)}
}

func (a Vector) Ceil() Vector {
	return Vector{math.Ceil(a.X), math.Ceil(a.Y), math.Ceil(a.Z)}
}

func (a Vector) Lerp(b Vector, t float64) Vector {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Perpendicular returns the 2D perpendicular of a in the XY plane, normalized.
func (a Vector) Perpendicular() Vector {
	return Vector{-a.Y, a.X, 0}.Normalize()
}

func (a Vector) Reflect(n Vector) Vector {
	return a.Sub(n.MulScalar(2 * n.Dot(a)))
}

// VectorW is a homogeneous clip-space position.
type VectorW struct {
	X, Y, Z, W float64
}

func VectorWFromVec4(v mgl64.Vec4) VectorW {
	return VectorW{v[0], v[1], v[2], v[3]}
}

func (a VectorW) Vec4() mgl64.Vec4 {
	return mgl64.Vec4{a.X, a.Y, a.Z, a.W}
}

func (a VectorW) Vector() Vector {
	return Vector{a.X, a.Y, a.Z}
}

// Outside reports whether the point lies outside the clip volume.
func (a VectorW) Outside() bool {
	x, y, z, w := a.X, a.Y, a.Z, a.W
	return x < -w || x > w || y < -w || y > w || z < -w || z > w
}

func (a VectorW) Dot(b VectorW) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
}

func (a VectorW) Add(b VectorW) VectorW {
	return VectorW{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W}
}

func (a VectorW) Sub(b VectorW) VectorW {
	return VectorW{a.X - b.X, a.Y - b.Y, a.Z - b.Z, a.W - b.W}
}

func (a VectorW) MulScalar(b float64) VectorW {
	return VectorW{a.X * b, a.Y * b, a.Z * b, a.W * b}
}

func (a VectorW) DivScalar(b float64) VectorW {
	return VectorW{a.X / b, a.Y / b, a.Z / b, a.W / b}
}
