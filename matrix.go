package nodemat

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Matrix is a column-major 4x4 transform backed by mgl64.
type Matrix mgl64.Mat4

func Identity() Matrix {
	return Matrix(mgl64.Ident4())
}

func Translate(v Vector) Matrix {
	return Matrix(mgl64.Translate3D(v.X, v.Y, v.Z))
}

func Scale(v Vector) Matrix {
	return Matrix(mgl64.Scale3D(v.X, v.Y, v.Z))
}

// Rotate returns a rotation of angle radians about axis.
func Rotate(axis Vector, angle float64) Matrix {
	return Matrix(mgl64.HomogRotate3D(angle, axis.Normalize().Vec3()))
}

// TRS composes translation, rotation quaternion and scale as T*R*S.
func TRS(t Vector, r mgl64.Quat, s Vector) Matrix {
	return Translate(t).Mul(Matrix(r.Normalize().Mat4())).Mul(Scale(s))
}

// LookAt returns a view matrix for a camera at eye looking at center.
func LookAt(eye, center, up Vector) Matrix {
	return Matrix(mgl64.LookAtV(eye.Vec3(), center.Vec3(), up.Vec3()))
}

// Perspective returns a projection matrix, fovy in degrees.
func Perspective(fovy, aspect, near, far float64) Matrix {
	return Matrix(mgl64.Perspective(mgl64.DegToRad(fovy), aspect, near, far))
}

// Screen maps normalized device coordinates to pixel space, y down.
func Screen(w, h int) Matrix {
	w2 := float64(w) / 2
	h2 := float64(h) / 2
	m := mgl64.Translate3D(w2, h2, 0.5).Mul4(mgl64.Scale3D(w2, -h2, 0.5))
	return Matrix(m)
}

func (a Matrix) Mul(b Matrix) Matrix {
	return Matrix(mgl64.Mat4(a).Mul4(mgl64.Mat4(b)))
}

func (a Matrix) MulPosition(b Vector) Vector {
	return VectorFromVec3(mgl64.Mat4(a).Mul4x1(b.Vec3().Vec4(1)).Vec3())
}

func (a Matrix) MulPositionW(b Vector) VectorW {
	return VectorWFromVec4(mgl64.Mat4(a).Mul4x1(b.Vec3().Vec4(1)))
}

func (a Matrix) MulDirection(b Vector) Vector {
	return VectorFromVec3(mgl64.Mat4(a).Mul4x1(b.Vec3().Vec4(0)).Vec3()).Normalize()
}

func (a Matrix) Inverse() Matrix {
	return Matrix(mgl64.Mat4(a).Inv())
}

func (a Matrix) Transpose() Matrix {
	return Matrix(mgl64.Mat4(a).Transpose())
}
