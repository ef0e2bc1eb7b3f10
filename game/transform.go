package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Rotate rotates v by the rotation part of the rigid transform m.
func Rotate(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	return m.Mat3().Mul3x1(v)
}

// IRotate rotates v by the inverse of the rotation part of m. The rotation is
// assumed to be orthonormal, so the transpose is used.
func IRotate(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	return m.Mat3().Transpose().Mul3x1(v)
}

// Transform applies the rigid transform m to the point p.
func Transform(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return Rotate(m, p).Add(m.Col(3).Vec3())
}

// ITransform applies the inverse of the rigid transform m to the point p.
func ITransform(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return IRotate(m, p.Sub(m.Col(3).Vec3()))
}

// RigidTransform builds a rigid transform from a rotation and a translation.
func RigidTransform(rot mgl32.Mat3, origin mgl32.Vec3) mgl32.Mat4 {
	m := rot.Mat4()
	m.SetCol(3, origin.Vec4(1))
	return m
}

// RotatedExtents returns the half extents of the axis-aligned box that encloses
// a box of the given half extents after rotation by m.
func RotatedExtents(m mgl32.Mat3, ext mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	for row := 0; row < 3; row++ {
		out[row] = math32.Abs(m.At(row, 0))*ext[0] + math32.Abs(m.At(row, 1))*ext[1] + math32.Abs(m.At(row, 2))*ext[2]
	}
	return out
}
