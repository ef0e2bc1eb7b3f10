package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Float32ApproxEq determines whether two floating point numbers are close enough to each other
// by a threshold of 1e-5.
func Float32ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// Vec3ApproxEq is Float32ApproxEq applied to every component of the vectors.
func Vec3ApproxEq(a, b mgl32.Vec3) bool {
	return Float32ApproxEq(a[0], b[0]) && Float32ApproxEq(a[1], b[1]) && Float32ApproxEq(a[2], b[2])
}

// AbsVec32 will return the given vector, but all the values of it are switched to their absolute values.
func AbsVec32(vec mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Abs(vec.X()), math32.Abs(vec.Y()), math32.Abs(vec.Z())}
}

// MinVec3 returns the component-wise minimum of the two vectors.
func MinVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Min(a[0], b[0]), math32.Min(a[1], b[1]), math32.Min(a[2], b[2])}
}

// MaxVec3 returns the component-wise maximum of the two vectors.
func MaxVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Max(a[0], b[0]), math32.Max(a[1], b[1]), math32.Max(a[2], b[2])}
}

// VecMA returns start + dir*scale.
func VecMA(start mgl32.Vec3, scale float32, dir mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		start[0] + dir[0]*scale,
		start[1] + dir[1]*scale,
		start[2] + dir[2]*scale,
	}
}

// Clamp01 clamps a value to the range [0, 1].
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Sign32 returns -1 if x < 0, 0 if x == 0, or 1 if x > 0.
func Sign32(x float32) float32 {
	if x < 0 {
		return -1
	} else if x == 0 {
		return 0
	}

	return 1
}
