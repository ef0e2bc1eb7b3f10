package trace

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/game"
)

// DistEpsilon is the tolerance used when checking whether a sweep can reach a box at all.
const DistEpsilon float32 = 1.0 / 32.0

// slab clips the sweep of s against the box [mins-extents, maxs+extents]. It returns the
// parameter at which the sweep enters and leaves the box, and the axis and direction of
// the face it enters through. ok is false if the sweep line never overlaps the box.
func slab(s Shape, mins, maxs mgl32.Vec3) (tEnter, tExit float32, axis int, sign float32, ok bool) {
	tEnter, tExit, axis = math32.Inf(-1), math32.Inf(1), -1
	for i := 0; i < 3; i++ {
		lo, hi := mins[i]-s.Extents[i], maxs[i]+s.Extents[i]
		if s.Delta[i] == 0 {
			if s.Start[i] < lo || s.Start[i] > hi {
				return 0, 0, -1, 0, false
			}
			continue
		}

		inv := 1 / s.Delta[i]
		t1, t2 := (lo-s.Start[i])*inv, (hi-s.Start[i])*inv
		faceSign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			faceSign = 1
		}
		if t1 > tEnter {
			tEnter, axis, sign = t1, i, faceSign
		}
		if t2 < tExit {
			tExit = t2
		}
	}
	return tEnter, tExit, axis, sign, tEnter <= tExit
}

// IntersectShapeWithBox sweeps the shape against the axis-aligned box [mins, maxs].
//
// A shape that starts inside the box and leaves it before the end of the sweep is
// reported start solid with Fraction 1, and FractionLeftSolid set to where it left.
// A shape that never leaves is all solid.
func IntersectShapeWithBox(s Shape, mins, maxs mgl32.Vec3) Result {
	r := Cleared(s)
	tEnter, tExit, axis, sign, ok := slab(s, mins, maxs)
	if !ok || tExit < 0 || tEnter > 1 {
		return r
	}

	origin := s.Origin()
	if tEnter >= 0 && axis >= 0 {
		r.Fraction = tEnter
		r.EndPos = game.VecMA(origin, tEnter, s.Delta)
		r.Plane.Normal[axis] = sign
		if sign > 0 {
			r.Plane.Dist = maxs[axis]
		} else {
			r.Plane.Dist = -mins[axis]
		}
		r.Contents = ContentsSolid
		return r
	}

	if tExit == 0 {
		// Leaving the box exactly at the start.
		return r
	}
	r.StartSolid = true
	r.Contents = ContentsSolid
	if tExit >= 1 {
		r.AllSolid = true
		r.Fraction = 0
		r.FractionLeftSolid = 1
		r.EndPos = origin
		return r
	}
	r.FractionLeftSolid = tExit
	r.StartPos = game.VecMA(origin, tExit, s.Delta)
	return r
}

// IntersectShapeWithOBB sweeps the shape against a box with local bounds [mins, maxs]
// placed at origin with the given rotation. FractionLeftSolid is not computed by this
// test: it is always zero and StartPos is always the start of the shape.
func IntersectShapeWithOBB(s Shape, origin mgl32.Vec3, rot mgl32.Mat3, mins, maxs mgl32.Vec3) Result {
	inv := rot.Transpose()
	local := s
	local.Start = inv.Mul3x1(s.Start.Sub(origin))
	local.StartOffset = mgl32.Vec3{}
	local.Extents = game.RotatedExtents(inv, s.Extents)
	local.WorldAxisTransform = nil
	local = local.WithDelta(inv.Mul3x1(s.Delta))

	r := IntersectShapeWithBox(local, mins, maxs)
	start := s.Origin()
	r.StartPos = start
	r.FractionLeftSolid = 0
	r.EndPos = game.VecMA(start, r.Fraction, s.Delta)
	if r.DidHit() {
		r.Plane.Normal = rot.Mul3x1(r.Plane.Normal)
		r.Plane.Dist = r.Plane.Normal.Dot(r.EndPos)
	}
	return r
}

// IsBoxIntersectingShape reports whether the sweep of s comes within tolerance of bb.
func IsBoxIntersectingShape(bb cube.BBox, s Shape, tolerance float32) bool {
	pad := mgl32.Vec3{tolerance, tolerance, tolerance}
	tEnter, tExit, _, _, ok := slab(s, bb.Min().Sub(pad), bb.Max().Add(pad))
	return ok && tExit >= 0 && tEnter <= 1
}
