package trace

import (
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestIntersectShapeWithBox(t *testing.T) {
	mins, maxs := mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}

	t.Run("ray hits the top face", func(t *testing.T) {
		r := IntersectShapeWithBox(NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -5}), mins, maxs)
		require.InDelta(t, 0.4, r.Fraction, 1e-5)
		require.Equal(t, mgl32.Vec3{0, 0, 1}, r.Plane.Normal)
		require.Equal(t, float32(1), r.Plane.Dist)
		require.InDelta(t, 1, r.EndPos.Z(), 1e-5)
		require.False(t, r.StartSolid)
		require.Equal(t, ContentsSolid, r.Contents)
	})

	t.Run("ray hits the bottom face", func(t *testing.T) {
		r := IntersectShapeWithBox(NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 5}), mins, maxs)
		require.InDelta(t, 0.4, r.Fraction, 1e-5)
		require.Equal(t, mgl32.Vec3{0, 0, -1}, r.Plane.Normal)
		require.Equal(t, float32(1), r.Plane.Dist)
	})

	t.Run("ray misses", func(t *testing.T) {
		r := IntersectShapeWithBox(NewRay(mgl32.Vec3{3, 0, 5}, mgl32.Vec3{3, 0, -5}), mins, maxs)
		require.False(t, r.DidHit())
		require.Equal(t, float32(1), r.Fraction)
	})

	t.Run("ray stops short", func(t *testing.T) {
		r := IntersectShapeWithBox(NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 2}), mins, maxs)
		require.False(t, r.DidHit())
	})

	t.Run("ray starting inside leaves", func(t *testing.T) {
		r := IntersectShapeWithBox(NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 4}), mins, maxs)
		require.True(t, r.StartSolid)
		require.False(t, r.AllSolid)
		require.Equal(t, float32(1), r.Fraction)
		require.InDelta(t, 0.25, r.FractionLeftSolid, 1e-5)
		require.InDelta(t, 1, r.StartPos.Z(), 1e-5)
	})

	t.Run("ray never leaving is all solid", func(t *testing.T) {
		r := IntersectShapeWithBox(NewRay(mgl32.Vec3{0, 0, -0.5}, mgl32.Vec3{0, 0, 0.5}), mins, maxs)
		require.True(t, r.StartSolid)
		require.True(t, r.AllSolid)
		require.Equal(t, float32(0), r.Fraction)
		require.Equal(t, float32(1), r.FractionLeftSolid)
	})

	t.Run("box sweep is grown by its extents", func(t *testing.T) {
		s := NewBox(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, -10}, mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, 1, 2})
		require.False(t, s.IsRay)
		r := IntersectShapeWithBox(s, mins, maxs)
		// The bottom of the box starts at z=10 and touches the top face at z=1.
		require.InDelta(t, 0.45, r.Fraction, 1e-5)
		require.InDelta(t, 1, r.EndPos.Z(), 1e-5)
		require.Equal(t, mgl32.Vec3{0, 0, 1}, r.Plane.Normal)
	})
}

func TestIntersectShapeWithOBB(t *testing.T) {
	rot := mgl32.Rotate3DZ(mgl32.DegToRad(90))
	mins, maxs := mgl32.Vec3{-4, -1, -1}, mgl32.Vec3{4, 1, 1}

	t.Run("rotated box is hit along its long side", func(t *testing.T) {
		// Rotated by 90 degrees the long axis points along y.
		r := IntersectShapeWithOBB(NewRay(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{0, -10, 0}), mgl32.Vec3{}, rot, mins, maxs)
		require.InDelta(t, 0.3, r.Fraction, 1e-5)
		require.InDelta(t, 1, r.Plane.Normal.Y(), 1e-5)
		require.InDelta(t, 4, r.Plane.Dist, 1e-4)
	})

	t.Run("fraction left solid is not computed", func(t *testing.T) {
		start := mgl32.Vec3{0, 0, 0}
		r := IntersectShapeWithOBB(NewRay(start, mgl32.Vec3{10, 0, 0}), mgl32.Vec3{}, rot, mins, maxs)
		require.True(t, r.StartSolid)
		require.Equal(t, float32(0), r.FractionLeftSolid)
		require.Equal(t, start, r.StartPos)
	})
}

func TestIsBoxIntersectingShape(t *testing.T) {
	bb := cube.Box(-1, -1, -1, 1, 1, 1)

	require.True(t, IsBoxIntersectingShape(bb, NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -5}), DistEpsilon))
	require.False(t, IsBoxIntersectingShape(bb, NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 2}), DistEpsilon))
	require.True(t, IsBoxIntersectingShape(bb, NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1.01}), DistEpsilon))
	require.False(t, IsBoxIntersectingShape(bb, NewRay(mgl32.Vec3{1.5, 0, 5}, mgl32.Vec3{1.5, 0, -5}), DistEpsilon))
}
