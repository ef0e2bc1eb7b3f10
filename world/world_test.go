package world

import (
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/trace"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// testWorld is a 256 unit cube split into eight leaves with a floor whose top is at
// z=-16 and a pool of water on top of it.
func testWorld(t *testing.T) *World {
	log, _ := test.NewNullLogger()
	w, err := New(cube.Box(-128, -128, -128, 128, 128, 128), 128, log)
	require.NoError(t, err)

	_, err = w.AddBrush(0, cube.Box(-128, -128, -128, 128, 128, -16), trace.ContentsSolid)
	require.NoError(t, err)
	_, err = w.AddBrush(0, cube.Box(32, 32, -16, 64, 64, -8), trace.ContentsWater)
	require.NoError(t, err)
	return w
}

func TestNew(t *testing.T) {
	_, err := New(cube.Box(-1, -1, -1, 1, 1, 1), 0, nil)
	require.Error(t, err)

	_, err = New(cube.Box(0, 0, 0, 10, 10, 0), 4, nil)
	require.Error(t, err)

	a, err := New(cube.Box(-1, -1, -1, 1, 1, 1), 1, nil)
	require.NoError(t, err)
	b, err := New(cube.Box(-1, -1, -1, 1, 1, 1), 1, nil)
	require.NoError(t, err)
	require.NotEqual(t, a.ID(), b.ID())
}

func TestBoxSweep(t *testing.T) {
	w := testWorld(t)
	ray := trace.NewRay(mgl32.Vec3{0, 0, 100}, mgl32.Vec3{0, 0, -100})

	r := w.BoxSweep(ray, 0, trace.MaskSolid)
	require.InDelta(t, 116.0/200.0, r.Fraction, 1e-5)
	require.Equal(t, mgl32.Vec3{0, 0, 1}, r.Plane.Normal)
	require.Equal(t, trace.ContentsSolid, r.Contents)

	r = w.BoxSweep(ray, 0, trace.MaskWater)
	require.False(t, r.DidHit())

	r = w.BoxSweep(trace.NewRay(mgl32.Vec3{48, 48, 100}, mgl32.Vec3{48, 48, -100}), 0, trace.MaskWater)
	require.InDelta(t, 108.0/200.0, r.Fraction, 1e-5)
	require.Equal(t, trace.ContentsWater, r.Contents)

	r = w.BoxSweep(trace.NewRay(mgl32.Vec3{0, 0, -20}, mgl32.Vec3{0, 0, -100}), 0, trace.MaskSolid)
	require.True(t, r.AllSolid)

	r = w.BoxSweep(ray, 7, trace.MaskSolid)
	require.False(t, r.DidHit(), "unknown head nodes contain nothing")
}

func TestBoxSweepLeaves(t *testing.T) {
	w := testWorld(t)
	ray := trace.NewRay(mgl32.Vec3{0, 0, 100}, mgl32.Vec3{0, 0, -100})

	upper := w.BoxLeaves(cube.Box(-128, -128, 1, 128, 128, 128), nil)
	require.Len(t, upper, 4)
	r := w.BoxSweepLeaves(ray, upper, trace.MaskSolid)
	require.False(t, r.DidHit(), "the floor is only in the lower leaves")

	all := w.BoxLeaves(ray.Bounds(), nil)
	r = w.BoxSweepLeaves(ray, all, trace.MaskSolid)
	require.InDelta(t, 116.0/200.0, r.Fraction, 1e-5)
}

func TestLeaves(t *testing.T) {
	w := testWorld(t)

	require.Equal(t, 0, w.LeafNumber(mgl32.Vec3{0, 0, 500}))
	require.Equal(t, -1, w.LeafCluster(0))
	require.Equal(t, -1, w.LeafCluster(100))

	l := w.LeafNumber(mgl32.Vec3{10, 10, 10})
	require.Equal(t, 8, l)
	require.Equal(t, l-1, w.LeafCluster(l))

	leaves := w.BoxLeaves(cube.Box(-200, -10, -10, 10, 10, 10), nil)
	require.Contains(t, leaves, 0, "boxes reaching outside include the outside leaf")
	require.Len(t, leaves, 9)

	w.SetSky(cube.Box(-128, -128, 64, 128, 128, 128))
	require.True(t, w.LeafIsSky(l))
	require.False(t, w.LeafIsSky(w.LeafNumber(mgl32.Vec3{10, 10, -10})))
	require.False(t, w.LeafIsSky(0))

	require.Nil(t, w.ClusterPVS(3))
	w.SetPVS(3, 1, 5)
	pvs := w.ClusterPVS(3)
	require.NotNil(t, pvs)
	require.Equal(t, uint64(1<<1|1<<5), pvs[0])
}

func TestPointContents(t *testing.T) {
	w := testWorld(t)

	require.Equal(t, trace.ContentsSolid, w.PointContents(mgl32.Vec3{0, 0, -50}))
	require.Equal(t, trace.ContentsEmpty, w.PointContents(mgl32.Vec3{0, 0, 50}))
	require.Equal(t, trace.ContentsWater, w.PointContents(mgl32.Vec3{48, 48, -12}))
	require.Equal(t, trace.ContentsSolid|trace.ContentsWater, w.PointContents(mgl32.Vec3{48, 48, -16}))
	require.Equal(t, trace.ContentsSolid, w.PointContents(mgl32.Vec3{0, 0, 1000}), "outside the world is solid")
}

func TestSubModels(t *testing.T) {
	w := testWorld(t)

	n := w.AddModel()
	require.Equal(t, 1, n)
	require.Equal(t, n, w.ModelHeadNode(n))
	require.Equal(t, -1, w.ModelHeadNode(9))

	_, err := w.AddBrush(9, cube.Box(-1, -1, -1, 1, 1, 1), trace.ContentsSolid)
	require.Error(t, err)

	index, err := w.AddBrush(n, cube.Box(-8, -8, -8, 8, 8, 8), trace.ContentsSolid|trace.ContentsMoveable)
	require.NoError(t, err)
	require.Equal(t, trace.ContentsSolid|trace.ContentsMoveable, w.BrushContents(index))
	require.Equal(t, trace.ContentsEmpty, w.BrushContents(100))

	ray := trace.NewRay(mgl32.Vec3{0, 0, 100}, mgl32.Vec3{0, 0, -100})
	origin := mgl32.Vec3{0, 0, 50}

	r := w.TransformedBoxSweep(ray, n, trace.MaskSolid, origin, mgl32.Ident3())
	require.InDelta(t, 42.0/200.0, r.Fraction, 1e-5)
	require.InDelta(t, 58, r.EndPos.Z(), 1e-4)
	require.Equal(t, mgl32.Vec3{0, 0, 1}, r.Plane.Normal)
	require.InDelta(t, 58, r.Plane.Dist, 1e-4)

	// Sub-model brushes are not part of the world leaves.
	r = w.BoxSweep(ray, 0, trace.ContentsMoveable)
	require.False(t, r.DidHit())

	require.Equal(t, trace.ContentsSolid|trace.ContentsMoveable, w.TransformedPointContents(origin, n, origin, mgl32.Ident3()))
	require.Equal(t, trace.ContentsEmpty, w.TransformedPointContents(mgl32.Vec3{0, 0, 70}, n, origin, mgl32.Ident3()))
	require.Equal(t, trace.ContentsSolid, w.TransformedPointContents(mgl32.Vec3{0, 0, -50}, 0, origin, mgl32.Ident3()))
}

func TestOcclusion(t *testing.T) {
	w, err := New(cube.Box(-128, -128, -128, 128, 128, 128), 64, nil)
	require.NoError(t, err)
	_, err = w.AddBrush(0, cube.Box(-4, -128, -128, 4, 128, 128), trace.ContentsSolid|trace.ContentsOpaque)
	require.NoError(t, err)

	left := cube.Box(-72, -8, -8, -56, 8, 8)
	right := cube.Box(56, -8, -8, 72, 8, 8)
	require.True(t, w.IsFullyOccluded(left, right))
	require.False(t, w.IsFullyOccluded(left, left.Translate(mgl32.Vec3{0, 32, 0})))

	bb, ok := w.OcclusionSweep(left, mgl32.Vec3{100, 0, 0})
	require.True(t, ok)
	require.InDelta(t, -20, bb.Min().X(), 1e-3)
	require.InDelta(t, -4, bb.Max().X(), 1e-3)

	_, ok = w.OcclusionSweep(left, mgl32.Vec3{0, 0, 50})
	require.False(t, ok)
}
