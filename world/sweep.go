package world

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/game"
	"github.com/oomph-ac/enginetrace/trace"
)

// clipToBrushes sweeps s against every listed brush matching mask and merges the
// hits. seen, if non-nil, skips brushes that were already tested.
func (w *World) clipToBrushes(s trace.Shape, brushes []int, mask trace.Contents, best *trace.Result, seen map[int]struct{}) {
	for _, index := range brushes {
		if seen != nil {
			if _, ok := seen[index]; ok {
				continue
			}
			seen[index] = struct{}{}
		}
		b := w.brushes[index]
		if !b.Contents.Has(mask) {
			continue
		}
		r := trace.IntersectShapeWithBox(s, b.Box.Min(), b.Box.Max())
		if !r.DidHit() {
			continue
		}
		r.Contents = b.Contents
		best.Merge(&r)
	}
}

// BoxSweep sweeps s through the brushes under headNode. Head node 0 is the world.
func (w *World) BoxSweep(s trace.Shape, headNode int, mask trace.Contents) trace.Result {
	w.RLock()
	defer w.RUnlock()

	best := trace.Cleared(s)
	if headNode < 0 || headNode >= len(w.models) {
		return best
	}
	if headNode != 0 {
		w.clipToBrushes(s, w.models[headNode].brushes, mask, &best, nil)
		return best
	}
	w.sweepLeaves(s, w.boxLeaves(s.Bounds(), nil), mask, &best)
	return best
}

// BoxSweepLeaves sweeps s through the world brushes of the given leaves only.
func (w *World) BoxSweepLeaves(s trace.Shape, leaves []int, mask trace.Contents) trace.Result {
	w.RLock()
	defer w.RUnlock()

	best := trace.Cleared(s)
	w.sweepLeaves(s, leaves, mask, &best)
	return best
}

func (w *World) sweepLeaves(s trace.Shape, leaves []int, mask trace.Contents, best *trace.Result) {
	seen := make(map[int]struct{})
	for _, l := range leaves {
		if l <= 0 || l >= len(w.leaves) {
			continue
		}
		w.clipToBrushes(s, w.leaves[l].brushes, mask, best, seen)
		if best.AllSolid {
			return
		}
	}
}

// TransformedBoxSweep sweeps s through the brushes under headNode as if the sub-model
// were placed at origin with the given rotation.
func (w *World) TransformedBoxSweep(s trace.Shape, headNode int, mask trace.Contents, origin mgl32.Vec3, angles mgl32.Mat3) trace.Result {
	inv := angles.Transpose()
	local := s
	local.Start = inv.Mul3x1(s.Start.Sub(origin))
	local.StartOffset = mgl32.Vec3{}
	local.Extents = game.RotatedExtents(inv, s.Extents)
	local.WorldAxisTransform = nil
	local = local.WithDelta(inv.Mul3x1(s.Delta))

	r := w.BoxSweep(local, headNode, mask)

	start := s.Origin()
	r.EndPos = game.VecMA(start, r.Fraction, s.Delta)
	r.StartPos = start
	if r.StartSolid && r.FractionLeftSolid < 1 {
		r.StartPos = game.VecMA(start, r.FractionLeftSolid, s.Delta)
	}
	if r.DidHit() {
		r.Plane.Normal = angles.Mul3x1(r.Plane.Normal)
		r.Plane.Dist += r.Plane.Normal.Dot(origin)
	}
	return r
}

// PointContents returns the combined contents of the world brushes at p. Points
// outside the world are solid.
func (w *World) PointContents(p mgl32.Vec3) trace.Contents {
	w.RLock()
	defer w.RUnlock()

	l := w.leafNumber(p)
	if l == 0 {
		return trace.ContentsSolid
	}
	var contents trace.Contents
	for _, index := range w.leaves[l].brushes {
		if b := w.brushes[index]; game.BoxContainsPoint(b.Box, p) {
			contents |= b.Contents
		}
	}
	return contents
}

// TransformedPointContents returns the combined contents of the brushes under
// headNode at p, with the sub-model placed at origin with the given rotation.
func (w *World) TransformedPointContents(p mgl32.Vec3, headNode int, origin mgl32.Vec3, angles mgl32.Mat3) trace.Contents {
	if headNode == 0 {
		return w.PointContents(p)
	}

	w.RLock()
	defer w.RUnlock()

	if headNode < 0 || headNode >= len(w.models) {
		return trace.ContentsEmpty
	}
	local := angles.Transpose().Mul3x1(p.Sub(origin))
	var contents trace.Contents
	for _, index := range w.models[headNode].brushes {
		if b := w.brushes[index]; game.BoxContainsPoint(b.Box, local) {
			contents |= b.Contents
		}
	}
	return contents
}
