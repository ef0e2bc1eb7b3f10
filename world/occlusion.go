package world

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/game"
	"github.com/oomph-ac/enginetrace/trace"
)

// samplePoints returns the center and corners of a box.
func samplePoints(bb cube.BBox) [9]mgl32.Vec3 {
	var points [9]mgl32.Vec3
	points[0] = game.BoxCenter(bb)
	corners := game.BoxCorners(bb)
	copy(points[1:], corners[:])
	return points
}

// IsFullyOccluded reports whether opaque world brushes block every line of sight
// between the center and corners of a and the center and corners of b.
func (w *World) IsFullyOccluded(a, b cube.BBox) bool {
	from, to := samplePoints(a), samplePoints(b)
	for _, start := range from {
		for _, end := range to {
			r := w.BoxSweep(trace.NewRay(start, end), 0, trace.MaskOpaque)
			if !r.StartSolid && r.Fraction >= 1 {
				return false
			}
		}
	}
	return true
}

// OcclusionSweep sweeps bb along delta through the opaque world brushes. If it lands
// on something, the box at the point of impact is returned together with true.
func (w *World) OcclusionSweep(bb cube.BBox, delta mgl32.Vec3) (cube.BBox, bool) {
	center, extents := game.BoxCenter(bb), game.BoxExtents(bb)
	r := w.BoxSweep(trace.NewBox(center, center.Add(delta), extents.Mul(-1), extents), 0, trace.MaskOpaque)
	if r.Fraction >= 1 && !r.AllSolid {
		return cube.BBox{}, false
	}
	return game.BoxFromCenter(r.EndPos, extents), true
}
