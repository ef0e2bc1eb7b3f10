package game

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// BoxFromCenter returns a bounding box from a center point and its half extents.
func BoxFromCenter(center, extents mgl32.Vec3) cube.BBox {
	min, max := center.Sub(extents), center.Add(extents)
	return cube.Box(min[0], min[1], min[2], max[0], max[1], max[2])
}

// BoxFromPoints returns the bounding box spanning the two corners.
func BoxFromPoints(a, b mgl32.Vec3) cube.BBox {
	return cube.Box(a[0], a[1], a[2], b[0], b[1], b[2])
}

// BoxCenter returns the center of the bounding box.
func BoxCenter(bb cube.BBox) mgl32.Vec3 {
	return bb.Min().Add(bb.Max()).Mul(0.5)
}

// BoxExtents returns the half extents of the bounding box.
func BoxExtents(bb cube.BBox) mgl32.Vec3 {
	return bb.Max().Sub(bb.Min()).Mul(0.5)
}

// BoxWithin returns true if inner lies inside outer. Touching faces count as inside.
func BoxWithin(inner, outer cube.BBox) bool {
	imin, imax := inner.Min(), inner.Max()
	omin, omax := outer.Min(), outer.Max()
	for i := 0; i < 3; i++ {
		if imin[i] < omin[i] || imax[i] > omax[i] {
			return false
		}
	}
	return true
}

// BoxesOverlap returns true if the two boxes overlap or touch.
func BoxesOverlap(a, b cube.BBox) bool {
	amin, amax := a.Min(), a.Max()
	bmin, bmax := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		if amin[i] > bmax[i] || amax[i] < bmin[i] {
			return false
		}
	}
	return true
}

// BoxContainsPoint returns true if p lies inside the box or on its surface.
func BoxContainsPoint(bb cube.BBox, p mgl32.Vec3) bool {
	min, max := bb.Min(), bb.Max()
	return p[0] >= min[0] && p[0] <= max[0] &&
		p[1] >= min[1] && p[1] <= max[1] &&
		p[2] >= min[2] && p[2] <= max[2]
}

// BoxUnion returns the smallest box containing both boxes.
func BoxUnion(a, b cube.BBox) cube.BBox {
	return BoxFromPoints(MinVec3(a.Min(), b.Min()), MaxVec3(a.Max(), b.Max()))
}

// Protrusion returns, per axis, how far box a sticks out of box b on either side.
// Negative components mean a lies inside b on that axis.
func Protrusion(a, b cube.BBox) mgl32.Vec3 {
	return MaxVec3(b.Min().Sub(a.Min()), a.Max().Sub(b.Max()))
}

// HullGap returns the per-axis distance separating the two boxes, with zero on
// axes where they overlap.
func HullGap(a, b cube.BBox) mgl32.Vec3 {
	gap := AbsVec32(BoxCenter(a).Sub(BoxCenter(b))).Sub(BoxExtents(a).Add(BoxExtents(b)))
	return MaxVec3(gap, mgl32.Vec3{})
}

// BoxCorners returns the eight corners of the bounding box.
func BoxCorners(bb cube.BBox) [8]mgl32.Vec3 {
	min, max := bb.Min(), bb.Max()
	return [8]mgl32.Vec3{
		{min[0], min[1], min[2]},
		{max[0], min[1], min[2]},
		{min[0], max[1], min[2]},
		{max[0], max[1], min[2]},
		{min[0], min[1], max[2]},
		{max[0], min[1], max[2]},
		{min[0], max[1], max[2]},
		{max[0], max[1], max[2]},
	}
}
