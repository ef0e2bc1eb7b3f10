package occlusion

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/game"
)

// World is the part of the static world occlusion tests run against.
type World interface {
	// BoxLeaves appends every leaf overlapping bb to dst.
	BoxLeaves(bb cube.BBox, dst []int) []int
	// LeafIsSky reports whether the leaf can see the sky.
	LeafIsSky(leaf int) bool
	// IsFullyOccluded reports whether the world blocks every line of sight between
	// the two boxes.
	IsFullyOccluded(a, b cube.BBox) bool
	// OcclusionSweep sweeps bb along delta and returns where it lands, if it does.
	OcclusionSweep(bb cube.BBox, delta mgl32.Vec3) (cube.BBox, bool)
}

// IsCastingShadow reports whether any leaf touched by bb can see the sky.
func (c *Cache) IsCastingShadow(bb cube.BBox) bool {
	leaves := c.world.BoxLeaves(bb, nil)
	c.stats.VisLeavesCollected.Add(uint64(len(leaves)))
	c.stats.VisShadowCullCalls.Add(1)

	for i, l := range leaves {
		if c.world.LeafIsSky(l) {
			c.stats.VisLeavesChecked.Add(uint64(i + 1))
			return true
		}
	}
	c.stats.VisShadowCullsSucceeded.Add(1)
	c.stats.VisLeavesChecked.Add(uint64(len(leaves)))
	return false
}

// IsFullyOccludedWithShadow reports whether a, grown to cover movement, and the
// shadow it casts are hidden from b. extraMargin is added to both margins.
func (c *Cache) IsFullyOccludedWithShadow(a, b cube.BBox, shadow mgl32.Vec3, extraMargin float32) bool {
	horz := c.conf.Margins + extraMargin
	jump := c.conf.JumpMargin + extraMargin

	if shadow != (mgl32.Vec3{}) {
		maxDist := c.conf.ShadowMaxDistance
		if game.HullGap(a, b).LenSqr() < maxDist*maxDist && c.IsCastingShadow(a) {
			landing, ok := c.world.OcclusionSweep(a, shadow)
			if !ok {
				// The shadow goes too far to be traced.
				return false
			}
			grown := game.BoxFromPoints(a.Min().Sub(mgl32.Vec3{horz, horz, 0}), a.Max().Add(mgl32.Vec3{horz, horz, jump}))
			return c.world.IsFullyOccluded(game.BoxUnion(grown, landing), b)
		}
	}

	center := game.BoxCenter(a).Add(mgl32.Vec3{0, 0, jump * 0.5})
	extents := game.BoxExtents(a).Add(mgl32.Vec3{horz, horz, jump * 0.5})
	return c.world.IsFullyOccluded(game.BoxFromCenter(center, extents), b)
}
