package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/collide"
	"github.com/oomph-ac/enginetrace/trace"
)

// PointContents returns the contents at p that match mask together with the owner of
// whatever those contents belong to. If the world is not solid at p, the bodies at p
// are tested and the first one with matching contents is returned.
func (e *Engine) PointContents(p mgl32.Vec3, mask trace.Contents) (trace.Contents, trace.Handle) {
	e.incStat(StatPointContents)

	contents := e.world.PointContents(p) & mask
	if contents != trace.ContentsSolid {
		for b := range e.bodies.EnumerateAtPoint(mask, p) {
			if c, h, ok := e.testBodyContents(b, p, mask); ok {
				return c, h
			}
		}
	}
	return contents, e.clipper.WorldEntity()
}

// PointContentsWorldOnly returns the contents of the world at p that match mask.
func (e *Engine) PointContentsWorldOnly(p mgl32.Vec3, mask trace.Contents) trace.Contents {
	return e.world.PointContents(p) & mask
}

// PointContentsOfBody returns the contents of a single body at p.
func (e *Engine) PointContentsOfBody(b collide.Body, p mgl32.Vec3) trace.Contents {
	c, _, _ := e.testBodyContents(b, p, trace.MaskAll)
	return c
}

// testBodyContents returns the contents of b at p if any of them match mask. Static
// props are solid and owned by the world. Otherwise only brush bodies with volume
// contents have any.
func (e *Engine) testBodyContents(b collide.Body, p mgl32.Vec3, mask trace.Contents) (trace.Contents, trace.Handle, bool) {
	if mask.Has(trace.ContentsSolid) && collide.IsStaticProp(b) {
		r := e.clipper.ClipShapeToBody(trace.NewRay(p, p), trace.MaskAll, b)
		if r.StartSolid {
			return trace.ContentsSolid, e.clipper.WorldEntity(), true
		}
		return trace.ContentsEmpty, nil, false
	}
	if !b.Flags().Has(collide.FlagVolumeContents) {
		return trace.ContentsEmpty, nil, false
	}

	model := b.Model()
	if model.Kind != collide.ModelBrush || e.world == nil {
		return trace.ContentsEmpty, nil, false
	}
	headNode := e.world.ModelHeadNode(model.Brush)
	if headNode < 0 {
		return trace.ContentsEmpty, nil, false
	}
	contents := e.world.TransformedPointContents(p, headNode, b.Origin(), b.Angles())
	if contents&mask == 0 {
		return trace.ContentsEmpty, nil, false
	}
	return contents, b.Entity(), true
}

// PointOutsideWorld reports whether p is in a leaf that belongs to no cluster.
func (e *Engine) PointOutsideWorld(p mgl32.Vec3) bool {
	return e.world.LeafCluster(e.world.LeafNumber(p)) == -1
}

// LeafContainingPoint returns the leaf p is in.
func (e *Engine) LeafContainingPoint(p mgl32.Vec3) int {
	return e.world.LeafNumber(p)
}

// InPVS reports whether the cluster containing b is potentially visible from the
// cluster containing a.
func (e *Engine) InPVS(a, b mgl32.Vec3) bool {
	from := e.world.LeafCluster(e.world.LeafNumber(a))
	to := e.world.LeafCluster(e.world.LeafNumber(b))
	if from < 0 || to < 0 {
		return false
	}
	pvs := e.world.ClusterPVS(from)
	if pvs == nil {
		return true
	}
	if to/64 >= len(pvs) {
		return false
	}
	return pvs[to/64]&(1<<(to%64)) != 0
}
