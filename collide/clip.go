package collide

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/game"
	"github.com/oomph-ac/enginetrace/trace"
	"github.com/sirupsen/logrus"
)

// BrushWorld is the part of the static world the clipper needs to trace brush
// sub-models and brush hulls.
type BrushWorld interface {
	// ModelHeadNode returns the head node of the inline sub-model n.
	ModelHeadNode(n int) int
	// TransformedBoxSweep sweeps s through the brushes under headNode, placed at
	// origin with the given rotation.
	TransformedBoxSweep(s trace.Shape, headNode int, mask trace.Contents, origin mgl32.Vec3, angles mgl32.Mat3) trace.Result
	// TransformedPointContents returns the contents of the brushes under headNode at p.
	TransformedPointContents(p mgl32.Vec3, headNode int, origin mgl32.Vec3, angles mgl32.Mat3) trace.Contents
	// BrushContents returns the contents of a single brush.
	BrushContents(brush int) trace.Contents
}

// Clipper clips shapes against individual bodies.
type Clipper struct {
	world       BrushWorld
	worldEntity trace.Handle
	log         *logrus.Logger
}

// NewClipper returns a Clipper that traces brush models through w. Hits on static
// props are reported as hits on worldEntity.
func NewClipper(w BrushWorld, worldEntity trace.Handle, log *logrus.Logger) *Clipper {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Clipper{world: w, worldEntity: worldEntity, log: log}
}

// WorldEntity returns the handle hits on the world and static props are reported as.
func (c *Clipper) WorldEntity() trace.Handle {
	return c.worldEntity
}

// ClipShapeToBody sweeps s against a single body and returns the result.
//
// The representation tested is picked in this order: the body's own custom test,
// its physics hull, its brush sub-model, its oriented box, its hit volumes and
// finally its bounding box. Bodies with none of these report no hit.
func (c *Clipper) ClipShapeToBody(s trace.Shape, mask trace.Contents, b Body) trace.Result {
	r := trace.Cleared(s)

	model := b.Model()
	studio := model.Studio
	isStudio := model.Kind == ModelStudio && studio != nil
	if isStudio && !mask.Has(trace.ContentsHitbox) && !mask.Has(studio.Contents) {
		return r
	}

	if b.Flags().Has(FlagRootParentAligned) {
		if rp, ok := b.(RootParented); ok {
			m := rp.RootParentToWorld()
			s.WorldAxisTransform = &m
		}
	}

	var traced, custom bool
	switch {
	case shouldPerformCustomTest(s, b):
		c.clipToCustom(s, mask, b, &r)
		traced, custom = true, true
	case b.Solid() == SolidPhysics:
		traced = c.clipToPhysics(s, mask, b, model, &r)
	}

	if !traced {
		switch {
		case model.Kind == ModelBrush:
			traced = c.clipToBrush(s, mask, b, model, &r)
		case b.Solid() == SolidOBB:
			lb := b.LocalBounds()
			r = trace.IntersectShapeWithOBB(s, b.Origin(), b.Angles(), lb.Min(), lb.Max())
			traced = true
		}
	}

	var tracedHitVolumes bool
	if isStudio && mask.Has(trace.ContentsHitbox) && !custom {
		traced = c.clipToHitVolumes(s, mask, b, studio, &r)
		tracedHitVolumes = traced
	}

	if !traced && b.Solid() == SolidBBox {
		clipToBBox(s, b, &r)
	}

	if isStudio && !tracedHitVolumes && r.DidHit() && (!custom || r.Surface.Props == 0) {
		r.Contents = studio.Contents
		r.Surface = trace.Surface{Name: "**studio**", Props: studio.SurfaceProp}
	}

	if r.Entity == nil && r.DidHit() {
		c.setEntity(b, &r)
	}
	return r
}

// setEntity points the result at the body's owner. Static props report the world
// as their owner and store their index in HitBox, offset by one.
func (c *Clipper) setEntity(b Body, r *trace.Result) {
	if prop, ok := b.(StaticProp); ok {
		r.Entity = c.worldEntity
		r.HitBox = prop.PropIndex() + 1
		return
	}
	r.Entity = b.Entity()
}

func shouldPerformCustomTest(s trace.Shape, b Body) bool {
	flags := b.Flags()
	return b.Solid() == SolidCustom ||
		(s.IsRay && flags.Has(FlagCustomRayTest)) ||
		(!s.IsRay && flags.Has(FlagCustomBoxTest))
}

func (c *Clipper) clipToCustom(s trace.Shape, mask trace.Contents, b Body, r *trace.Result) {
	if tester, ok := b.(CustomTester); ok {
		tester.TestCollision(s, mask, r)
	}
}

func (c *Clipper) clipToPhysics(s trace.Shape, mask trace.Contents, b Body, model Model, r *trace.Result) bool {
	switch model.Kind {
	case ModelNone:
		if obj, ok := b.(PhysicsObject); ok {
			if hull := obj.Collide(); hull != nil {
				*r = hull.TraceBox(s, mask, nil, b.Origin(), b.Angles())
				return true
			}
		}
		lb := b.LocalBounds()
		c.log.WithFields(logrus.Fields{
			"entity": debugName(b),
			"mins":   lb.Min(),
			"maxs":   lb.Max(),
		}).Warn("ClipShapeToBody: physics body has no model")
	case ModelStudio:
		studio := model.Studio
		if studio != nil && len(studio.Hulls) > 0 && studio.Hulls[0] != nil {
			*r = studio.Hulls[0].TraceBox(s, mask, studioConvex{studio: studio}, b.Origin(), b.Angles())
			return true
		}
	case ModelBrush:
		// Point rays go through the brush sub-model instead.
		if !s.IsRay && model.Hull != nil && c.world != nil {
			*r = model.Hull.TraceBox(s, mask, brushConvex{world: c.world}, b.Origin(), b.Angles())
			return true
		}
	}
	return false
}

func (c *Clipper) clipToBrush(s trace.Shape, mask trace.Contents, b Body, model Model, r *trace.Result) bool {
	if c.world == nil {
		return false
	}
	headNode := c.world.ModelHeadNode(model.Brush)
	*r = c.world.TransformedBoxSweep(s, headNode, mask, b.Origin(), b.Angles())
	return true
}

// clipToBBox sweeps s against the body's bounding box. Box sweeps that carry a root
// parent transform are done in the root parent's frame.
func clipToBBox(s trace.Shape, b Body, r *trace.Result) {
	lb := b.LocalBounds()
	if s.IsRay || s.WorldAxisTransform == nil {
		origin := b.Origin()
		*r = trace.IntersectShapeWithBox(s, origin.Add(lb.Min()), origin.Add(lb.Max()))
		return
	}

	m := *s.WorldAxisTransform
	local := trace.Shape{
		Start:   game.ITransform(m, s.Start),
		Extents: s.Extents,
		IsRay:   s.IsRay,
	}.WithDelta(game.IRotate(m, s.Delta))
	localOrigin := game.ITransform(m, b.Origin())
	*r = trace.IntersectShapeWithBox(local, localOrigin.Add(lb.Min()), localOrigin.Add(lb.Max()))

	start := s.Origin()
	r.StartPos = start
	r.EndPos = game.VecMA(start, r.Fraction, s.Delta)
	if !r.DidHit() {
		return
	}
	r.Plane.Normal = game.Rotate(m, r.Plane.Normal)
	r.Plane.Dist = r.EndPos.Dot(r.Plane.Normal)
	if r.FractionLeftSolid < 1 {
		r.StartPos = game.VecMA(r.StartPos, r.FractionLeftSolid, s.Delta)
	}
}

func debugName(b Body) string {
	if h := b.Entity(); h != nil {
		return h.DebugName()
	}
	return "<nil>"
}
