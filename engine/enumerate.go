package engine

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/collide"
	"github.com/oomph-ac/enginetrace/trace"
)

// EnumerateAlongShape calls fn for every body the sweep of s may touch, stopping
// when fn returns false. With triggers set, only trigger bodies are visited. Static
// props are never visited.
func (e *Engine) EnumerateAlongShape(s trace.Shape, triggers bool, fn func(b collide.Body) bool) {
	e.incStat(StatEnumerate)
	for b := range e.bodies.EnumerateAlongSweep(trace.MaskAll, s, triggers) {
		if collide.IsStaticProp(b) {
			continue
		}
		if !fn(b) {
			return
		}
	}
}

// EnumerateInBox calls fn for every body overlapping bb, stopping when fn returns
// false. Static props are never visited.
func (e *Engine) EnumerateInBox(bb cube.BBox, fn func(b collide.Body) bool) {
	e.incStat(StatEnumerate)
	for b := range e.bodies.EnumerateInBox(trace.MaskAll, bb) {
		if collide.IsStaticProp(b) {
			continue
		}
		if !fn(b) {
			return
		}
	}
}

// SweepBody sweeps the local bounds of b from start to end through the world and
// the bodies. Root parent aligned bodies are swept in their root parent's frame.
func (e *Engine) SweepBody(b collide.Body, start, end mgl32.Vec3, mask trace.Contents, filter trace.Filter) trace.Result {
	lb := b.LocalBounds()
	s := trace.NewBox(start, end, lb.Min(), lb.Max())
	if b.Flags().Has(collide.FlagRootParentAligned) {
		if rp, ok := b.(collide.RootParented); ok {
			m := rp.RootParentToWorld()
			s.WorldAxisTransform = &m
		}
	}
	return e.TraceShape(s, mask, filter)
}
