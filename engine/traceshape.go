package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/collide"
	"github.com/oomph-ac/enginetrace/game"
	"github.com/oomph-ac/enginetrace/trace"
	"github.com/oomph-ac/enginetrace/utils"
	"github.com/sirupsen/logrus"
)

var bodyListPool = utils.NewSlicePool[collide.Body](16)

// TraceShape sweeps s through the world, the static props and the dynamic bodies,
// and returns the nearest hit. A nil filter hits everything.
func (e *Engine) TraceShape(s trace.Shape, mask trace.Contents, filter trace.Filter) trace.Result {
	e.incStat(StatTraceRay)
	e.recorder.Record(s, mask)
	if filter == nil {
		filter = trace.HitAll{}
	}

	r, done := e.traceWorld(s, mask, filter.Type(), func() trace.Result {
		return e.world.BoxSweep(s, 0, mask)
	})
	if done {
		return r
	}

	entityShape, worldFraction, flsScale := truncate(s, &r)

	props, bodies := bodyListPool.Get(), bodyListPool.Get()
	defer bodyListPool.Put(props)
	defer bodyListPool.Put(bodies)

	for b := range e.bodies.EnumerateAlongSweep(mask, entityShape, false) {
		if !collide.IsSolid(b.Solid(), b.Flags()) {
			e.logNotSolid(b)
			continue
		}
		if collide.IsStaticProp(b) {
			*props = append(*props, b)
		} else {
			*bodies = append(*bodies, b)
		}
	}
	e.clipBodies(entityShape, mask, filter, *props, *bodies, &r)

	fixup(s, &r, worldFraction, flsScale)
	return r
}

// traceWorld runs the world stage of a trace. It returns true if the trace is
// complete after it.
func (e *Engine) traceWorld(s trace.Shape, mask trace.Contents, kind trace.Type, sweep func() trace.Result) (trace.Result, bool) {
	if kind == trace.TraceEntitiesOnly {
		return trace.Cleared(s), false
	}
	r := sweep()
	if r.DidHit() {
		r.Entity = e.clipper.WorldEntity()
	}
	return r, r.Fraction == 0 || kind == trace.TraceWorldOnly
}

// truncate shortens the sweep of s to where the world stopped it and rescales r so
// that it is relative to the shortened sweep.
func truncate(s trace.Shape, r *trace.Result) (trace.Shape, float32, float32) {
	worldFraction := r.Fraction
	if worldFraction == 0 {
		flsScale := r.FractionLeftSolid
		r.FractionLeftSolid, r.Fraction = 1, 1
		return s.WithDelta(mgl32.Vec3{}), worldFraction, flsScale
	}
	// The end is computed explicitly so the shortened sweep ends exactly where the
	// world result says it does.
	end := game.VecMA(s.Start, worldFraction, s.Delta)
	r.FractionLeftSolid /= worldFraction
	r.Fraction = 1
	return s.WithDelta(end.Sub(s.Start)), worldFraction, worldFraction
}

// fixup scales r back so that it is relative to the full sweep of s.
func fixup(s trace.Shape, r *trace.Result, worldFraction, flsScale float32) {
	r.Fraction *= worldFraction
	r.FractionLeftSolid *= flsScale
	if !s.IsRay {
		r.StartPos = s.Origin()
		r.FractionLeftSolid = 0
	}
}

// clipBodies clips s against the static props and then the bodies, merging every
// result into r. It stops as soon as r is all solid.
func (e *Engine) clipBodies(s trace.Shape, mask trace.Contents, filter trace.Filter, props, bodies []collide.Body, r *trace.Result) {
	kind := filter.Type()
	if kind != trace.TraceEntitiesOnly {
		for _, b := range props {
			if r.AllSolid {
				return
			}
			if kind == trace.TraceEverythingFilterProps && !filter.ShouldHitEntity(b.Entity(), mask) {
				continue
			}
			e.clipBody(s, mask, b, r)
		}
	}
	for _, b := range bodies {
		if r.AllSolid {
			return
		}
		if !filter.ShouldHitEntity(b.Entity(), mask) {
			continue
		}
		e.clipBody(s, mask, b, r)
	}
}

func (e *Engine) clipBody(s trace.Shape, mask trace.Contents, b collide.Body, r *trace.Result) {
	if !trace.IsBoxIntersectingShape(b.SurroundingBounds(), s, e.boxEpsilon()) {
		return
	}
	clip := e.clipper.ClipShapeToBody(s, mask, b)
	trace.ClipTraceToTrace(&clip, r)
}

func (e *Engine) logNotSolid(b collide.Body) {
	name := "<nil>"
	if h := b.Entity(); h != nil {
		name = h.DebugName()
	}
	e.log.WithFields(logrus.Fields{
		"entity": name,
		"solid":  b.Solid().String(),
	}).Warnf("%s in solid list (not solid)", name)
}
