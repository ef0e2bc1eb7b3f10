package engine

import (
	"sync"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/collide"
	"github.com/oomph-ac/enginetrace/game"
	"github.com/oomph-ac/enginetrace/trace"
)

// List is a cached set of the leaves and bodies around a box. Any number of traces
// that stay inside the box can be run against it without querying the world or the
// index again.
type List struct {
	box cube.BBox

	Leaves []int
	Bodies []collide.Body
	Props  []collide.Body
}

var listPool = sync.Pool{
	New: func() any {
		return &List{
			Leaves: make([]int, 0, 16),
			Bodies: make([]collide.Body, 0, 16),
			Props:  make([]collide.Body, 0, 8),
		}
	},
}

// Box returns the padded box the list was built for.
func (l *List) Box() cube.BBox {
	return l.box
}

// CanTraceRay reports whether the whole sweep of s lies inside the list's box.
func (l *List) CanTraceRay(s trace.Shape) bool {
	return game.BoxWithin(ComputeShapeBounds(s), l.box)
}

// Release resets the list and returns it to the pool. The list must not be used
// after it has been released.
func (l *List) Release() {
	l.box = cube.BBox{}
	l.Leaves = l.Leaves[:0]
	clear(l.Bodies)
	l.Bodies = l.Bodies[:0]
	clear(l.Props)
	l.Props = l.Props[:0]
	listPool.Put(l)
}

// ComputeShapeBounds returns the box enclosing the whole sweep of s.
func ComputeShapeBounds(s trace.Shape) cube.BBox {
	end := s.End()
	return game.BoxFromPoints(
		game.MinVec3(s.Start, end).Sub(s.Extents),
		game.MaxVec3(s.Start, end).Add(s.Extents),
	)
}

// BuildList collects the leaves and the solid bodies around bb, grown by the list
// padding on every axis.
func (e *Engine) BuildList(bb cube.BBox) *List {
	pad := e.conf.ListPadding
	if pad <= 0 {
		pad = 1
	}
	l := listPool.Get().(*List)
	l.box = bb.Grow(pad)
	l.Leaves = e.world.BoxLeaves(l.box, l.Leaves)

	for b := range e.bodies.EnumerateInBox(trace.MaskAll, l.box) {
		if !collide.IsSolid(b.Solid(), b.Flags()) {
			e.logNotSolid(b)
			continue
		}
		if collide.IsStaticProp(b) {
			l.Props = append(l.Props, b)
		} else {
			l.Bodies = append(l.Bodies, b)
		}
	}
	return l
}

// BuildListForShape builds a list around the whole sweep of s.
func (e *Engine) BuildListForShape(s trace.Shape) *List {
	return e.BuildList(ComputeShapeBounds(s))
}

// BuildListForSegment builds a list around a box swept from start to end.
func (e *Engine) BuildListForSegment(start, end, mins, maxs mgl32.Vec3) *List {
	return e.BuildListForShape(trace.NewBox(start, end, mins, maxs))
}

// ClipAlongCachedList traces s against the leaves and bodies of l. Shapes that do
// not fit inside the list are traced with TraceShape instead.
func (e *Engine) ClipAlongCachedList(s trace.Shape, l *List, mask trace.Contents, filter trace.Filter) trace.Result {
	if l == nil || !l.CanTraceRay(s) {
		return e.TraceShape(s, mask, filter)
	}
	e.incStat(StatTraceRay)
	e.recorder.Record(s, mask)
	if filter == nil {
		filter = trace.HitAll{}
	}

	r, done := e.traceWorld(s, mask, filter.Type(), func() trace.Result {
		return e.world.BoxSweepLeaves(s, l.Leaves, mask)
	})
	if done {
		return r
	}

	entityShape, worldFraction, flsScale := truncate(s, &r)
	e.clipBodies(entityShape, mask, filter, l.Props, l.Bodies, &r)
	fixup(s, &r, worldFraction, flsScale)
	return r
}
