package engine

import (
	"iter"
	"sync/atomic"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/collide"
	"github.com/oomph-ac/enginetrace/settings"
	"github.com/oomph-ac/enginetrace/trace"
	"github.com/sirupsen/logrus"
)

// StaticWorld is the static part of the world: brushes, leaves, clusters and their
// visibility.
type StaticWorld interface {
	collide.BrushWorld

	// PointContents returns the contents of the world brushes at p.
	PointContents(p mgl32.Vec3) trace.Contents
	// LeafNumber returns the leaf containing p.
	LeafNumber(p mgl32.Vec3) int
	// LeafCluster returns the visibility cluster of a leaf, or -1 if the leaf is
	// outside of the world.
	LeafCluster(leaf int) int
	// BoxLeaves appends every leaf overlapping bb to dst.
	BoxLeaves(bb cube.BBox, dst []int) []int
	// BoxSweep sweeps s through the brushes under headNode.
	BoxSweep(s trace.Shape, headNode int, mask trace.Contents) trace.Result
	// BoxSweepLeaves sweeps s through the world brushes of the given leaves.
	BoxSweepLeaves(s trace.Shape, leaves []int, mask trace.Contents) trace.Result
	// ClusterPVS returns the visibility bitset of a cluster. Nil means every
	// cluster is visible.
	ClusterPVS(cluster int) []uint64
}

// Index finds the dynamic bodies near a query.
type Index interface {
	EnumerateAlongSweep(mask trace.Contents, s trace.Shape, triggersOnly bool) iter.Seq[collide.Body]
	EnumerateInBox(mask trace.Contents, bb cube.BBox) iter.Seq[collide.Body]
	EnumerateAtPoint(mask trace.Contents, p mgl32.Vec3) iter.Seq[collide.Body]
}

// Engine answers traces and point queries against a static world and the dynamic
// bodies of an index. The trace path takes no locks of its own.
type Engine struct {
	world   StaticWorld
	bodies  Index
	clipper *collide.Clipper

	conf settings.Trace
	log  *logrus.Logger

	stats    [statCount]atomic.Uint64
	recorder *Recorder
}

// New creates an engine tracing through w and bodies. Hits on the world and on
// static props are reported as hits on worldEntity.
func New(w StaticWorld, bodies Index, worldEntity trace.Handle, conf settings.Trace, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if bodies == nil {
		bodies = emptyIndex{}
	}
	return &Engine{
		world:    w,
		bodies:   bodies,
		clipper:  collide.NewClipper(w, worldEntity, log),
		conf:     conf,
		log:      log,
		recorder: NewRecorder(conf.DebugRayLimit, log),
	}
}

// World returns the static world the engine traces through.
func (e *Engine) World() StaticWorld {
	return e.world
}

// Clipper returns the clipper used to test single bodies.
func (e *Engine) Clipper() *collide.Clipper {
	return e.clipper
}

// Recorder returns the debug ray recorder. It is disabled until Enable is called.
func (e *Engine) Recorder() *Recorder {
	return e.recorder
}

// WorldEntity returns the handle hits on the world are reported as.
func (e *Engine) WorldEntity() trace.Handle {
	return e.clipper.WorldEntity()
}

// boxEpsilon is the tolerance used when checking whether a sweep can reach a body.
func (e *Engine) boxEpsilon() float32 {
	if e.conf.BoxIntersectEpsilon > 0 {
		return e.conf.BoxIntersectEpsilon
	}
	return trace.DistEpsilon
}

type emptyIndex struct{}

func (emptyIndex) EnumerateAlongSweep(trace.Contents, trace.Shape, bool) iter.Seq[collide.Body] {
	return func(func(collide.Body) bool) {}
}

func (emptyIndex) EnumerateInBox(trace.Contents, cube.BBox) iter.Seq[collide.Body] {
	return func(func(collide.Body) bool) {}
}

func (emptyIndex) EnumerateAtPoint(trace.Contents, mgl32.Vec3) iter.Seq[collide.Body] {
	return func(func(collide.Body) bool) {}
}
