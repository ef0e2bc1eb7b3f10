package world

import (
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/oomph-ac/enginetrace/game"
	"github.com/oomph-ac/enginetrace/oerror"
	"github.com/oomph-ac/enginetrace/trace"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

var currentWorldId atomic.Uint64

// Brush is a convex solid volume. Brushes of the world are in world space, brushes of
// inline sub-models are in the sub-model's local space.
type Brush struct {
	Box      cube.BBox
	Contents trace.Contents
}

type subModel struct {
	brushes []int
}

// World is a static brush world. Its space is split into a grid of leaves, each
// leaf listing the world brushes that overlap it. Leaf 0 is the solid leaf standing
// in for everything outside of the world bounds.
type World struct {
	id uint64

	bounds   cube.BBox
	leafSize float32
	dims     [3]int

	brushes []Brush
	models  []subModel
	leaves  []leaf
	pvs     map[int][]uint64

	log *logrus.Logger

	deadlock.RWMutex
}

// New creates an empty world covering bounds, split into leaves of leafSize.
func New(bounds cube.BBox, leafSize float32, log *logrus.Logger) (*World, error) {
	if leafSize <= 0 {
		return nil, oerror.New("world: leaf size must be positive, got %v", leafSize)
	}
	size := bounds.Max().Sub(bounds.Min())
	if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
		return nil, oerror.New("world: bounds %v-%v have no volume", bounds.Min(), bounds.Max())
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	w := &World{
		id:       currentWorldId.Add(1),
		bounds:   bounds,
		leafSize: leafSize,
		models:   []subModel{{}},
		pvs:      make(map[int][]uint64),
		log:      log,
	}
	for i := 0; i < 3; i++ {
		w.dims[i] = max(1, int(math32.Ceil(size[i]/leafSize)))
	}

	count := w.dims[0] * w.dims[1] * w.dims[2]
	w.leaves = make([]leaf, count+1)
	w.leaves[0].cluster = -1
	for i := 1; i <= count; i++ {
		w.leaves[i].cluster = i - 1
	}
	w.log.WithFields(logrus.Fields{"world": w.id, "leaves": count}).Debug("created world")
	return w, nil
}

// ID returns the identifier of the world.
func (w *World) ID() uint64 {
	return w.id
}

// Bounds returns the bounds the world was created with.
func (w *World) Bounds() cube.BBox {
	return w.bounds
}

// AddModel adds an empty inline sub-model and returns its number.
func (w *World) AddModel() int {
	w.Lock()
	defer w.Unlock()

	w.models = append(w.models, subModel{})
	return len(w.models) - 1
}

// AddBrush adds a brush to the sub-model n and returns the brush index. Model 0 is the
// world itself.
func (w *World) AddBrush(n int, bb cube.BBox, contents trace.Contents) (int, error) {
	w.Lock()
	defer w.Unlock()

	if n < 0 || n >= len(w.models) {
		return -1, oerror.New("world: no sub-model %d", n)
	}
	index := len(w.brushes)
	w.brushes = append(w.brushes, Brush{Box: bb, Contents: contents})
	w.models[n].brushes = append(w.models[n].brushes, index)

	if n == 0 {
		for _, l := range w.boxLeaves(bb, nil) {
			w.leaves[l].brushes = append(w.leaves[l].brushes, index)
		}
	}
	return index, nil
}

// Brush returns the brush with the given index.
func (w *World) Brush(index int) (Brush, bool) {
	w.RLock()
	defer w.RUnlock()

	if index < 0 || index >= len(w.brushes) {
		return Brush{}, false
	}
	return w.brushes[index], true
}

// BrushContents returns the contents of the brush with the given index, or
// ContentsEmpty if there is no such brush.
func (w *World) BrushContents(index int) trace.Contents {
	b, _ := w.Brush(index)
	return b.Contents
}

// ModelHeadNode returns the head node of the sub-model n, or -1 if there is no such
// sub-model. Head nodes and sub-model numbers are the same in this world.
func (w *World) ModelHeadNode(n int) int {
	w.RLock()
	defer w.RUnlock()

	if n < 0 || n >= len(w.models) {
		return -1
	}
	return n
}

// clampToBounds clamps a box to the world bounds, returning ok=false if nothing is left.
func (w *World) clampToBounds(bb cube.BBox) (cube.BBox, bool) {
	min := game.MaxVec3(bb.Min(), w.bounds.Min())
	max := game.MinVec3(bb.Max(), w.bounds.Max())
	if min[0] > max[0] || min[1] > max[1] || min[2] > max[2] {
		return cube.BBox{}, false
	}
	return game.BoxFromPoints(min, max), true
}
