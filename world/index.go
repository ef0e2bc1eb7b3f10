package world

import (
	"iter"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/collide"
	"github.com/oomph-ac/enginetrace/game"
	"github.com/oomph-ac/enginetrace/trace"
	"github.com/oomph-ac/enginetrace/utils"
	"github.com/sasha-s/go-deadlock"
)

// DefaultCellSize is the edge length of a cell of the body index.
const DefaultCellSize float32 = 128

var bodyListPool = utils.NewSlicePool[collide.Body](32)

// Index is a uniform grid over dynamic bodies. Every body is registered in each cell
// its surrounding bounds overlap.
type Index struct {
	cellSize float32

	cells  map[cube.Pos][]collide.Body
	bodies map[collide.Body]cube.BBox

	deadlock.RWMutex
}

// NewIndex creates an empty index with the given cell size.
func NewIndex(cellSize float32) *Index {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Index{
		cellSize: cellSize,
		cells:    make(map[cube.Pos][]collide.Body),
		bodies:   make(map[collide.Body]cube.BBox),
	}
}

// Insert adds a body to the index using its current surrounding bounds. Inserting a
// body that is already present updates it.
func (x *Index) Insert(b collide.Body) {
	x.Lock()
	defer x.Unlock()

	if _, ok := x.bodies[b]; ok {
		x.unlink(b)
	}
	bb := b.SurroundingBounds()
	x.bodies[b] = bb
	for pos := range game.CellsIn(bb, x.cellSize) {
		x.cells[pos] = append(x.cells[pos], b)
	}
}

// Remove removes a body from the index.
func (x *Index) Remove(b collide.Body) {
	x.Lock()
	defer x.Unlock()
	x.unlink(b)
}

// Len returns the number of bodies in the index.
func (x *Index) Len() int {
	x.RLock()
	defer x.RUnlock()
	return len(x.bodies)
}

func (x *Index) unlink(b collide.Body) {
	bb, ok := x.bodies[b]
	if !ok {
		return
	}
	delete(x.bodies, b)
	for pos := range game.CellsIn(bb, x.cellSize) {
		list := x.cells[pos]
		for i, other := range list {
			if other == b {
				list[i] = list[len(list)-1]
				list = list[:len(list)-1]
				break
			}
		}
		if len(list) == 0 {
			delete(x.cells, pos)
		} else {
			x.cells[pos] = list
		}
	}
}

// collect gathers the unique bodies of the given cells that pass keep. The lock is
// released before anything is yielded, so callers may modify the index while iterating.
func (x *Index) collect(cells iter.Seq[cube.Pos], keep func(b collide.Body, bb cube.BBox) bool) iter.Seq[collide.Body] {
	return func(yield func(collide.Body) bool) {
		list := bodyListPool.Get()
		defer bodyListPool.Put(list)

		x.RLock()
		seen := make(map[collide.Body]struct{})
		for pos := range cells {
			for _, b := range x.cells[pos] {
				if _, ok := seen[b]; ok {
					continue
				}
				seen[b] = struct{}{}
				if keep(b, x.bodies[b]) {
					*list = append(*list, b)
				}
			}
		}
		x.RUnlock()

		for _, b := range *list {
			if !yield(b) {
				return
			}
		}
	}
}

// EnumerateAlongSweep yields the bodies whose bounds may be touched by the sweep of s.
// With triggersOnly set only trigger bodies are yielded, otherwise triggers are skipped.
// The contents mask is left to the clipper.
func (x *Index) EnumerateAlongSweep(_ trace.Contents, s trace.Shape, triggersOnly bool) iter.Seq[collide.Body] {
	cells := game.CellsIn(s.Bounds(), x.cellSize)
	if s.IsRay {
		cells = game.CellsBetween(s.Start, s.End(), x.cellSize)
	}
	return x.collect(cells, func(b collide.Body, bb cube.BBox) bool {
		if b.Flags().Has(collide.FlagTrigger) != triggersOnly {
			return false
		}
		return trace.IsBoxIntersectingShape(bb, s, trace.DistEpsilon)
	})
}

// EnumerateInBox yields the bodies whose bounds overlap bb.
func (x *Index) EnumerateInBox(_ trace.Contents, bb cube.BBox) iter.Seq[collide.Body] {
	return x.collect(game.CellsIn(bb, x.cellSize), func(b collide.Body, bodyBB cube.BBox) bool {
		return !b.Flags().Has(collide.FlagTrigger) && game.BoxesOverlap(bb, bodyBB)
	})
}

// EnumerateAtPoint yields the bodies whose bounds contain p.
func (x *Index) EnumerateAtPoint(_ trace.Contents, p mgl32.Vec3) iter.Seq[collide.Body] {
	cell := cube.PosFromVec3(p.Mul(1 / x.cellSize))
	cells := func(yield func(cube.Pos) bool) { yield(cell) }
	return x.collect(cells, func(b collide.Body, bb cube.BBox) bool {
		return !b.Flags().Has(collide.FlagTrigger) && game.BoxContainsPoint(bb, p)
	})
}
