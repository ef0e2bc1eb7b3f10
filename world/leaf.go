package world

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/game"
)

// LeafFlags are flags stored on a leaf.
type LeafFlags uint8

const (
	// LeafSky is set on leaves that can see the sky.
	LeafSky LeafFlags = 1 << iota
)

type leaf struct {
	cluster int
	flags   LeafFlags
	brushes []int
}

// leafAt returns the leaf number of the grid cell at the given coordinates.
func (w *World) leafAt(x, y, z int) int {
	return 1 + x + y*w.dims[0] + z*w.dims[0]*w.dims[1]
}

func (w *World) cellOf(p mgl32.Vec3) [3]int {
	rel := p.Sub(w.bounds.Min()).Mul(1 / w.leafSize)
	pos := cube.PosFromVec3(rel)
	var cell [3]int
	for i := 0; i < 3; i++ {
		cell[i] = min(max(pos[i], 0), w.dims[i]-1)
	}
	return cell
}

func (w *World) leafNumber(p mgl32.Vec3) int {
	if !game.BoxContainsPoint(w.bounds, p) {
		return 0
	}
	cell := w.cellOf(p)
	return w.leafAt(cell[0], cell[1], cell[2])
}

// LeafNumber returns the leaf containing p. Points outside the world are in leaf 0.
func (w *World) LeafNumber(p mgl32.Vec3) int {
	w.RLock()
	defer w.RUnlock()
	return w.leafNumber(p)
}

// LeafCluster returns the visibility cluster of a leaf. The outside leaf and invalid
// leaves are in cluster -1.
func (w *World) LeafCluster(l int) int {
	w.RLock()
	defer w.RUnlock()

	if l < 0 || l >= len(w.leaves) {
		return -1
	}
	return w.leaves[l].cluster
}

// LeafIsSky reports whether the leaf can see the sky.
func (w *World) LeafIsSky(l int) bool {
	w.RLock()
	defer w.RUnlock()

	if l < 0 || l >= len(w.leaves) {
		return false
	}
	return w.leaves[l].flags&LeafSky != 0
}

// SetSky flags every leaf overlapping bb as seeing the sky.
func (w *World) SetSky(bb cube.BBox) {
	w.Lock()
	defer w.Unlock()

	for _, l := range w.boxLeaves(bb, nil) {
		if l != 0 {
			w.leaves[l].flags |= LeafSky
		}
	}
}

// boxLeaves appends the leaves overlapping bb to dst. The outside leaf is included
// if bb reaches outside of the world.
func (w *World) boxLeaves(bb cube.BBox, dst []int) []int {
	if !game.BoxWithin(bb, w.bounds) {
		dst = append(dst, 0)
	}
	clamped, ok := w.clampToBounds(bb)
	if !ok {
		return dst
	}
	lo, hi := w.cellOf(clamped.Min()), w.cellOf(clamped.Max())
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				dst = append(dst, w.leafAt(x, y, z))
			}
		}
	}
	return dst
}

// BoxLeaves appends the leaves overlapping bb to dst and returns it.
func (w *World) BoxLeaves(bb cube.BBox, dst []int) []int {
	w.RLock()
	defer w.RUnlock()
	return w.boxLeaves(bb, dst)
}

// SetPVS sets the clusters visible from cluster. Clusters without a PVS see every
// other cluster.
func (w *World) SetPVS(cluster int, visible ...int) {
	w.Lock()
	defer w.Unlock()

	bits := make([]uint64, (len(w.leaves)+63)/64)
	for _, c := range visible {
		if c >= 0 {
			bits[c/64] |= 1 << (c % 64)
		}
	}
	w.pvs[cluster] = bits
}

// ClusterPVS returns the visibility bitset of a cluster, one bit per cluster. A nil
// bitset means every cluster is visible.
func (w *World) ClusterPVS(cluster int) []uint64 {
	w.RLock()
	defer w.RUnlock()
	return w.pvs[cluster]
}
