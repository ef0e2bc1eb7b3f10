package game

import (
	"iter"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// CellsBetween walks the grid cells of the given size that the segment from start
// to end passes through, in order.
// https://github.com/pmmp/Math/blob/stable/src/VoxelRayTrace.php#L67
func CellsBetween(start, end mgl32.Vec3, cellSize float32) iter.Seq[cube.Pos] {
	return func(yield func(cube.Pos) bool) {
		start, end = start.Mul(1/cellSize), end.Mul(1/cellSize)
		currentCell := cube.PosFromVec3(start)

		dirVec := end.Sub(start)
		if dirVec.LenSqr() <= 0 {
			yield(currentCell)
			return
		}
		dirVec = dirVec.Normalize()

		radius := start.Sub(end).Len()
		stepX := int(Sign32(dirVec.X()))
		stepY := int(Sign32(dirVec.Y()))
		stepZ := int(Sign32(dirVec.Z()))

		tMaxX := distanceToBoundary(start.X(), dirVec.X())
		tMaxY := distanceToBoundary(start.Y(), dirVec.Y())
		tMaxZ := distanceToBoundary(start.Z(), dirVec.Z())

		tDeltaX := float32(0)
		if dirVec.X() != 0 {
			tDeltaX = float32(stepX) / dirVec.X()
		}

		tDeltaY := float32(0)
		if dirVec.Y() != 0 {
			tDeltaY = float32(stepY) / dirVec.Y()
		}

		tDeltaZ := float32(0)
		if dirVec.Z() != 0 {
			tDeltaZ = float32(stepZ) / dirVec.Z()
		}

		for {
			if !yield(currentCell) {
				return
			}

			if tMaxX < tMaxY && tMaxX < tMaxZ {
				if tMaxX > radius {
					return
				}
				currentCell[0] += stepX
				tMaxX += tDeltaX
			} else if tMaxY < tMaxZ {
				if tMaxY > radius {
					return
				}
				currentCell[1] += stepY
				tMaxY += tDeltaY
			} else {
				if tMaxZ > radius {
					return
				}
				currentCell[2] += stepZ
				tMaxZ += tDeltaZ
			}
		}
	}
}

// CellsIn yields every grid cell of the given size that the box overlaps.
func CellsIn(bb cube.BBox, cellSize float32) iter.Seq[cube.Pos] {
	return func(yield func(cube.Pos) bool) {
		min := cube.PosFromVec3(bb.Min().Mul(1 / cellSize))
		max := cube.PosFromVec3(bb.Max().Mul(1 / cellSize))
		for x := min[0]; x <= max[0]; x++ {
			for y := min[1]; y <= max[1]; y++ {
				for z := min[2]; z <= max[2]; z++ {
					if !yield(cube.Pos{x, y, z}) {
						return
					}
				}
			}
		}
	}
}

// https://github.com/pmmp/Math/blob/stable/src/VoxelRayTrace.php#L134
func distanceToBoundary(s, ds float32) float32 {
	if ds == 0 {
		return math32.MaxFloat32
	}

	if ds < 0 {
		s = -s
		ds = -ds

		if math32.Floor(s) == s {
			return 0
		}
	}

	return (1 - (s - math32.Floor(s))) / ds
}
