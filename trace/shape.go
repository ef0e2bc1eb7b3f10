package trace

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/game"
)

// Shape is a point ray or a swept box. Start is the center of the box; adding
// StartOffset gives back the start position the shape was created with.
type Shape struct {
	Start       mgl32.Vec3
	Delta       mgl32.Vec3
	StartOffset mgl32.Vec3
	Extents     mgl32.Vec3

	// WorldAxisTransform, if set, is the rigid transform of the root parent
	// of the body being traced against. Box sweeps against bounding boxes are
	// done in that frame.
	WorldAxisTransform *mgl32.Mat4

	IsRay   bool
	IsSwept bool

	bounds cube.BBox
}

// NewRay returns a point ray from start to end.
func NewRay(start, end mgl32.Vec3) Shape {
	s := Shape{
		Start: start,
		Delta: end.Sub(start),
		IsRay: true,
	}
	s.IsSwept = s.Delta.LenSqr() != 0
	s.bounds = s.computeBounds()
	return s
}

// NewBox returns a box with the given local mins and maxs swept from start to end.
func NewBox(start, end, mins, maxs mgl32.Vec3) Shape {
	offset := mins.Add(maxs).Mul(0.5)
	s := Shape{
		Start:       start.Add(offset),
		Delta:       end.Sub(start),
		StartOffset: offset.Mul(-1),
		Extents:     maxs.Sub(mins).Mul(0.5),
	}
	s.IsRay = s.Extents.LenSqr() < 1e-6
	s.IsSwept = s.Delta.LenSqr() != 0
	s.bounds = s.computeBounds()
	return s
}

// WithDelta returns a copy of the shape swept along a different delta.
func (s Shape) WithDelta(delta mgl32.Vec3) Shape {
	s.Delta = delta
	s.IsSwept = delta.LenSqr() != 0
	s.bounds = s.computeBounds()
	return s
}

// Origin returns the position the shape was created at.
func (s Shape) Origin() mgl32.Vec3 {
	return s.Start.Add(s.StartOffset)
}

// End returns the center of the shape at the end of the sweep.
func (s Shape) End() mgl32.Vec3 {
	return s.Start.Add(s.Delta)
}

// InvDelta returns the component-wise reciprocal of the delta. Zero components
// map to +Inf.
func (s Shape) InvDelta() mgl32.Vec3 {
	var inv mgl32.Vec3
	for i := 0; i < 3; i++ {
		if s.Delta[i] != 0 {
			inv[i] = 1 / s.Delta[i]
		} else {
			inv[i] = math32.Inf(1)
		}
	}
	return inv
}

// Bounds returns the axis-aligned box that encloses the shape over its whole sweep.
func (s Shape) Bounds() cube.BBox {
	return s.bounds
}

func (s Shape) computeBounds() cube.BBox {
	end := s.End()
	return game.BoxFromPoints(
		game.MinVec3(s.Start, end).Sub(s.Extents),
		game.MaxVec3(s.Start, end).Add(s.Extents),
	)
}
