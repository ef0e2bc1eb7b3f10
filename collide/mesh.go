package collide

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/game"
	"github.com/oomph-ac/enginetrace/trace"
)

// Mesh is a physics collision hull that shapes can be swept against.
type Mesh interface {
	// TraceBox sweeps s against the mesh placed at origin with the given rotation.
	// If convex is non-nil it provides the contents of each convex piece.
	TraceBox(s trace.Shape, mask trace.Contents, convex ConvexInfo, origin mgl32.Vec3, angles mgl32.Mat3) trace.Result
}

// ConvexInfo maps the game data stored on a convex piece to its contents.
type ConvexInfo interface {
	Contents(gameData int) trace.Contents
}

// Piece is a single convex piece of a Hull.
type Piece struct {
	Box      cube.BBox
	GameData int
}

// Hull is a Mesh made out of boxes in local space.
type Hull struct {
	Pieces []Piece
}

// NewHull returns a hull made of the given boxes, each with its index as game data.
func NewHull(boxes ...cube.BBox) *Hull {
	h := &Hull{Pieces: make([]Piece, len(boxes))}
	for i, bb := range boxes {
		h.Pieces[i] = Piece{Box: bb, GameData: i}
	}
	return h
}

// TraceBox ...
func (h *Hull) TraceBox(s trace.Shape, mask trace.Contents, convex ConvexInfo, origin mgl32.Vec3, angles mgl32.Mat3) trace.Result {
	inv := angles.Transpose()
	local := s
	local.Start = inv.Mul3x1(s.Start.Sub(origin))
	local.StartOffset = mgl32.Vec3{}
	local.Extents = game.RotatedExtents(inv, s.Extents)
	local.WorldAxisTransform = nil
	local = local.WithDelta(inv.Mul3x1(s.Delta))

	best := trace.Cleared(local)
	for _, p := range h.Pieces {
		contents := trace.ContentsSolid
		if convex != nil {
			contents = convex.Contents(p.GameData)
			if !contents.Has(mask) {
				continue
			}
		}
		r := trace.IntersectShapeWithBox(local, p.Box.Min(), p.Box.Max())
		if r.DidHit() {
			r.Contents = contents
		}
		best.Merge(&r)
	}

	start := s.Origin()
	best.EndPos = game.VecMA(start, best.Fraction, s.Delta)
	best.StartPos = start
	if best.StartSolid && best.FractionLeftSolid < 1 {
		best.StartPos = game.VecMA(start, best.FractionLeftSolid, s.Delta)
	}
	if best.DidHit() {
		best.Plane.Normal = angles.Mul3x1(best.Plane.Normal)
		best.Plane.Dist = best.Plane.Normal.Dot(best.EndPos)
	}
	return best
}

// studioConvex resolves hull contents of skeletal models: game data 0 is the model
// itself, anything else is a bone index offset by one.
type studioConvex struct {
	studio *Studio
}

func (c studioConvex) Contents(gameData int) trace.Contents {
	if gameData == 0 || gameData > len(c.studio.Bones) {
		return c.studio.Contents
	}
	return c.studio.Bones[gameData-1].Contents
}

// brushConvex resolves hull contents of brush models: game data is a brush index.
type brushConvex struct {
	world BrushWorld
}

func (c brushConvex) Contents(gameData int) trace.Contents {
	return c.world.BrushContents(gameData)
}
