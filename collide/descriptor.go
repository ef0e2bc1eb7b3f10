package collide

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/game"
	"github.com/oomph-ac/enginetrace/trace"
)

// Descriptor is a Body described entirely by its fields.
type Descriptor struct {
	Kind     Solid
	SolidFlg Flags
	Pos      mgl32.Vec3
	// Rot is the local to world rotation. The zero value is treated as the identity.
	Rot    mgl32.Mat3
	Bounds cube.BBox
	Owner  trace.Handle
	Repr   Model
}

func (d *Descriptor) Solid() Solid           { return d.Kind }
func (d *Descriptor) Flags() Flags           { return d.SolidFlg }
func (d *Descriptor) Origin() mgl32.Vec3     { return d.Pos }
func (d *Descriptor) LocalBounds() cube.BBox { return d.Bounds }
func (d *Descriptor) Entity() trace.Handle   { return d.Owner }
func (d *Descriptor) Model() Model           { return d.Repr }

// Angles ...
func (d *Descriptor) Angles() mgl32.Mat3 {
	if d.Rot == (mgl32.Mat3{}) {
		return mgl32.Ident3()
	}
	return d.Rot
}

// SurroundingBounds returns the world space box enclosing the rotated local bounds.
func (d *Descriptor) SurroundingBounds() cube.BBox {
	rot := d.Angles()
	center := d.Pos.Add(rot.Mul3x1(game.BoxCenter(d.Bounds)))
	return game.BoxFromCenter(center, game.RotatedExtents(rot, game.BoxExtents(d.Bounds)))
}

// Prop is a static decoration placed in the level.
type Prop struct {
	Descriptor
	Index int
}

// PropIndex ...
func (p *Prop) PropIndex() int {
	return p.Index
}

// Name is a trace.Handle that is identified by its name.
type Name string

// DebugName ...
func (n Name) DebugName() string {
	return string(n)
}
