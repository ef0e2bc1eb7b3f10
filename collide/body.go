package collide

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/trace"
)

// Solid is the kind of collision representation a body uses.
type Solid uint8

const (
	SolidNone Solid = iota
	// SolidBSP bodies are inline brush sub-models of the world.
	SolidBSP
	// SolidBBox bodies collide as an axis-aligned box around their origin.
	SolidBBox
	// SolidOBB bodies collide as a box rotated by their angles.
	SolidOBB
	// SolidCustom bodies run their own collision test.
	SolidCustom
	// SolidPhysics bodies collide against their physics hull.
	SolidPhysics
)

func (s Solid) String() string {
	switch s {
	case SolidNone:
		return "none"
	case SolidBSP:
		return "bsp"
	case SolidBBox:
		return "bbox"
	case SolidOBB:
		return "obb"
	case SolidCustom:
		return "custom"
	case SolidPhysics:
		return "physics"
	}
	return "unknown"
}

// Flags modify how a body takes part in collision queries.
type Flags uint16

const (
	FlagCustomRayTest Flags = 1 << iota
	FlagCustomBoxTest
	FlagNotSolid
	FlagTrigger
	FlagVolumeContents
	FlagRootParentAligned
)

// Has reports whether any of the flags in o are set.
func (f Flags) Has(o Flags) bool {
	return f&o != 0
}

// IsSolid reports whether a body with the given kind and flags should block traces.
func IsSolid(solid Solid, flags Flags) bool {
	return solid != SolidNone && !flags.Has(FlagNotSolid)
}

// Body is anything a shape can be clipped against. Bodies are owned by the caller;
// the engine only reads from them for the duration of a query.
type Body interface {
	Solid() Solid
	Flags() Flags
	// Origin is the world position the body's local space is centered on.
	Origin() mgl32.Vec3
	// Angles is the rotation from the body's local space to world space.
	Angles() mgl32.Mat3
	// LocalBounds are the body's bounds in its local space.
	LocalBounds() cube.BBox
	// SurroundingBounds is a world space box that encloses the body entirely.
	SurroundingBounds() cube.BBox
	Entity() trace.Handle
	Model() Model
}

// CustomTester is implemented by bodies that run their own ray or box test.
type CustomTester interface {
	TestCollision(s trace.Shape, mask trace.Contents, r *trace.Result) bool
}

// HitVolumeTester is implemented by skeletal bodies whose hit volumes are posed
// elsewhere. It returns false if the hit volumes were not tested.
type HitVolumeTester interface {
	TestHitVolumes(s trace.Shape, mask trace.Contents, r *trace.Result) bool
}

// RootParented is implemented by bodies flagged FlagRootParentAligned.
type RootParented interface {
	RootParentToWorld() mgl32.Mat4
}

// StaticProp is implemented by static decorations placed in the level.
type StaticProp interface {
	PropIndex() int
}

// PhysicsObject is implemented by bodies without a model that own a physics hull.
type PhysicsObject interface {
	Collide() Mesh
}

// IsStaticProp reports whether b is a static decoration.
func IsStaticProp(b Body) bool {
	_, ok := b.(StaticProp)
	return ok
}
