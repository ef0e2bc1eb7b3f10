package collide

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/oomph-ac/enginetrace/trace"
)

// ModelKind tags which of the Model payloads is set.
type ModelKind uint8

const (
	ModelNone ModelKind = iota
	ModelBrush
	ModelStudio
)

// Model is the collision representation attached to a body.
type Model struct {
	Kind ModelKind

	// Brush is the inline sub-model number of a ModelBrush.
	Brush int
	// Hull is the physics hull of a ModelBrush, used for box sweeps when the
	// body is SolidPhysics.
	Hull Mesh

	Studio *Studio
}

// BrushModel returns a Model referencing the inline brush sub-model n.
func BrushModel(n int, hull Mesh) Model {
	return Model{Kind: ModelBrush, Brush: n, Hull: hull}
}

// StudioModel returns a Model for a skeletal body.
func StudioModel(s *Studio) Model {
	return Model{Kind: ModelStudio, Studio: s}
}

// Studio is the collision data of a skeletal model.
type Studio struct {
	Contents    trace.Contents
	SurfaceProp int16

	Bones      []Bone
	HitVolumes []HitVolume
	// Hulls are the physics hulls of the model. Only the first one is traced against.
	Hulls []Mesh
}

// Bone is a single bone of a skeletal model.
type Bone struct {
	Name        string
	Contents    trace.Contents
	SurfaceProp int16
	PhysicsBone int
}

// HitVolume is a box attached to a bone, in the body's local space.
type HitVolume struct {
	Bone  int
	Group int
	Box   cube.BBox
}
