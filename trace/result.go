package trace

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Handle is an opaque reference to whatever owns a collision body. The engine only
// compares handles and asks them for a name when logging.
type Handle interface {
	DebugName() string
}

// Plane is the surface plane at the point of impact.
type Plane struct {
	Normal mgl32.Vec3
	Dist   float32
}

// Result is the answer to a single clip or sweep.
type Result struct {
	StartPos mgl32.Vec3
	EndPos   mgl32.Vec3

	// Fraction is how far along the sweep the hit occurred. 1 means nothing was hit.
	Fraction float32
	// FractionLeftSolid is how far along the sweep the shape was still embedded
	// in something it started inside of. Only meaningful for point rays.
	FractionLeftSolid float32

	AllSolid   bool
	StartSolid bool

	Plane    Plane
	Contents Contents
	Surface  Surface

	HitGroup    int
	HitBox      int
	PhysicsBone int

	Entity Handle
}

// Clear resets the result to a trace that hit nothing.
func (r *Result) Clear() {
	*r = Result{Fraction: 1}
}

// Cleared returns a result that hit nothing, spanning the whole shape sweep.
func Cleared(s Shape) Result {
	start := s.Origin()
	return Result{StartPos: start, EndPos: start.Add(s.Delta), Fraction: 1}
}

// DidHit reports whether the trace hit anything, including starting inside it.
func (r *Result) DidHit() bool {
	return r.Fraction < 1 || r.AllSolid || r.StartSolid
}

// effectiveFraction treats an all solid trace as blocked at the very start.
func (r *Result) effectiveFraction() float32 {
	if r.AllSolid {
		return 0
	}
	return r.Fraction
}
