package collide

import (
	"github.com/ethaniccc/float32-cube/cube"
	ctrace "github.com/ethaniccc/float32-cube/cube/trace"
	"github.com/oomph-ac/enginetrace/game"
	"github.com/oomph-ac/enginetrace/trace"
)

// clipToHitVolumes runs the hit volume test of a skeletal body and folds the answer
// into r. It returns false if the hit volumes were not tested, in which case r is
// left untouched.
func (c *Clipper) clipToHitVolumes(s trace.Shape, mask trace.Contents, b Body, studio *Studio, r *trace.Result) bool {
	// Hit volumes can only be tested with point rays.
	if !s.IsRay {
		return false
	}

	hr := trace.Cleared(s)
	hr.Contents = r.Contents

	var tested bool
	if tester, ok := b.(HitVolumeTester); ok {
		tested = tester.TestHitVolumes(s, mask, &hr)
	} else {
		tested = testHitVolumes(s, b, studio, &hr)
	}
	if !tested {
		return false
	}

	switch {
	case !hr.DidHit():
		r.Clear()
		r.StartPos, r.EndPos = hr.StartPos, hr.EndPos
	case b.Solid() != SolidPhysics:
		startPos, fls := r.StartPos, r.FractionLeftSolid
		*r = hr
		if hr.StartSolid {
			r.StartPos, r.FractionLeftSolid = startPos, fls
		}
	default:
		r.Contents = hr.Contents
		r.HitGroup = hr.HitGroup
		r.HitBox = hr.HitBox
		r.PhysicsBone = hr.PhysicsBone
		r.Surface = hr.Surface
	}
	return true
}

// testHitVolumes tests a point ray against the hit volumes of the studio model in
// their rest pose. It returns false if the model has no hit volumes.
func testHitVolumes(s trace.Shape, b Body, studio *Studio, r *trace.Result) bool {
	if len(studio.HitVolumes) == 0 {
		return false
	}

	origin, rot := b.Origin(), b.Angles()
	inv := rot.Transpose()
	start := s.Origin()
	localStart := inv.Mul3x1(start.Sub(origin))
	localEnd := inv.Mul3x1(start.Add(s.Delta).Sub(origin))
	length := localEnd.Sub(localStart).Len()

	best, bestIndex := float32(2), -1
	var bestFace cube.Face
	var startSolid bool
	for i, hv := range studio.HitVolumes {
		if hv.Box.Vec3Within(localStart) {
			best, bestIndex, startSolid = 0, i, true
			break
		}
		if length == 0 {
			continue
		}
		res, ok := ctrace.BBoxIntercept(hv.Box, localStart, localEnd)
		if !ok {
			continue
		}
		if frac := res.Position().Sub(localStart).Len() / length; frac < best {
			best, bestIndex, bestFace = game.Clamp01(frac), i, res.Face()
		}
	}
	if bestIndex < 0 {
		return true
	}

	hv := studio.HitVolumes[bestIndex]
	r.Fraction = best
	r.StartSolid = startSolid
	r.EndPos = game.VecMA(start, best, s.Delta)
	if !startSolid {
		r.Plane.Normal = rot.Mul3x1(cube.Pos{}.Side(bestFace).Vec3())
		r.Plane.Dist = r.Plane.Normal.Dot(r.EndPos)
	}
	r.HitBox = bestIndex
	r.HitGroup = hv.Group
	r.Contents = studio.Contents | trace.ContentsHitbox
	r.Surface = trace.Surface{Flags: trace.SurfaceHitbox, Props: studio.SurfaceProp}
	if hv.Bone >= 0 && hv.Bone < len(studio.Bones) {
		bone := studio.Bones[hv.Bone]
		r.Contents = bone.Contents | trace.ContentsHitbox
		r.PhysicsBone = bone.PhysicsBone
		r.Surface.Name = bone.Name
		r.Surface.Props = bone.SurfaceProp
	}
	return true
}
