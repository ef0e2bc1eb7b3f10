package engine

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/trace"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

// RecordedRay is a shape captured by the debug ray recorder.
type RecordedRay struct {
	Shape trace.Shape
	Mask  trace.Contents
	// Count is how many times the same shape was traced while recording.
	Count int
}

// Recorder captures the unique shapes traced through an engine, up to a limit, so
// they can be dumped and replayed.
type Recorder struct {
	enabled atomic.Bool
	limit   int
	log     *logrus.Logger

	rays *orderedmap.OrderedMap[uint64, *RecordedRay]
	mu   deadlock.Mutex
}

// NewRecorder creates a disabled recorder that keeps at most limit unique rays.
func NewRecorder(limit int, log *logrus.Logger) *Recorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Recorder{
		limit: limit,
		log:   log,
		rays:  orderedmap.NewOrderedMap[uint64, *RecordedRay](),
	}
}

// Enable starts or stops recording.
func (r *Recorder) Enable(enabled bool) {
	r.enabled.Store(enabled)
}

// Enabled ...
func (r *Recorder) Enabled() bool {
	return r.enabled.Load()
}

// Record stores s if the recorder is enabled. Shapes already recorded only have
// their count bumped.
func (r *Recorder) Record(s trace.Shape, mask trace.Contents) {
	if r == nil || !r.enabled.Load() {
		return
	}
	key := shapeKey(s, mask)

	r.mu.Lock()
	defer r.mu.Unlock()

	if ray, ok := r.rays.Get(key); ok {
		ray.Count++
		return
	}
	if r.rays.Len() >= r.limit {
		return
	}
	s.WorldAxisTransform = nil
	r.rays.Set(key, &RecordedRay{Shape: s, Mask: mask, Count: 1})
}

// Len returns the number of unique rays recorded.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rays.Len()
}

// Rays returns a copy of the recorded rays in the order they were first traced.
func (r *Recorder) Rays() []RecordedRay {
	r.mu.Lock()
	defer r.mu.Unlock()

	rays := make([]RecordedRay, 0, r.rays.Len())
	for _, key := range r.rays.Keys() {
		ray, _ := r.rays.Get(key)
		rays = append(rays, *ray)
	}
	return rays
}

// Reset drops every recorded ray.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rays = orderedmap.NewOrderedMap[uint64, *RecordedRay]()
}

// Dump logs every recorded ray at debug level.
func (r *Recorder) Dump() {
	for i, ray := range r.Rays() {
		r.log.WithFields(logrus.Fields{
			"start":   ray.Shape.Origin(),
			"end":     ray.Shape.Origin().Add(ray.Shape.Delta),
			"extents": ray.Shape.Extents,
			"mask":    ray.Mask,
			"count":   ray.Count,
		}).Debugf("ray %d", i)
	}
}

// shapeKey hashes everything about a shape that affects the result of a trace.
func shapeKey(s trace.Shape, mask trace.Contents) uint64 {
	buf := make([]byte, 0, 4*13)
	for _, v := range [...]mgl32.Vec3{s.Start, s.Delta, s.StartOffset, s.Extents} {
		for _, f := range v {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(mask))
	return xxh3.Hash(buf)
}
