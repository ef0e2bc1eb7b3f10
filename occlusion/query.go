package occlusion

import (
	"sync/atomic"
	"time"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/game"
)

// State is the lifecycle stage of a query.
type State int32

const (
	// StatePending queries are waiting in the queue.
	StatePending State = iota
	// StateRunning queries are being tested by a job.
	StateRunning
	// StateCompleted queries have a result.
	StateCompleted
	// StateCanceled queries were canceled before a job got to them. The job that
	// drains them completes them without testing.
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCanceled:
		return "canceled"
	}
	return "unknown"
}

// Query is an asynchronous occlusion test between two boxes. It is shared between
// the cache and the queue and is reference counted.
type Query struct {
	a, b   cube.BBox
	shadow mgl32.Vec3

	state  atomic.Int32
	result atomic.Bool
	// executed is set once a job has drained the query, whether it was tested or not.
	executed atomic.Bool
	refs     atomic.Int32

	queuedAt      time.Time
	latency       time.Duration
	rcpThroughput time.Duration

	stats *Stats
}

// newQuery returns a pending query holding one reference.
func newQuery(a, b cube.BBox, shadow mgl32.Vec3, stats *Stats) *Query {
	q := &Query{stats: stats}
	q.refs.Store(1)
	stats.addQueries(1)
	stats.addInFlight(1)
	q.init(a, b, shadow)
	return q
}

// init resets a query for new boxes. It must not be in the queue.
func (q *Query) init(a, b cube.BBox, shadow mgl32.Vec3) {
	q.a, q.b, q.shadow = a, b, shadow
	q.result.Store(false)
	q.executed.Store(false)
	q.queuedAt = time.Now()
	q.latency, q.rcpThroughput = 0, 0
	q.state.Store(int32(StatePending))
}

// State returns the current state of the query.
func (q *Query) State() State {
	return State(q.state.Load())
}

// Completed reports whether the query has a result.
func (q *Query) Completed() bool {
	return q.State() == StateCompleted
}

// Result returns the result of a completed query.
func (q *Query) Result() bool {
	return q.result.Load()
}

// Refs returns the current reference count.
func (q *Query) Refs() int32 {
	return q.refs.Load()
}

// Cancel stops a pending query from being tested. Queries that are already running
// or completed are left alone.
func (q *Query) Cancel() {
	q.state.CompareAndSwap(int32(StatePending), int32(StateCanceled))
}

func (q *Query) acquire() {
	q.refs.Add(1)
}

// release drops a reference. Dropping the last one retires the query.
func (q *Query) release() {
	if q.refs.Add(-1) != 0 {
		return
	}
	if !q.executed.Load() {
		q.stats.addInFlight(-1)
	}
	q.stats.addQueries(-1)
}

// execute runs the test unless the query was canceled, and completes it.
func (q *Query) execute(test func(a, b cube.BBox, shadow mgl32.Vec3) bool) {
	started := time.Now()
	if q.state.CompareAndSwap(int32(StatePending), int32(StateRunning)) {
		q.result.Store(test(q.a, q.b, q.shadow))
		q.rcpThroughput = time.Since(started)
	} else {
		q.result.Store(false)
		q.rcpThroughput = 0
	}
	q.latency = time.Since(q.queuedAt)

	q.stats.addInFlight(-1)
	q.executed.Store(true)
	q.state.Store(int32(StateCompleted))
}

// ManhattanDistance returns, per axis, how far the new boxes stick out of the boxes
// the query was made for.
func (q *Query) ManhattanDistance(a, b cube.BBox) mgl32.Vec3 {
	return game.MaxVec3(game.Protrusion(a, q.a), game.Protrusion(b, q.b))
}

func withinTolerance(distance mgl32.Vec3, tolerance float32) bool {
	return tolerance >= distance[0] && tolerance >= distance[1] && tolerance >= distance[2]
}
