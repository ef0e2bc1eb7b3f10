package occlusion

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/settings"
	"github.com/oomph-ac/enginetrace/worker"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type mockWorld struct {
	occluded atomic.Bool
	panics   atomic.Bool
	calls    atomic.Int32

	sky       bool
	landing   cube.BBox
	landingOK bool

	// gate, when set, holds every test until it is closed. entered is signaled as a
	// test reaches the gate.
	gate    chan struct{}
	entered chan struct{}

	mu   sync.Mutex
	last cube.BBox
}

func (w *mockWorld) BoxLeaves(_ cube.BBox, dst []int) []int {
	return append(dst, 1, 2, 3)
}

func (w *mockWorld) LeafIsSky(l int) bool {
	return w.sky && l == 2
}

func (w *mockWorld) IsFullyOccluded(a, _ cube.BBox) bool {
	if w.panics.Load() {
		panic("broken world")
	}
	w.calls.Add(1)
	if w.gate != nil {
		w.entered <- struct{}{}
		<-w.gate
	}
	w.mu.Lock()
	w.last = a
	w.mu.Unlock()
	return w.occluded.Load()
}

func (w *mockWorld) OcclusionSweep(cube.BBox, mgl32.Vec3) (cube.BBox, bool) {
	return w.landing, w.landingOK
}

func (w *mockWorld) lastBox() cube.BBox {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

var (
	boxA = cube.Box(0, 0, 0, 2, 2, 2)
	boxB = cube.Box(100, 0, 0, 102, 2, 2)
)

func newTestCache(t *testing.T, async int) (*Cache, *mockWorld, *test.Hook) {
	log, hook := test.NewNullLogger()
	conf := settings.DefaultSettings().Occlusion
	conf.Async = async
	conf.Workers = 1

	w := &mockWorld{}
	w.occluded.Store(true)
	c := NewCache(w, conf, nil, log)
	t.Cleanup(c.Close)
	return c, w, hook
}

func (c *Cache) query(key int) *Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queries[key]
}

// push queues a query under key without answering it synchronously, so that every
// test of the world is made by a job.
func (c *Cache) push(key int) *Query {
	q := newQuery(boxA, boxB, mgl32.Vec3{}, c.stats)
	c.mu.Lock()
	c.queries[key] = q
	c.enqueue(q)
	c.mu.Unlock()
	c.spinUp()
	return q
}

func waitCompleted(t *testing.T, q *Query) {
	require.Eventually(t, q.Completed, time.Second, time.Millisecond)
}

func TestIsOccludedSync(t *testing.T) {
	c, w, _ := newTestCache(t, 0)

	require.True(t, c.IsOccluded(1, boxA, boxB, mgl32.Vec3{}))
	w.occluded.Store(false)
	require.False(t, c.IsOccluded(1, boxA, boxB, mgl32.Vec3{}))

	require.Equal(t, 0, c.Len())
	require.Equal(t, uint64(2), c.Stats().TotalCalls.Load())
	require.Equal(t, uint64(1), c.Stats().TotalOcclusions.Load())
}

func TestIsOccludedNegativeKey(t *testing.T) {
	c, w, _ := newTestCache(t, 1)

	require.True(t, c.IsOccluded(-1, boxA, boxB, mgl32.Vec3{}))
	require.Equal(t, 0, c.Len())
	require.Equal(t, int32(1), w.calls.Load())
}

func TestIsOccludedReuse(t *testing.T) {
	c, w, _ := newTestCache(t, 1)
	stats := c.Stats()

	require.True(t, c.IsOccluded(1, boxA, boxB, mgl32.Vec3{}))
	require.Equal(t, uint64(1), stats.KeyNotFound.Load())
	require.Equal(t, 1, c.Len())

	first := c.query(1)
	waitCompleted(t, first)
	require.True(t, first.Result())

	// The world changes, but the answer for the same boxes comes from the query.
	w.occluded.Store(false)
	require.True(t, c.IsOccluded(1, boxA, boxB, mgl32.Vec3{}))
	require.Equal(t, uint64(1), stats.WithinJitter.Load())

	moved := boxA.Translate(mgl32.Vec3{5, 0, 0})
	require.True(t, c.IsOccluded(1, moved, boxB, mgl32.Vec3{}))
	require.Equal(t, uint64(1), stats.NormalReuse.Load())
	require.Same(t, first, c.query(1), "reused queries are requeued in place")

	waitCompleted(t, first)
	require.False(t, first.Result())

	far := boxA.Translate(mgl32.Vec3{25, 0, 0})
	require.False(t, c.IsOccluded(1, far, boxB, mgl32.Vec3{}))
	require.Equal(t, uint64(1), stats.MovedMoreThanTolerance.Load())
	second := c.query(1)
	require.NotSame(t, first, second)

	waitCompleted(t, second)
	require.Eventually(t, func() bool {
		return stats.Queries.Load() == 1 && stats.QueriesInFlight.Load() == 0 && second.Refs() == 1
	}, time.Second, time.Millisecond)
	require.GreaterOrEqual(t, stats.JobRestarts.Load(), uint64(1))
}

func TestIsOccludedNotCompletedInTime(t *testing.T) {
	c, w, _ := newTestCache(t, 1)
	stats := c.Stats()

	c.Suspend()
	c.IsOccluded(1, boxA, boxB, mgl32.Vec3{})
	old := c.query(1)
	require.Equal(t, StatePending, old.State())
	require.Equal(t, int32(2), old.Refs())
	require.Equal(t, 1, c.Pending())

	c.IsOccluded(1, boxA, boxB, mgl32.Vec3{})
	require.Equal(t, uint64(1), stats.NotCompletedInTime.Load())
	require.Equal(t, StateCanceled, old.State())
	require.Equal(t, int32(1), old.Refs(), "only the queue holds the canceled query")
	require.Equal(t, 2, c.Pending())

	fresh := c.query(1)
	require.NotSame(t, old, fresh)

	c.Resume()
	waitCompleted(t, fresh)
	waitCompleted(t, old)
	require.False(t, old.Result())
	require.True(t, fresh.Result())

	require.Eventually(t, func() bool {
		return c.Pending() == 0 && stats.Queries.Load() == 1 && stats.QueriesInFlight.Load() == 0
	}, time.Second, time.Millisecond)
	// Two synchronous answers and one job test. The canceled query is never tested.
	require.Equal(t, int32(3), w.calls.Load())
}

func TestSuspendedJobsWithEagerAsync(t *testing.T) {
	c, _, _ := newTestCache(t, 2)

	c.Suspend()
	defer c.Resume()
	c.IsOccluded(1, boxA, boxB, mgl32.Vec3{})
	waitCompleted(t, c.query(1))
}

func TestFlush(t *testing.T) {
	c, _, _ := newTestCache(t, 1)
	stats := c.Stats()

	c.Suspend()
	for key := 0; key < 3; key++ {
		c.IsOccluded(key, boxA, boxB, mgl32.Vec3{})
	}
	require.Equal(t, 3, c.Len())
	require.Equal(t, 3, c.Pending())
	require.Equal(t, int64(3), stats.Queries.Load())
	require.Equal(t, int64(3), stats.QueriesInFlight.Load())

	c.Flush()
	require.Equal(t, 0, c.Len())
	require.Equal(t, 0, c.Pending())
	require.Equal(t, int64(0), stats.Queries.Load())
	require.Equal(t, int64(0), stats.QueriesInFlight.Load())
	c.Resume()
}

func TestIsOccludedDoesNotWaitForPool(t *testing.T) {
	log, _ := test.NewNullLogger()
	pool := worker.New(1, log)

	started, release := make(chan struct{}), make(chan struct{})
	require.NoError(t, pool.TrySubmit(func() {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, pool.TrySubmit(func() {}))

	conf := settings.DefaultSettings().Occlusion
	conf.Async = 1
	w := &mockWorld{}
	w.occluded.Store(true)
	c := NewCache(w, conf, pool, log)

	done := make(chan bool, 1)
	go func() {
		done <- c.IsOccluded(1, boxA, boxB, mgl32.Vec3{})
	}()
	select {
	case occluded := <-done:
		require.True(t, occluded)
	case <-time.After(time.Second):
		t.Fatal("IsOccluded waited for a busy pool")
	}
	require.Equal(t, 1, c.Pending(), "the query stays queued")
	require.Equal(t, int64(0), c.Stats().Jobs.Load())
	require.Equal(t, int64(0), c.Stats().JobsInFlight.Load())

	close(release)
	q := c.query(1)
	require.Eventually(t, func() bool {
		c.spinUp()
		return q.Completed()
	}, time.Second, time.Millisecond)
	require.True(t, q.Result())

	c.Close()
	pool.Close()
}

func TestFlushStopsRunningJob(t *testing.T) {
	log, _ := test.NewNullLogger()
	conf := settings.DefaultSettings().Occlusion
	conf.Async = 1
	conf.Workers = 2

	w := &mockWorld{gate: make(chan struct{}), entered: make(chan struct{}, 4)}
	w.occluded.Store(true)
	c := NewCache(w, conf, nil, log)
	stats := c.Stats()

	first := c.push(1)
	<-w.entered
	require.Equal(t, StateRunning, first.State())

	dropped := c.push(2)
	require.Equal(t, 1, c.Pending(), "one job drains the queue")

	c.Flush()
	require.Equal(t, 0, c.Pending())
	require.Equal(t, StateCanceled, dropped.State())

	second := c.push(3)
	<-w.entered
	require.Equal(t, int64(1), stats.Jobs.Load())
	require.Equal(t, int64(2), stats.JobsInFlight.Load(), "the flushed job still finishes its query")

	close(w.gate)
	waitCompleted(t, first)
	waitCompleted(t, second)
	require.Eventually(t, func() bool {
		return stats.Jobs.Load() == 0 && stats.JobsInFlight.Load() == 0
	}, time.Second, time.Millisecond)
	require.Equal(t, int32(2), w.calls.Load(), "the flushed query is never tested")
	require.Equal(t, StateCanceled, dropped.State())

	c.Close()
	require.Equal(t, int64(0), stats.Queries.Load())
	require.Equal(t, int64(0), stats.QueriesInFlight.Load())
}

func TestConcurrentUse(t *testing.T) {
	c, _, _ := newTestCache(t, 1)
	stats := c.Stats()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 2000; j++ {
				a := boxA.Translate(mgl32.Vec3{float32(j%3) * 10, 0, 0})
				c.IsOccluded((i*31+j)%16, a, boxB, mgl32.Vec3{})
			}
		}(i)
	}

	var chaos sync.WaitGroup
	chaos.Add(1)
	go func() {
		defer chaos.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			c.Suspend()
			c.Flush()
			c.Resume()
			time.Sleep(100 * time.Microsecond)
		}
	}()

	wg.Wait()
	close(stop)
	chaos.Wait()

	c.Flush()
	require.Eventually(t, func() bool {
		return stats.JobsInFlight.Load() == 0 && stats.Queries.Load() == 0 && stats.QueriesInFlight.Load() == 0
	}, time.Second, time.Millisecond)
	require.Equal(t, int64(0), stats.Jobs.Load())
	require.Equal(t, uint64(8*2000), stats.TotalCalls.Load())
}

func TestIsFullyOccludedWithShadow(t *testing.T) {
	t.Run("no shadow grows the box for movement", func(t *testing.T) {
		c, w, _ := newTestCache(t, 0)
		c.IsFullyOccludedWithShadow(boxA, boxB, mgl32.Vec3{}, 0)

		bb := w.lastBox()
		require.Equal(t, mgl32.Vec3{-36, -36, 0}, bb.Min())
		require.Equal(t, mgl32.Vec3{38, 38, 14}, bb.Max())
	})

	t.Run("shadow outside of the sky is culled", func(t *testing.T) {
		c, w, _ := newTestCache(t, 0)
		c.IsFullyOccludedWithShadow(boxA, boxB, mgl32.Vec3{0, 0, -100}, 0)

		require.Equal(t, uint64(1), c.Stats().VisShadowCullCalls.Load())
		require.Equal(t, uint64(1), c.Stats().VisShadowCullsSucceeded.Load())
		require.Equal(t, uint64(3), c.Stats().VisLeavesChecked.Load())
		require.Equal(t, mgl32.Vec3{-36, -36, 0}, w.lastBox().Min())
	})

	t.Run("shadow is added to the box", func(t *testing.T) {
		c, w, _ := newTestCache(t, 0)
		w.sky = true
		w.landing, w.landingOK = cube.Box(-50, 0, -100, -48, 2, -98), true

		require.True(t, c.IsFullyOccludedWithShadow(boxA, boxB, mgl32.Vec3{-50, 0, -100}, 0))
		require.Equal(t, uint64(2), c.Stats().VisLeavesChecked.Load())
		require.Equal(t, uint64(3), c.Stats().VisLeavesCollected.Load())

		bb := w.lastBox()
		require.Equal(t, mgl32.Vec3{-50, -36, -100}, bb.Min())
		require.Equal(t, mgl32.Vec3{38, 38, 14}, bb.Max())
	})

	t.Run("shadow that lands nowhere is visible", func(t *testing.T) {
		c, w, _ := newTestCache(t, 0)
		w.sky = true

		require.False(t, c.IsFullyOccludedWithShadow(boxA, boxB, mgl32.Vec3{0, 0, -100}, 0))
		require.Equal(t, int32(0), w.calls.Load())
	})

	t.Run("distant shadows are ignored", func(t *testing.T) {
		c, w, _ := newTestCache(t, 0)
		w.sky = true

		far := boxB.Translate(mgl32.Vec3{5000, 0, 0})
		require.True(t, c.IsFullyOccludedWithShadow(boxA, far, mgl32.Vec3{0, 0, -100}, 0))
		require.Equal(t, uint64(0), c.Stats().VisShadowCullCalls.Load())
	})
}

func TestAsyncTestRecovers(t *testing.T) {
	c, w, hook := newTestCache(t, 1)
	w.panics.Store(true)

	require.False(t, c.testAsync(boxA, boxB, mgl32.Vec3{}))
	require.NotNil(t, hook.LastEntry())
	require.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestStats(t *testing.T) {
	c, _, hook := newTestCache(t, 0)
	for i := 0; i < 4; i++ {
		c.IsOccluded(i, boxA, boxB, mgl32.Vec3{})
	}

	fields := c.Stats().Fields()
	require.Equal(t, 19, fields.Len())
	require.Equal(t, "total_calls", fields.Keys()[0])
	calls, _ := fields.Get("total_calls")
	require.Equal(t, uint64(4), calls)

	c.Stats().Dump(c.log, false)
	require.NotEmpty(t, hook.AllEntries())
	require.Equal(t, logrus.InfoLevel, hook.AllEntries()[0].Level)

	c.Stats().Queries.Store(7)
	c.Stats().Reset()
	require.Equal(t, uint64(0), c.Stats().TotalCalls.Load())
	require.Equal(t, int64(7), c.Stats().Queries.Load())
}

func TestState(t *testing.T) {
	require.Equal(t, "pending", StatePending.String())
	require.Equal(t, "canceled", StateCanceled.String())
	require.Equal(t, "unknown", State(9).String())

	require.True(t, withinTolerance(mgl32.Vec3{1, -3, 2}, 2))
	require.False(t, withinTolerance(mgl32.Vec3{1, 2.5, 0}, 2))
}
