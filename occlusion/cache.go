package occlusion

import (
	"sync/atomic"
	"time"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/getsentry/sentry-go"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/oerror"
	"github.com/oomph-ac/enginetrace/settings"
	"github.com/oomph-ac/enginetrace/utils"
	"github.com/oomph-ac/enginetrace/worker"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// Cache answers occlusion queries, reusing the results of asynchronous tests made
// for nearly the same boxes in earlier calls.
type Cache struct {
	conf  settings.Occlusion
	world World
	pool  *worker.Pool
	owned bool
	log   *logrus.Logger
	stats *Stats

	queries map[int]*Query
	mu      deadlock.Mutex

	queue *utils.Queue[*Query]
	// running is set while a job owns the queue. Only the job started for the
	// current generation may pop from it.
	running    bool
	generation uint64
	queueMu    deadlock.Mutex

	suspended atomic.Int32
}

// NewCache creates a cache testing against w. Asynchronous tests run on pool; a nil
// pool gets one with conf.Workers goroutines that is closed by Close.
func NewCache(w World, conf settings.Occlusion, pool *worker.Pool, log *logrus.Logger) *Cache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	owned := pool == nil
	if owned {
		pool = worker.New(conf.Workers, log)
	}
	return &Cache{
		conf:    conf,
		world:   w,
		pool:    pool,
		owned:   owned,
		log:     log,
		stats:   &Stats{},
		queries: make(map[int]*Query),
		queue:   utils.NewQueue[*Query](64),
	}
}

// Stats returns the counters of the cache.
func (c *Cache) Stats() *Stats {
	return c.stats
}

// IsOccluded reports whether a is hidden from b. With asynchronous testing enabled
// and a non-negative key, a result tested earlier for boxes close enough to a and b
// may be returned instead, and a fresh test is queued for the next call with the
// same key.
func (c *Cache) IsOccluded(key int, a, b cube.BBox, shadow mgl32.Vec3) bool {
	c.stats.TotalCalls.Add(1)
	if c.conf.Async == 0 || key < 0 {
		return c.stats.registerOcclusion(c.IsFullyOccludedWithShadow(a, b, shadow, 0))
	}

	occluded, ok := c.lookup(key, a, b, shadow)
	c.spinUp()
	if ok {
		return occluded
	}
	// A fresh query was queued but has no result yet, so answer right away.
	return c.stats.registerOcclusion(c.IsFullyOccludedWithShadow(a, b, shadow, 0))
}

// lookup reuses the query stored under key if it can. Otherwise it replaces it with
// a new query and returns false.
func (c *Cache) lookup(key int, a, b cube.BBox, shadow mgl32.Vec3) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.queries[key]
	if !ok {
		c.stats.count(&c.stats.KeyNotFound, "key_not_found")
		q = newQuery(a, b, shadow, c.stats)
		c.enqueue(q)
		c.queries[key] = q
		return false, false
	}

	distance := q.ManhattanDistance(a, b)
	if withinTolerance(distance, c.conf.MoveTolerance) {
		if q.Completed() {
			occluded := c.stats.registerOcclusion(q.Result())
			if withinTolerance(distance, c.conf.Jitter) {
				c.stats.count(&c.stats.WithinJitter, "within_jitter")
				return occluded, true
			}

			c.stats.count(&c.stats.NormalReuse, "normal_reuse")
			c.stats.TotalLatency.Add(int64(q.latency))
			if q.rcpThroughput != 0 {
				c.stats.TotalRcpThroughput.Add(int64(q.rcpThroughput))
			} else {
				c.stats.QueriesCancelled.Add(1)
			}
			c.stats.addInFlight(1)
			q.init(a, b, shadow)
			c.enqueue(q)
			return occluded, true
		}
		c.stats.count(&c.stats.NotCompletedInTime, "not_completed_in_time")
	} else {
		c.stats.count(&c.stats.MovedMoreThanTolerance, "moved_more_than_tolerance")
	}

	q.Cancel()
	q.release()

	q = newQuery(a, b, shadow, c.stats)
	c.enqueue(q)
	c.queries[key] = q
	return false, false
}

// enqueue adds q to the queue, holding a reference for it. The queue is picked up by
// the next spinUp.
func (c *Cache) enqueue(q *Query) {
	q.acquire()

	c.queueMu.Lock()
	c.queue.Push(q)
	c.queueMu.Unlock()
}

// spinUp starts a job if queries are waiting and no job is draining the queue. It
// never waits for the pool: if no worker can take the job, the queries stay queued
// for the next call.
func (c *Cache) spinUp() {
	if c.suspended.Load() != 0 && c.conf.Async < 2 {
		return
	}

	c.queueMu.Lock()
	if c.running || c.queue.Len() == 0 {
		c.queueMu.Unlock()
		return
	}
	c.running = true
	c.generation++
	gen := c.generation
	c.queueMu.Unlock()

	c.stats.Jobs.Add(1)
	c.stats.JobsInFlight.Add(1)
	c.stats.count(&c.stats.JobRestarts, "job_restart")

	if err := c.pool.TrySubmit(func() { c.drain(gen) }); err != nil {
		c.log.Debugf("occlusion: job not started: %v", err)
		c.stopJob(gen)
		c.stats.JobsInFlight.Add(-1)
	}
}

// stopJob marks the job of generation gen as no longer running. It is a no-op if the
// queue has moved on to another generation.
func (c *Cache) stopJob(gen uint64) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if c.generation == gen && c.running {
		c.running = false
		c.stats.Jobs.Add(-1)
	}
}

// drain tests queued queries until the queue is empty or it is flushed.
func (c *Cache) drain(gen uint64) {
	defer c.stats.JobsInFlight.Add(-1)
	for {
		c.queueMu.Lock()
		if c.generation != gen {
			c.queueMu.Unlock()
			return
		}
		q, ok := c.queue.Pop()
		if !ok {
			c.running = false
			c.stats.Jobs.Add(-1)
			c.queueMu.Unlock()
			return
		}
		c.queueMu.Unlock()

		q.execute(c.testAsync)
		q.release()
	}
}

// testAsync is the test run by jobs. A panic is reported and answered with "not
// occluded" so the query still completes.
func (c *Cache) testAsync(a, b cube.BBox, shadow mgl32.Vec3) (occluded bool) {
	defer func() {
		if err := recover(); err != nil {
			hub := sentry.CurrentHub().Clone()
			hub.Recover(oerror.New("occlusion test crashed: %v", err))
			hub.Flush(time.Second * 5)
			c.log.Errorf("occlusion test crashed: %v", err)
			occluded = false
		}
	}()
	return c.IsFullyOccludedWithShadow(a, b, shadow, c.conf.MoveTolerance)
}

// Suspend stops new jobs from being started until the matching Resume. Calls nest.
func (c *Cache) Suspend() {
	c.suspended.Add(1)
}

// Resume undoes a Suspend. Once nothing is suspended any more, queued queries are
// picked up.
func (c *Cache) Resume() {
	if c.suspended.Add(-1) != 0 {
		return
	}
	c.spinUp()
}

// Flush drops every queued query and every cached result. A job that is running
// finishes the query it holds and stops.
func (c *Cache) Flush() {
	c.queueMu.Lock()
	for {
		q, ok := c.queue.Pop()
		if !ok {
			break
		}
		q.release()
	}
	if c.running {
		c.running = false
		c.stats.Jobs.Add(-1)
	}
	c.generation++
	c.queueMu.Unlock()

	c.mu.Lock()
	for key, q := range c.queries {
		q.Cancel()
		q.release()
		delete(c.queries, key)
	}
	c.mu.Unlock()
}

// Len returns the number of keys with a cached query.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queries)
}

// Pending returns the number of queries waiting in the queue.
func (c *Cache) Pending() int {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return c.queue.Len()
}

// Close flushes the cache. If the cache created its own pool, it is closed and
// running jobs are waited for.
func (c *Cache) Close() {
	c.Flush()
	if c.owned {
		c.pool.Close()
	}
}
