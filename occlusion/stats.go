package occlusion

import (
	"sync/atomic"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

const eventLabel = "event"

var (
	occlusionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enginetrace_occlusion_events",
		Help: "Occlusion cache lookups by outcome.",
	}, []string{
		eventLabel,
	})

	occlusionQueries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "enginetrace_occlusion_queries",
		Help: "The number of occlusion queries alive.",
	})

	occlusionQueriesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "enginetrace_occlusion_queries_in_flight",
		Help: "The number of occlusion queries waiting for a result.",
	})
)

func instrumentEvent(event string) {
	occlusionEvents.With(prometheus.Labels{
		eventLabel: event,
	}).Inc()
}

// Stats are the counters kept by an occlusion cache.
type Stats struct {
	TotalCalls             atomic.Uint64
	TotalOcclusions        atomic.Uint64
	NormalReuse            atomic.Uint64
	QueriesCancelled       atomic.Uint64
	WithinJitter           atomic.Uint64
	KeyNotFound            atomic.Uint64
	MovedMoreThanTolerance atomic.Uint64
	NotCompletedInTime     atomic.Uint64

	// TotalLatency is the time between queueing and completing, summed over every
	// reused query.
	TotalLatency atomic.Int64
	// TotalRcpThroughput is the time spent testing, summed over every reused query.
	TotalRcpThroughput atomic.Int64

	JobRestarts atomic.Uint64

	VisLeavesCollected      atomic.Uint64
	VisLeavesChecked        atomic.Uint64
	VisShadowCullCalls      atomic.Uint64
	VisShadowCullsSucceeded atomic.Uint64

	Queries         atomic.Int64
	QueriesInFlight atomic.Int64
	Jobs            atomic.Int64
	JobsInFlight    atomic.Int64
}

func (s *Stats) registerOcclusion(occluded bool) bool {
	if occluded {
		s.TotalOcclusions.Add(1)
		instrumentEvent("occluded")
	}
	return occluded
}

func (s *Stats) count(c *atomic.Uint64, event string) {
	c.Add(1)
	instrumentEvent(event)
}

func (s *Stats) addQueries(n int64) {
	s.Queries.Add(n)
	occlusionQueries.Add(float64(n))
}

func (s *Stats) addInFlight(n int64) {
	s.QueriesInFlight.Add(n)
	occlusionQueriesInFlight.Add(float64(n))
}

// Reset clears every counter. The gauges are left alone.
func (s *Stats) Reset() {
	for _, c := range []*atomic.Uint64{
		&s.TotalCalls, &s.TotalOcclusions, &s.NormalReuse, &s.QueriesCancelled,
		&s.WithinJitter, &s.KeyNotFound, &s.MovedMoreThanTolerance, &s.NotCompletedInTime,
		&s.JobRestarts, &s.VisLeavesCollected, &s.VisLeavesChecked,
		&s.VisShadowCullCalls, &s.VisShadowCullsSucceeded,
	} {
		c.Store(0)
	}
	s.TotalLatency.Store(0)
	s.TotalRcpThroughput.Store(0)
}

// Fields returns a snapshot of every counter and gauge, in a stable order.
func (s *Stats) Fields() *orderedmap.OrderedMap[string, any] {
	m := orderedmap.NewOrderedMap[string, any]()
	m.Set("total_calls", s.TotalCalls.Load())
	m.Set("total_occlusions", s.TotalOcclusions.Load())
	m.Set("normal_reuse", s.NormalReuse.Load())
	m.Set("queries_cancelled", s.QueriesCancelled.Load())
	m.Set("within_jitter", s.WithinJitter.Load())
	m.Set("key_not_found", s.KeyNotFound.Load())
	m.Set("moved_more_than_tolerance", s.MovedMoreThanTolerance.Load())
	m.Set("not_completed_in_time", s.NotCompletedInTime.Load())
	m.Set("total_latency", time.Duration(s.TotalLatency.Load()))
	m.Set("total_rcp_throughput", time.Duration(s.TotalRcpThroughput.Load()))
	m.Set("job_restarts", s.JobRestarts.Load())
	m.Set("vis_leaves_collected", s.VisLeavesCollected.Load())
	m.Set("vis_leaves_checked", s.VisLeavesChecked.Load())
	m.Set("vis_shadow_cull_calls", s.VisShadowCullCalls.Load())
	m.Set("vis_shadow_culls_succeeded", s.VisShadowCullsSucceeded.Load())
	m.Set("queries", s.Queries.Load())
	m.Set("queries_in_flight", s.QueriesInFlight.Load())
	m.Set("jobs", s.Jobs.Load())
	m.Set("jobs_in_flight", s.JobsInFlight.Load())
	return m
}

func percent(n, of uint64) float64 {
	if of == 0 {
		return 100
	}
	return float64(n) * 100 / float64(of)
}

// Dump logs a summary of the counters. Unless jitter is set, calls answered within
// the jitter margin are left out of the per call rates.
func (s *Stats) Dump(log *logrus.Logger, jitter bool) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	total := s.TotalCalls.Load()
	withinJitter := s.WithinJitter.Load()
	adjusted := total
	if !jitter {
		adjusted -= withinJitter
	}

	log.Infof("%d occlusion calls. %d (%.1f%%) calls within jitter. %d/%d queries, %d/%d jobs in flight.",
		total, withinJitter, percent(withinJitter, total),
		s.QueriesInFlight.Load(), s.Queries.Load(), s.JobsInFlight.Load(), s.Jobs.Load())
	if total != 0 {
		occlusions := s.TotalOcclusions.Load()
		log.Infof("rates: %d (%.1f%% of %d) occlusions", occlusions, percent(occlusions, total), total)
	}

	normalReuse := s.NormalReuse.Load()
	if adjusted != 0 {
		log.Infof("%d (%.1f%% of %d) normal query reuses", normalReuse, percent(normalReuse, adjusted), adjusted)
		if n := s.VisLeavesCollected.Load(); n != 0 {
			log.Infof("%d (%.1f per call) vis leaves collected", n, float64(n)/float64(adjusted))
		} else {
			log.Info("no vis leaves collected")
		}
		if n := s.VisLeavesChecked.Load(); n != 0 {
			log.Infof("%d (%.1f per call) vis leaves checked", n, float64(n)/float64(adjusted))
		} else {
			log.Info("no vis leaves checked")
		}
		if calls := s.VisShadowCullCalls.Load(); calls != 0 {
			culled := s.VisShadowCullsSucceeded.Load()
			log.Infof("%d (%.1f%% of %d) vis shadows culled", culled, percent(culled, calls), calls)
		} else {
			log.Info("no vis shadows culled")
		}
		if withinJitter != 0 {
			log.Infof("%d (%.1f%% of %d) within-jitter reuses", withinJitter, percent(withinJitter, total), total)
		} else {
			log.Info("no within-jitter reuses")
		}
		queuePoints := normalReuse + s.KeyNotFound.Load() + s.MovedMoreThanTolerance.Load() + s.NotCompletedInTime.Load()
		if restarts := s.JobRestarts.Load(); restarts != 0 && queuePoints >= restarts {
			log.Infof("%d (%.1f queued queries per) job restarts", restarts, float64(queuePoints)/float64(restarts))
		} else {
			log.Info("no jobs restarted")
		}
	} else {
		log.Info("no untrivial occlusion calls registered")
	}

	keyNotFound, moved, late := s.KeyNotFound.Load(), s.MovedMoreThanTolerance.Load(), s.NotCompletedInTime.Load()
	if keyNotFound|moved|late != 0 {
		log.Infof("events: %d key not found", keyNotFound)
		if moved != 0 {
			log.Infof("%d (%.1f%%) moved more than tolerance", moved, percent(moved, withinJitter+moved+normalReuse+late))
		} else {
			log.Info("none moved more than tolerance")
		}
		if late != 0 {
			log.Infof("%d not completed on time", late)
		} else {
			log.Info("all queries completed on time")
		}
	} else {
		log.Info("no events registered")
	}

	if normalReuse != 0 {
		log.Infof("query latency: %v", time.Duration(s.TotalLatency.Load()/int64(normalReuse)))
	} else {
		log.Info("no query latency data")
	}
	if cancelled := s.QueriesCancelled.Load(); normalReuse > cancelled {
		log.Infof("query reciprocal throughput: %v (%d cancels)",
			time.Duration(s.TotalRcpThroughput.Load()/int64(normalReuse-cancelled)), cancelled)
	}
}
