package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stat is a counter kept by the engine.
type Stat int

const (
	StatTraceRay Stat = iota
	StatPointContents
	StatEnumerate

	statCount
)

func (s Stat) String() string {
	switch s {
	case StatTraceRay:
		return "trace_ray"
	case StatPointContents:
		return "point_contents"
	case StatEnumerate:
		return "enumerate"
	}
	return "unknown"
}

const statLabel = "stat"

var engineQueries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "enginetrace_queries",
	Help: "The number of trace, point contents and enumeration queries answered.",
}, []string{
	statLabel,
})

func instrumentQuery(s Stat) {
	engineQueries.With(prometheus.Labels{
		statLabel: s.String(),
	}).Inc()
}

func (e *Engine) incStat(s Stat) {
	e.stats[s].Add(1)
	instrumentQuery(s)
}

// GetStat returns the value of a counter, resetting it if clear is set. Unknown
// counters read as 0.
func (e *Engine) GetStat(s Stat, clear bool) uint64 {
	if s < 0 || s >= statCount {
		return 0
	}
	if clear {
		return e.stats[s].Swap(0)
	}
	return e.stats[s].Load()
}
