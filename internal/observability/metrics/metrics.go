package metrics

import "github.com/prometheus/client_golang/prometheus"

// FacadeMetrics exposes counters/histograms for the remote-access facade.
type FacadeMetrics struct {
	callsTotal    *prometheus.CounterVec
	callLatency   *prometheus.HistogramVec
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	coalesceJoins prometheus.Counter
}

func NewFacadeMetrics(reg prometheus.Registerer) *FacadeMetrics {
	m := &FacadeMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medassist",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total facade calls to the hosted backend",
		}, []string{"op", "status"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medassist",
			Subsystem: "backend",
			Name:      "call_latency_seconds",
			Help:      "Latency of facade calls to the hosted backend",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medassist",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Result cache hits by resource",
		}, []string{"resource"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medassist",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Result cache misses by resource",
		}, []string{"resource"}),
		coalesceJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medassist",
			Subsystem: "cache",
			Name:      "coalesce_joins_total",
			Help:      "Callers attached to an already-open coalesced flight",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.callLatency, m.cacheHits, m.cacheMisses, m.coalesceJoins)
	return m
}

func (m *FacadeMetrics) ObserveCall(op, status string, seconds float64) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(op, status).Inc()
	m.callLatency.WithLabelValues(op).Observe(seconds)
}

func (m *FacadeMetrics) ObserveCacheHit(resource string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(resource).Inc()
}

func (m *FacadeMetrics) ObserveCacheMiss(resource string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(resource).Inc()
}

func (m *FacadeMetrics) ObserveCoalesceJoin() {
	if m == nil {
		return
	}
	m.coalesceJoins.Inc()
}
