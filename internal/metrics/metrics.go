// Package metrics exposes the engine's Prometheus counters and histograms.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "werkstudent_strategy"

// Metrics holds every collector on its own registry
type Metrics struct {
	registry *prometheus.Registry

	analyses      *prometheus.CounterVec
	degradations  *prometheus.CounterVec
	recoveryTiers *prometheus.CounterVec
	links         *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	analyzeTime   prometheus.Histogram
}

// New creates the collectors on a fresh registry, including Go runtime and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Strategy analyses by outcome (fresh, cached, rejected).",
		}, []string{"outcome"}),
		degradations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degradations_total",
			Help:      "Internal failures absorbed by the engine, by kind.",
		}, []string{"kind"}),
		recoveryTiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovery_tier_total",
			Help:      "Winning recovery tier per model completion.",
		}, []string{"tier"}),
		links: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_total",
			Help:      "Resolved learning links by result (kept, substituted).",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		analyzeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analyze_duration_seconds",
			Help:      "Wall time of Analyze calls.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.analyses, m.degradations, m.recoveryTiers, m.links, m.httpRequests, m.analyzeTime,
	)
	return m
}

// Analysis counts one Analyze outcome
func (m *Metrics) Analysis(outcome string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(outcome).Inc()
}

// Degradation counts one absorbed failure of the given kind
func (m *Metrics) Degradation(kind string) {
	if m == nil {
		return
	}
	m.degradations.WithLabelValues(kind).Inc()
}

// RecoveryTier counts the tier that produced an analysis
func (m *Metrics) RecoveryTier(tier string) {
	if m == nil {
		return
	}
	m.recoveryTiers.WithLabelValues(tier).Inc()
}

// Links adds kept and substituted link counts
func (m *Metrics) Links(kept, substituted int) {
	if m == nil {
		return
	}
	m.links.WithLabelValues("kept").Add(float64(kept))
	m.links.WithLabelValues("substituted").Add(float64(substituted))
}

// HTTPRequest counts one served request
func (m *Metrics) HTTPRequest(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// ObserveAnalyze records the duration of one Analyze call
func (m *Metrics) ObserveAnalyze(d time.Duration) {
	if m == nil {
		return
	}
	m.analyzeTime.Observe(d.Seconds())
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
