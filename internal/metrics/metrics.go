// Package metrics records engine and session activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/specialistvlad/stitchgrid/internal/eval"
)

const namespace = "stitchgrid"

// Metrics implements engine.Observer. Each instance owns its own registry so
// several sessions (and tests) never collide.
type Metrics struct {
	registry *prometheus.Registry

	ticks         prometheus.Counter
	tickDuration  prometheus.Histogram
	evaluations   *prometheus.CounterVec
	effects       *prometheus.CounterVec
	effectResults *prometheus.CounterVec
}

// New creates a Metrics with Go runtime collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Graph ticks completed.",
		}),
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent evaluating one tick.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14), // 50us to ~400ms
		}),
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_evaluations_total",
			Help:      "Node evaluations by kind and whether the outputs changed.",
		}, []string{"kind", "result"}),
		effects: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effects_emitted_total",
			Help:      "Effects requested by node evaluations.",
		}, []string{"kind"}),
		effectResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effect_results_total",
			Help:      "Effect results by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

func (m *Metrics) NodeEvaluated(kind string, changed bool) {
	result := "unchanged"
	if changed {
		result = "changed"
	}
	m.evaluations.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) EffectEmitted(kind eval.EffectKind) {
	m.effects.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) TickCompleted(d time.Duration) {
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
}

// EffectResolved counts an effect result coming back from a handler.
// Results that could not be delivered to their node count as dropped.
func (m *Metrics) EffectResolved(res eval.EffectResult, delivered bool) {
	outcome := "ok"
	switch {
	case !delivered:
		outcome = "dropped"
	case res.Err != nil:
		outcome = "error"
	}
	m.effectResults.WithLabelValues(string(res.Effect.Kind), outcome).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
