package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the query collectors for one automaton.
type Metrics struct {
	registry  *prometheus.Registry
	queries   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	halted    prometheus.Counter
	activeSet prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on a private
// registry, so several engines can coexist in one process (and in tests).
func NewMetrics(automaton string) *Metrics {
	constLabels := prometheus.Labels{"automaton": automaton}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "thicket_queries_total",
				Help:        "Total number of membership queries by verdict",
				ConstLabels: constLabels,
			},
			[]string{"accepted"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "thicket_query_duration_seconds",
				Help:        "Duration of membership queries",
				ConstLabels: constLabels,
				Buckets:     prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"accepted"},
		),
		halted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "thicket_queries_halted_total",
			Help:        "Queries rejected early because no state remained active",
			ConstLabels: constLabels,
		}),
		activeSet: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "thicket_active_states",
			Help:        "Size of the active state set after each consumed symbol",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
	m.registry.MustRegister(m.queries, m.duration, m.halted, m.activeSet)
	return m
}

// Registry exposes the private registry, e.g. for promhttp.HandlerFor.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			m.activeSet.Observe(float64(e.States.Len()))
		},
		OnVerdict: func(ctx context.Context, e *domain.VerdictEvent) {
			label := strconv.FormatBool(e.Accepted)
			m.queries.WithLabelValues(label).Inc()
			m.duration.WithLabelValues(label).Observe(e.Duration.Seconds())
			if e.Halted {
				m.halted.Inc()
			}
		},
	}
}
