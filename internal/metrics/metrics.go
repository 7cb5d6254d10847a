// Package metrics exposes scheduler counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a timer firing.
const (
	OutcomePublished    = "published"
	OutcomeOutOfFrame   = "out_of_time_frame"
	OutcomeEmpty        = "empty"
	OutcomeNotQueueable = "not_queueable"
	OutcomeError        = "error"
)

type Metrics struct {
	registry  *prometheus.Registry
	published *prometheus.CounterVec
	runs      *prometheus.CounterVec
	scheduled *prometheus.CounterVec
}

// New builds a registry with the runtime collectors and the queue counters.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ptq_published_posts_total",
				Help: "Posts published from the queue",
			},
			[]string{"post_type"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ptq_scheduler_runs_total",
				Help: "Timer firings by outcome",
			},
			[]string{"post_type", "outcome"},
		),
		scheduled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ptq_timers_scheduled_total",
				Help: "Timers created or recreated",
			},
			[]string{"post_type"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.published, m.runs, m.scheduled,
	)
	return m
}

func (m *Metrics) Published(postType string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(postType).Inc()
}

func (m *Metrics) Run(postType, outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(postType, outcome).Inc()
}

func (m *Metrics) Scheduled(postType string) {
	if m == nil {
		return
	}
	m.scheduled.WithLabelValues(postType).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
