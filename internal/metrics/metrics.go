// Package metrics регистрирует метрики Prometheus конвейера.
// Все методы безопасны для вызова на nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shenikar/border_conflict_monitor/internal/models"
)

const namespace = "conflict_monitor"

type Metrics struct {
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	articlesFetched  prometheus.Gauge
	articlesRelevant prometheus.Gauge
	searchRequests   *prometheus.CounterVec
	modelRequests    *prometheus.CounterVec
	lastSnapshotTS   *prometheus.GaugeVec
}

// New создает метрики и регистрирует их в reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Number of pipeline runs by snapshot source",
		}, []string{"source"}),
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent in one pipeline run",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		articlesFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "articles_fetched",
			Help:      "Unique articles fetched in the last run",
		}),
		articlesRelevant: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "articles_relevant",
			Help:      "Articles kept by the relevance filter in the last run",
		}),
		searchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search requests by provider and status",
		}, []string{"provider", "status"}),
		modelRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Model completions by status",
		}, []string{"status"}),
		lastSnapshotTS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_snapshot_timestamp_seconds",
			Help:      "Unix timestamp of the last snapshot by source",
		}, []string{"source"}),
	}

	reg.MustRegister(
		m.pipelineRuns, m.pipelineDuration,
		m.articlesFetched, m.articlesRelevant,
		m.searchRequests, m.modelRequests, m.lastSnapshotTS,
	)
	return m
}

func (m *Metrics) ObserveRun(source models.SnapshotSource, started time.Time) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(string(source)).Inc()
	m.pipelineDuration.Observe(time.Since(started).Seconds())
	m.lastSnapshotTS.WithLabelValues(string(source)).Set(float64(time.Now().Unix()))
}

func (m *Metrics) SetArticleCounts(fetched, relevant int) {
	if m == nil {
		return
	}
	m.articlesFetched.Set(float64(fetched))
	m.articlesRelevant.Set(float64(relevant))
}

func (m *Metrics) ObserveSearch(provider string, err error) {
	if m == nil {
		return
	}
	m.searchRequests.WithLabelValues(provider, status(err)).Inc()
}

func (m *Metrics) ObserveModel(err error) {
	if m == nil {
		return
	}
	m.modelRequests.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
