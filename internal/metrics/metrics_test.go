package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/shenikar/border_conflict_monitor/internal/models"
)

func TestMetrics_Observe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRun(models.SourceLive, time.Now())
	m.ObserveRun(models.SourceDegraded, time.Now())
	m.ObserveRun(models.SourceLive, time.Now())
	m.ObserveSearch("newsapi", nil)
	m.ObserveSearch("newsapi", errors.New("boom"))
	m.ObserveModel(nil)
	m.SetArticleCounts(12, 7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pipelineRuns.WithLabelValues("live")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pipelineRuns.WithLabelValues("degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchRequests.WithLabelValues("newsapi", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelRequests.WithLabelValues("ok")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.articlesFetched))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.articlesRelevant))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRun(models.SourceQuiet, time.Now())
		m.ObserveSearch("rss", nil)
		m.ObserveModel(errors.New("x"))
		m.SetArticleCounts(1, 1)
	})
}
