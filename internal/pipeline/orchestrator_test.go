package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/internal/pipeline/mocks"
	"github.com/shenikar/border_conflict_monitor/internal/taxonomy"
	"github.com/shenikar/border_conflict_monitor/pkg/logger"
)

var runNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

type orchestratorMocks struct {
	fetcher *mocks.MockArticleFetcher
	filter  *mocks.MockArticleFilter
	model   *mocks.MockModelClient
	store   *mocks.MockSnapshotReader
}

// newTestOrchestrator создает оркестратор с моками всех зависимостей
func newTestOrchestrator(t *testing.T) (*Orchestrator, orchestratorMocks) {
	ctrl := gomock.NewController(t)
	m := orchestratorMocks{
		fetcher: mocks.NewMockArticleFetcher(ctrl),
		filter:  mocks.NewMockArticleFilter(ctrl),
		model:   mocks.NewMockModelClient(ctrl),
		store:   mocks.NewMockSnapshotReader(ctrl),
	}
	opts := Options{
		MaxPromptChars:    20000,
		IncidentCap:       10,
		ReadIncidentLimit: 20,
		ReadArticleLimit:  10,
	}
	o := NewOrchestrator(m.fetcher, m.filter, m.model, m.store, taxonomy.Default(), opts, logger.NewDiscard(), nil)
	o.now = func() time.Time { return runNow }
	return o, m
}

func batch(n int) []models.Article {
	articles := make([]models.Article, 0, n)
	for i := 1; i <= n; i++ {
		articles = append(articles, models.Article{
			Title: fmt.Sprintf("Border shelling report %d", i),
			URL:   fmt.Sprintf("https://example.com/%d", i),
		})
	}
	return articles
}

func assertComplete(t *testing.T, snapshot *models.ConflictSnapshot) {
	t.Helper()
	names := taxonomy.Default().RegionNames()
	require.Len(t, snapshot.RegionStatuses, len(names))
	for i, st := range snapshot.RegionStatuses {
		assert.Equal(t, names[i], st.Name)
	}
}

func TestRunOnce_Live(t *testing.T) {
	o, m := newTestOrchestrator(t)
	ctx := context.Background()
	articles := batch(3)

	m.fetcher.EXPECT().Fetch(gomock.Any()).Return(articles).Times(1)
	m.filter.EXPECT().Filter(articles).Return(articles).Times(1)
	m.model.EXPECT().HealthCheck(gomock.Any()).Return(true).Times(1)
	m.model.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "[Article 3]")
			return "Sure!\n" + `{"states":[{"name":"Punjab","dangerLevel":"danger","description":"Shelling"}],` +
				`"attacks":[{"city":"Amritsar","state":"Punjab","description":"Drone strike","sourceArticle":2}]}`, nil
		}).
		Times(1)

	snapshot := o.RunOnce(ctx)

	assert.Equal(t, models.SourceLive, snapshot.Source)
	assert.Equal(t, runNow, snapshot.LastUpdated)
	assertComplete(t, snapshot)
	assert.Equal(t, []string{"Punjab"}, snapshot.RegionsWithLevel(models.DangerLevelDanger))
	require.Len(t, snapshot.Incidents, 1)
	assert.Equal(t, "https://example.com/2", snapshot.Incidents[0].SourceArticleURL)
	assert.Equal(t, articles, snapshot.Articles)
}

func TestRunOnce_ZeroArticlesIsQuiet(t *testing.T) {
	o, m := newTestOrchestrator(t)

	// Модель не должна вызываться: ожиданий на m.model нет
	m.fetcher.EXPECT().Fetch(gomock.Any()).Return(nil).Times(1)
	m.filter.EXPECT().Filter(gomock.Nil()).Return(nil).Times(1)

	snapshot := o.RunOnce(context.Background())

	assert.Equal(t, models.SourceQuiet, snapshot.Source)
	assertComplete(t, snapshot)
	assert.Len(t, snapshot.RegionsWithLevel(models.DangerLevelNeutral), len(snapshot.RegionStatuses))
	assert.Empty(t, snapshot.Incidents)
	assert.Equal(t, runNow, snapshot.LastUpdated)
}

func TestRunOnce_NothingRelevantIsQuiet(t *testing.T) {
	o, m := newTestOrchestrator(t)
	articles := batch(2)

	m.fetcher.EXPECT().Fetch(gomock.Any()).Return(articles)
	m.filter.EXPECT().Filter(articles).Return([]models.Article{})

	snapshot := o.RunOnce(context.Background())

	assert.Equal(t, models.SourceQuiet, snapshot.Source)
	assert.Empty(t, snapshot.Incidents)
}

func TestRunOnce_HealthCheckFailureDegrades(t *testing.T) {
	o, m := newTestOrchestrator(t)
	articles := batch(2)

	m.fetcher.EXPECT().Fetch(gomock.Any()).Return(articles)
	m.filter.EXPECT().Filter(articles).Return(articles)
	m.model.EXPECT().HealthCheck(gomock.Any()).Return(false)

	snapshot := o.RunOnce(context.Background())

	assert.Equal(t, models.SourceDegraded, snapshot.Source)
	assertComplete(t, snapshot)
	assert.ElementsMatch(t,
		[]string{"Jammu and Kashmir", "Punjab", "Rajasthan", "Gujarat"},
		snapshot.RegionsWithLevel(models.DangerLevelModerate),
	)
}

func TestRunOnce_CompletionErrorDegrades(t *testing.T) {
	o, m := newTestOrchestrator(t)
	articles := batch(1)

	m.fetcher.EXPECT().Fetch(gomock.Any()).Return(articles)
	m.filter.EXPECT().Filter(articles).Return(articles)
	m.model.EXPECT().HealthCheck(gomock.Any()).Return(true)
	m.model.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("", context.DeadlineExceeded)

	snapshot := o.RunOnce(context.Background())

	assert.Equal(t, models.SourceDegraded, snapshot.Source)
	assertComplete(t, snapshot)
}

func TestRunOnce_MalformedResponseDegrades(t *testing.T) {
	o, m := newTestOrchestrator(t)
	articles := batch(2)

	m.fetcher.EXPECT().Fetch(gomock.Any()).Return(articles)
	m.filter.EXPECT().Filter(articles).Return(articles)
	m.model.EXPECT().HealthCheck(gomock.Any()).Return(true)
	m.model.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("I am unable to produce JSON today.", nil)

	var snapshot *models.ConflictSnapshot
	require.NotPanics(t, func() {
		snapshot = o.RunOnce(context.Background())
	})

	assert.Equal(t, models.SourceDegraded, snapshot.Source)
	assertComplete(t, snapshot)
	assert.Empty(t, snapshot.Incidents)
}

func TestRunOnce_PanicFallsBackToStore(t *testing.T) {
	o, m := newTestOrchestrator(t)
	stored := &models.ConflictSnapshot{
		RegionStatuses: []models.RegionStatus{{Name: "Punjab", DangerLevel: models.DangerLevelDanger}},
		LastUpdated:    runNow.Add(-time.Hour),
		Source:         models.SourceLive,
	}

	m.fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(context.Context) []models.Article {
		panic("unexpected nil map")
	})
	m.store.EXPECT().Latest(gomock.Any(), 20, 10).Return(stored, nil).Times(1)

	snapshot := o.RunOnce(context.Background())

	assert.Equal(t, models.SourceCached, snapshot.Source)
	assert.Equal(t, runNow.Add(-time.Hour), snapshot.LastUpdated)
}

func TestRunOnce_PanicWithEmptyStore(t *testing.T) {
	cases := map[string]struct {
		snapshot *models.ConflictSnapshot
		err      error
	}{
		"empty store": {snapshot: nil, err: nil},
		"store error": {snapshot: nil, err: errors.New("connection refused")},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			o, m := newTestOrchestrator(t)

			m.fetcher.EXPECT().Fetch(gomock.Any()).Return(batch(1))
			m.filter.EXPECT().Filter(gomock.Any()).DoAndReturn(func([]models.Article) []models.Article {
				panic("boom")
			})
			m.store.EXPECT().Latest(gomock.Any(), gomock.Any(), gomock.Any()).Return(tc.snapshot, tc.err)

			snapshot := o.RunOnce(context.Background())

			assert.Equal(t, models.SourceDefault, snapshot.Source)
			assertComplete(t, snapshot)
			assert.Empty(t, snapshot.RegionsWithLevel(models.DangerLevelDanger))
		})
	}
}

func TestRunOnce_SingleFlight(t *testing.T) {
	o, m := newTestOrchestrator(t)
	started := make(chan struct{})
	release := make(chan struct{})

	m.fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(context.Context) []models.Article {
		close(started)
		<-release
		return nil
	}).Times(1)
	m.filter.EXPECT().Filter(gomock.Any()).Return(nil).Times(1)

	var wg sync.WaitGroup
	results := make([]*models.ConflictSnapshot, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = o.RunOnce(context.Background())
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = o.RunOnce(context.Background())
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NotNil(t, results[0])
	assert.Same(t, results[0], results[1])
}

func TestRunOnce_TimeoutDuringFetchFallsBackToStore(t *testing.T) {
	o, m := newTestOrchestrator(t)
	o.opts.RunTimeout = 20 * time.Millisecond
	stored := &models.ConflictSnapshot{
		RegionStatuses: []models.RegionStatus{{Name: "Punjab", DangerLevel: models.DangerLevelModerate}},
		LastUpdated:    runNow.Add(-time.Hour),
		Source:         models.SourceLive,
	}

	// Прерванный сбор не должен превращаться в затишье: фильтр и модель не вызываются
	m.fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(ctx context.Context) []models.Article {
		<-ctx.Done()
		return nil
	})
	m.store.EXPECT().
		Latest(gomock.Any(), 20, 10).
		DoAndReturn(func(ctx context.Context, _, _ int) (*models.ConflictSnapshot, error) {
			assert.NoError(t, ctx.Err())
			return stored, nil
		})

	snapshot := o.RunOnce(context.Background())

	assert.Equal(t, models.SourceCached, snapshot.Source)
	assert.False(t, snapshot.Source.Fresh())
	assert.Equal(t, runNow.Add(-time.Hour), snapshot.LastUpdated)
}

func TestRunOnce_CallerCancellationDoesNotStopRun(t *testing.T) {
	o, m := newTestOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m.fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(runCtx context.Context) []models.Article {
		assert.NoError(t, runCtx.Err())
		return nil
	})
	m.filter.EXPECT().Filter(gomock.Nil()).Return(nil)

	snapshot := o.RunOnce(ctx)

	assert.Equal(t, models.SourceQuiet, snapshot.Source)
}
