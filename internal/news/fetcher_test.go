package news

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/pkg/logger"
)

// fakeSearcher возвращает заранее заданные результаты по тексту запроса
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]models.Article
	errs    map[string]error
	calls   []string
	opts    []SearchOptions
}

func (s *fakeSearcher) Name() string { return "fake" }

func (s *fakeSearcher) Search(_ context.Context, query string, opts SearchOptions) ([]models.Article, error) {
	s.mu.Lock()
	s.calls = append(s.calls, query)
	s.opts = append(s.opts, opts)
	s.mu.Unlock()
	if err := s.errs[query]; err != nil {
		return nil, err
	}
	return s.results[query], nil
}

func newTestFetcher(s Searcher, queries ...string) *Fetcher {
	f := NewFetcher(s, FetcherConfig{
		Queries:        queries,
		Language:       "en",
		PageSize:       5,
		Window:         7 * 24 * time.Hour,
		MaxConcurrency: 4,
	}, logger.NewDiscard(), nil)
	f.now = func() time.Time { return time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestFetch_DeduplicatesAcrossQueries(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]models.Article{
		"q1": {
			{Title: "A", URL: "https://example.com/a"},
			{Title: "B", URL: "https://example.com/b"},
		},
		"q2": {
			{Title: "B again", URL: "https://example.com/b/"},
			{Title: "C", URL: "https://example.com/c"},
		},
	}}

	out := newTestFetcher(searcher, "q1", "q2").Fetch(context.Background())

	require.Len(t, out, 3)
	urls := make(map[string]struct{})
	for _, a := range out {
		key := CanonicalURL(a.URL)
		_, dup := urls[key]
		assert.False(t, dup, "duplicate url %s", a.URL)
		urls[key] = struct{}{}
	}
	assert.Equal(t, "B", out[1].Title) // первое вхождение сохраняется
}

func TestFetch_FailedQueryContributesNothing(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]models.Article{
			"ok": {{Title: "A", URL: "https://example.com/a"}},
		},
		errs: map[string]error{"broken": errors.New("connection reset")},
	}

	out := newTestFetcher(searcher, "broken", "ok").Fetch(context.Background())

	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].Title)
	assert.ElementsMatch(t, []string{"broken", "ok"}, searcher.calls)
}

func TestFetch_PassesSearchOptions(t *testing.T) {
	searcher := &fakeSearcher{}

	out := newTestFetcher(searcher, "q").Fetch(context.Background())

	assert.Empty(t, out)
	require.Len(t, searcher.opts, 1)
	assert.Equal(t, "en", searcher.opts[0].Language)
	assert.Equal(t, 5, searcher.opts[0].PageSize)
	assert.Equal(t, time.Date(2025, 5, 3, 12, 0, 0, 0, time.UTC), searcher.opts[0].Since)
}

func TestFetch_CancelledContextSkipsQueries(t *testing.T) {
	searcher := &fakeSearcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := newTestFetcher(searcher, "q1", "q2").Fetch(ctx)

	assert.Empty(t, out)
	assert.Empty(t, searcher.calls)
}
