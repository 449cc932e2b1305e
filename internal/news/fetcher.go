package news

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/border_conflict_monitor/internal/metrics"
	"github.com/shenikar/border_conflict_monitor/internal/models"
)

// FetcherConfig - набор запросов и параметры поиска
type FetcherConfig struct {
	Queries        []string
	Language       string
	PageSize       int
	Window         time.Duration
	MaxConcurrency int
}

// Fetcher выполняет все запросы параллельно и объединяет результаты
type Fetcher struct {
	searcher Searcher
	cfg      FetcherConfig
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewFetcher(searcher Searcher, cfg FetcherConfig, logger *logrus.Logger, m *metrics.Metrics) *Fetcher {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	return &Fetcher{
		searcher: searcher,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Fetch возвращает объединенный набор статей без повторяющихся URL.
// Ошибка отдельного запроса не прерывает остальные: такой запрос дает пустой результат.
func (f *Fetcher) Fetch(ctx context.Context) []models.Article {
	log := f.logger.WithFields(logrus.Fields{
		"service":  "fetcher",
		"method":   "Fetch",
		"provider": f.searcher.Name(),
		"queries":  len(f.cfg.Queries),
	})

	opts := SearchOptions{
		Language: f.cfg.Language,
		PageSize: f.cfg.PageSize,
	}
	if f.cfg.Window > 0 {
		opts.Since = f.now().Add(-f.cfg.Window)
	}

	results := make([][]models.Article, len(f.cfg.Queries))

	var g errgroup.Group
	g.SetLimit(f.cfg.MaxConcurrency)
	for i, query := range f.cfg.Queries {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			articles, err := f.searcher.Search(ctx, query, opts)
			f.metrics.ObserveSearch(f.searcher.Name(), err)
			if err != nil {
				log.WithError(err).WithField("query", query).Warn("Search query failed, skipping")
				return nil
			}
			results[i] = articles
			return nil
		})
	}
	_ = g.Wait() // горутины всегда возвращают nil

	merged := make([]models.Article, 0)
	for _, r := range results {
		merged = append(merged, r...)
	}
	unique := Dedup(merged)

	log.WithFields(logrus.Fields{
		"fetched": len(merged),
		"unique":  len(unique),
	}).Info("Articles fetched")
	return unique
}
