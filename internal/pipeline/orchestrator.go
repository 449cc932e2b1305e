// Package pipeline реализует конвейер "новости -> классификация": сбор статей,
// фильтрацию, запрос к модели, разбор ответа и сведение с перечнем регионов.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/shenikar/border_conflict_monitor/internal/ai"
	"github.com/shenikar/border_conflict_monitor/internal/metrics"
	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/internal/taxonomy"
)

//go:generate mockgen -source=orchestrator.go -destination=mocks/orchestrator.go -package=mocks

// ArticleFetcher собирает статьи по всем запросам без дубликатов
type ArticleFetcher interface {
	Fetch(ctx context.Context) []models.Article
}

// ArticleFilter отбирает релевантные статьи
type ArticleFilter interface {
	Filter(articles []models.Article) []models.Article
}

// ModelClient - клиент генеративной модели
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	HealthCheck(ctx context.Context) bool
}

// SnapshotReader возвращает последний сохраненный снимок или nil, если хранилище пусто
type SnapshotReader interface {
	Latest(ctx context.Context, incidentLimit, articleLimit int) (*models.ConflictSnapshot, error)
}

// время на чтение последнего снимка при откате
const storeReadTimeout = 5 * time.Second

// Options - параметры конвейера
type Options struct {
	MaxPromptChars    int
	IncidentCap       int
	ReadIncidentLimit int
	ReadArticleLimit  int
	RunTimeout        time.Duration
}

// Orchestrator последовательно выполняет этапы конвейера и применяет политику отката.
// Одновременно выполняется не более одного запуска: параллельные вызовы RunOnce
// получают результат текущего запуска.
type Orchestrator struct {
	fetcher    ArticleFetcher
	filter     ArticleFilter
	model      ModelClient
	store      SnapshotReader
	builder    *ai.PromptBuilder
	reconciler *Reconciler
	regions    []taxonomy.Region
	opts       Options
	logger     *logrus.Logger
	metrics    *metrics.Metrics

	group singleflight.Group
	now   func() time.Time
}

func NewOrchestrator(
	fetcher ArticleFetcher,
	filter ArticleFilter,
	model ModelClient,
	store SnapshotReader,
	tax *taxonomy.Taxonomy,
	opts Options,
	logger *logrus.Logger,
	m *metrics.Metrics,
) *Orchestrator {
	regions := tax.Regions()
	return &Orchestrator{
		fetcher:    fetcher,
		filter:     filter,
		model:      model,
		store:      store,
		builder:    ai.NewPromptBuilder(tax, opts.MaxPromptChars, opts.IncidentCap),
		reconciler: NewReconciler(regions, opts.IncidentCap),
		regions:    regions,
		opts:       opts,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

// RunOnce выполняет один запуск конвейера. Всегда возвращает корректный снимок.
// Запуск общий для всех ожидающих вызовов, поэтому отмена ctx вызывающего его не прерывает;
// время запуска ограничено RunTimeout.
func (o *Orchestrator) RunOnce(ctx context.Context) *models.ConflictSnapshot {
	v, _, shared := o.group.Do("run", func() (any, error) {
		runCtx := context.WithoutCancel(ctx)
		if o.opts.RunTimeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, o.opts.RunTimeout)
			defer cancel()
		}
		return o.run(runCtx), nil
	})
	if shared {
		o.logger.WithFields(logrus.Fields{
			"service": "pipeline",
			"method":  "RunOnce",
		}).Debug("Joined pipeline run already in progress")
	}
	return v.(*models.ConflictSnapshot)
}

func (o *Orchestrator) run(ctx context.Context) (snapshot *models.ConflictSnapshot) {
	started := time.Now()
	log := o.logger.WithFields(logrus.Fields{
		"service": "pipeline",
		"method":  "RunOnce",
		"run_id":  uuid.NewString(),
	})
	log.Info("Pipeline run started")

	defer func() {
		if r := recover(); r != nil {
			log.WithError(fmt.Errorf("panic: %v", r)).Error("Pipeline run failed, falling back to last known snapshot")
			snapshot = o.lastKnownGood(ctx, log)
		}
		o.metrics.ObserveRun(snapshot.Source, started)
		log.WithFields(logrus.Fields{
			"source":    snapshot.Source,
			"incidents": len(snapshot.Incidents),
			"articles":  len(snapshot.Articles),
		}).Info("Pipeline run finished")
	}()

	return o.execute(ctx, log)
}

func (o *Orchestrator) execute(ctx context.Context, log *logrus.Entry) *models.ConflictSnapshot {
	fetched := o.fetcher.Fetch(ctx)
	if err := ctx.Err(); err != nil {
		// пустой результат прерванного сбора не означает затишья
		log.WithError(err).Warn("Run interrupted while fetching, falling back to last known snapshot")
		return o.lastKnownGood(ctx, log)
	}
	relevant := o.filter.Filter(fetched)
	o.metrics.SetArticleCounts(len(fetched), len(relevant))
	log.WithFields(logrus.Fields{
		"fetched":  len(fetched),
		"relevant": len(relevant),
	}).Info("Articles collected")

	now := o.now()
	if len(relevant) == 0 {
		log.Info("No relevant articles, producing quiet snapshot")
		return NeutralSnapshot(o.regions, now, models.SourceQuiet)
	}

	prompt := o.builder.Build(relevant)

	if !o.model.HealthCheck(ctx) {
		log.Warn("Model health check failed, using degraded assessment")
		return DegradedSnapshot(o.regions, relevant, now)
	}

	text, err := o.model.Complete(ctx, prompt)
	if err != nil {
		log.WithError(err).Warn("Model completion failed, using degraded assessment")
		return DegradedSnapshot(o.regions, relevant, now)
	}

	analysis, err := ai.ParseResponse(text)
	if err != nil {
		log.WithError(err).Warn("Model response could not be parsed, using degraded assessment")
		return DegradedSnapshot(o.regions, relevant, now)
	}

	statuses, incidents := o.reconciler.Reconcile(analysis, relevant, now)
	log.WithFields(logrus.Fields{
		"model_states":  len(analysis.States),
		"model_attacks": len(analysis.Attacks),
	}).Debug("Model response reconciled")

	return &models.ConflictSnapshot{
		RegionStatuses: statuses,
		Incidents:      incidents,
		Articles:       relevant,
		LastUpdated:    now,
		Source:         models.SourceLive,
	}
}

// lastKnownGood возвращает последний сохраненный снимок, иначе нейтральный
func (o *Orchestrator) lastKnownGood(ctx context.Context, log *logrus.Entry) (snapshot *models.ConflictSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			log.WithError(fmt.Errorf("panic: %v", r)).Error("Failed to read last known snapshot")
			snapshot = NeutralSnapshot(o.regions, o.now(), models.SourceDefault)
		}
	}()

	if o.store != nil {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeReadTimeout)
		defer cancel()
		latest, err := o.store.Latest(readCtx, o.opts.ReadIncidentLimit, o.opts.ReadArticleLimit)
		if err != nil {
			log.WithError(err).Error("Failed to read last known snapshot")
		} else if latest != nil {
			latest.Source = models.SourceCached
			return latest
		}
	}
	return NeutralSnapshot(o.regions, o.now(), models.SourceDefault)
}
