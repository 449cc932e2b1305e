package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/internal/news"
)

//go:generate mockgen -source=conflict.go -destination=mocks/conflict.go -package=mocks

// SnapshotRepository определяет контракт для постоянного хранения снимков
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *models.ConflictSnapshot) error
	Latest(ctx context.Context, incidentLimit, articleLimit int) (*models.ConflictSnapshot, error)
	Ping(ctx context.Context) error
}

// SnapshotCache определяет контракт кеша последнего снимка
type SnapshotCache interface {
	GetSnapshot(ctx context.Context) (*models.ConflictSnapshot, error)
	SetSnapshot(ctx context.Context, snapshot *models.ConflictSnapshot) error
	InvalidateSnapshot(ctx context.Context) error
}

// Pipeline выполняет один запуск конвейера
type Pipeline interface {
	RunOnce(ctx context.Context) *models.ConflictSnapshot
}

// SnapshotPublisher рассылает уведомления о новом снимке
type SnapshotPublisher interface {
	Publish(ctx context.Context, event models.SnapshotEvent) error
}

// Searcher - поисковый сервис новостей
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, opts news.SearchOptions) ([]models.Article, error)
}

// ArticleFilter отбирает релевантные статьи
type ArticleFilter interface {
	Filter(articles []models.Article) []models.Article
}

// ModelProbe выполняет тривиальный запрос к модели
type ModelProbe interface {
	Probe(ctx context.Context) (string, error)
}

// KeyChecker проверяет наличие ключей внешних сервисов
type KeyChecker interface {
	CheckPipelineKeys() error
}

// ConflictService определяет контракт бизнес-логики мониторинга конфликта
type ConflictService interface {
	GetSnapshot(ctx context.Context) (*models.ConflictSnapshot, error)
	Refresh(ctx context.Context) (*RefreshResult, error)
	TestServices(ctx context.Context) *ServicesReport
	News(ctx context.Context, limit int) (*NewsResult, error)
}

// Options - параметры сервиса
type Options struct {
	ReadIncidentLimit int
	ReadArticleLimit  int
	NewsQuery         string
	NewsPageSize      int
	SearchLanguage    string
}

// RefreshResult - итог ручного или планового обновления
type RefreshResult struct {
	Snapshot  *models.ConflictSnapshot
	Persisted bool
}

// ProbeResult - результат проверки одного внешнего сервиса
type ProbeResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Error    string `json:"error,omitempty"`
	Articles *int   `json:"articles,omitempty"`
	Response string `json:"response,omitempty"`
}

// ServicesReport - результат проверки всех внешних сервисов
type ServicesReport struct {
	Database ProbeResult `json:"database"`
	NewsAPI  ProbeResult `json:"newsApi"`
	AI       ProbeResult `json:"ai"`
}

// NewsResult - отфильтрованные статьи без обращения к модели
type NewsResult struct {
	Query    string
	Articles []models.Article
}

// Dependencies - внешние зависимости сервиса
type Dependencies struct {
	Repo       SnapshotRepository
	Cache      SnapshotCache
	Pipeline   Pipeline
	Publishers []SnapshotPublisher
	Searcher   Searcher
	Filter     ArticleFilter
	Model      ModelProbe
	Keys       KeyChecker
	Fallback   func(now time.Time) *models.ConflictSnapshot
}

type conflictService struct {
	Dependencies
	opts   Options
	logger *logrus.Logger
	now    func() time.Time
}

func NewConflictService(deps Dependencies, opts Options, logger *logrus.Logger) ConflictService {
	return &conflictService{
		Dependencies: deps,
		opts:         opts,
		logger:       logger,
		now:          time.Now,
	}
}

// GetSnapshot возвращает текущий снимок: кеш, затем хранилище, затем нейтральный снимок
func (s *conflictService) GetSnapshot(ctx context.Context) (*models.ConflictSnapshot, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "conflict",
		"method":  "GetSnapshot",
	})

	if s.Cache != nil {
		cached, err := s.Cache.GetSnapshot(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to read snapshot from cache")
		} else if cached != nil {
			log.Debug("Snapshot served from cache")
			return cached, nil
		}
	}

	snapshot, err := s.Repo.Latest(ctx, s.opts.ReadIncidentLimit, s.opts.ReadArticleLimit)
	if err != nil {
		log.WithError(err).Error("Failed to read snapshot from repository")
		return nil, fmt.Errorf("service: could not get snapshot: %w", err)
	}
	if snapshot == nil {
		log.Info("Store is empty, serving neutral snapshot")
		return s.Fallback(s.now()), nil
	}

	if s.Cache != nil {
		if err := s.Cache.SetSnapshot(ctx, snapshot); err != nil {
			log.WithError(err).Warn("Failed to cache snapshot")
		}
	}
	return snapshot, nil
}

// Refresh выполняет запуск конвейера, сохраняет свежий снимок и рассылает уведомления.
// Ошибка возвращается только при отсутствии ключей внешних сервисов.
func (s *conflictService) Refresh(ctx context.Context) (*RefreshResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "conflict",
		"method":  "Refresh",
	})

	if err := s.Keys.CheckPipelineKeys(); err != nil {
		log.WithError(err).Warn("Refresh rejected, configuration is incomplete")
		return nil, err
	}

	snapshot := s.Pipeline.RunOnce(ctx)
	result := &RefreshResult{Snapshot: snapshot}
	log = log.WithField("source", snapshot.Source)

	if !snapshot.Source.Fresh() {
		log.Warn("Pipeline returned a fallback snapshot, nothing to persist")
		return result, nil
	}

	if err := s.Repo.Save(ctx, snapshot); err != nil {
		log.WithError(err).Error("Failed to persist snapshot")
	} else {
		result.Persisted = true
	}

	if s.Cache != nil {
		// записанный снимок кеш подхватит при следующем чтении из хранилища,
		// незаписанный кладем в кеш, чтобы чтение не отставало от запуска
		var err error
		if result.Persisted {
			err = s.Cache.InvalidateSnapshot(ctx)
		} else {
			err = s.Cache.SetSnapshot(ctx, snapshot)
		}
		if err != nil {
			log.WithError(err).Warn("Failed to update snapshot cache")
		}
	}

	event := models.NewSnapshotEvent(snapshot)
	for _, p := range s.Publishers {
		if err := p.Publish(ctx, event); err != nil {
			log.WithError(err).Error("Failed to publish snapshot event")
		}
	}

	log.WithField("persisted", result.Persisted).Info("Conflict data refreshed")
	return result, nil
}

// TestServices проверяет хранилище, поисковый сервис и модель
func (s *conflictService) TestServices(ctx context.Context) *ServicesReport {
	log := s.logger.WithFields(logrus.Fields{
		"service": "conflict",
		"method":  "TestServices",
	})

	report := &ServicesReport{
		Database: s.probeDatabase(ctx),
		NewsAPI:  s.probeSearch(ctx),
		AI:       s.probeModel(ctx),
	}
	log.WithFields(logrus.Fields{
		"database": report.Database.Success,
		"search":   report.NewsAPI.Success,
		"ai":       report.AI.Success,
	}).Info("Services tested")
	return report
}

func (s *conflictService) probeDatabase(ctx context.Context) ProbeResult {
	if err := s.Repo.Ping(ctx); err != nil {
		return ProbeResult{Message: fmt.Sprintf("Database initialization failed: %v", err)}
	}
	return ProbeResult{Success: true, Message: "Database initialized successfully"}
}

func (s *conflictService) probeSearch(ctx context.Context) ProbeResult {
	name := s.Searcher.Name()
	articles, err := s.Searcher.Search(ctx, s.opts.NewsQuery, news.SearchOptions{
		Language: s.opts.SearchLanguage,
		PageSize: 5,
	})
	if err != nil {
		res := ProbeResult{Message: fmt.Sprintf("%s initialization failed", name)}
		if apperrors.IsConfiguration(err) {
			res.Error = err.Error()
		} else {
			res.Message = fmt.Sprintf("%s initialization failed: %v", name, err)
		}
		return res
	}
	count := len(articles)
	return ProbeResult{
		Success:  true,
		Message:  fmt.Sprintf("%s initialized successfully", name),
		Articles: &count,
	}
}

func (s *conflictService) probeModel(ctx context.Context) ProbeResult {
	text, err := s.Model.Probe(ctx)
	if err != nil {
		res := ProbeResult{Message: "Gemini AI initialization failed"}
		if apperrors.IsConfiguration(err) {
			res.Error = err.Error()
		} else {
			res.Message = fmt.Sprintf("Gemini AI initialization failed: %v", err)
		}
		return res
	}
	return ProbeResult{
		Success:  true,
		Message:  "Gemini AI initialized successfully",
		Response: strings.TrimSpace(text),
	}
}

// News выполняет общий запрос и возвращает релевантные статьи без обращения к модели
func (s *conflictService) News(ctx context.Context, limit int) (*NewsResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "conflict",
		"method":  "News",
		"limit":   limit,
	})

	articles, err := s.Searcher.Search(ctx, s.opts.NewsQuery, news.SearchOptions{
		Language: s.opts.SearchLanguage,
		PageSize: s.opts.NewsPageSize,
	})
	if err != nil {
		log.WithError(err).Error("Failed to fetch news")
		if apperrors.IsConfiguration(err) {
			return nil, err
		}
		return nil, fmt.Errorf("service: could not fetch news: %w", err)
	}

	relevant := s.Filter.Filter(news.Dedup(articles))
	if limit > 0 && len(relevant) > limit {
		relevant = relevant[:limit]
	}

	log.WithField("count", len(relevant)).Info("News fetched successfully")
	return &NewsResult{
		Query:    s.opts.NewsQuery,
		Articles: relevant,
	}, nil
}
