package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/border_conflict_monitor/internal/ai"
	"github.com/shenikar/border_conflict_monitor/internal/config"
	"github.com/shenikar/border_conflict_monitor/internal/events"
	v1 "github.com/shenikar/border_conflict_monitor/internal/handler/http/v1"
	"github.com/shenikar/border_conflict_monitor/internal/metrics"
	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/internal/news"
	"github.com/shenikar/border_conflict_monitor/internal/pipeline"
	"github.com/shenikar/border_conflict_monitor/internal/repository"
	"github.com/shenikar/border_conflict_monitor/internal/scheduler"
	"github.com/shenikar/border_conflict_monitor/internal/service"
	"github.com/shenikar/border_conflict_monitor/internal/taxonomy"
	"github.com/shenikar/border_conflict_monitor/internal/webhook"
	"github.com/shenikar/border_conflict_monitor/pkg/logger"
	"github.com/shenikar/border_conflict_monitor/pkg/postgres"
	redisclient "github.com/shenikar/border_conflict_monitor/pkg/redis"

	_ "github.com/shenikar/border_conflict_monitor/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	searchTimeout = 15 * time.Second
	newsPageSize  = 30
)

// @title Border Conflict Monitor API
// @version 1.0
// @description News-to-classification pipeline for the India-Pakistan border conflict.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func newSearcher(cfg *config.Config) news.Searcher {
	if cfg.SearchProvider == config.SearchProviderRSS {
		return news.NewRSSClient(cfg.NewsRSSURL, searchTimeout)
	}
	return news.NewNewsAPIClient(cfg.NewsAPIKey, cfg.NewsAPIURL, searchTimeout, cfg.SearchRatePerSecond)
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	if err := cfg.CheckPipelineKeys(); err != nil {
		log.WithError(err).Warn("Pipeline is not fully configured, refresh will be rejected until keys are set")
	}

	// Конвейер
	tax := taxonomy.Default()
	searcher := newSearcher(cfg)
	fetcher := news.NewFetcher(searcher, news.FetcherConfig{
		Queries:        tax.Queries(),
		Language:       cfg.SearchLanguage,
		PageSize:       cfg.SearchPageSize,
		Window:         cfg.SearchWindow,
		MaxConcurrency: cfg.SearchMaxConcurrency,
	}, log, appMetrics)
	filter := news.NewRelevanceFilter(tax.Keywords(), cfg.MaxArticles)
	modelClient := ai.NewClient(
		ai.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.GeminiModel),
		cfg.ModelTimeout,
		cfg.ModelMaxRetries,
		log,
		appMetrics,
	)

	// Инициализация репозиториев
	snapshotRepo := repository.NewSnapshotRepository(dbpool)
	snapshotCache := repository.NewSnapshotCache(redisClient, cfg.SnapshotCacheTTL)

	orchestrator := pipeline.NewOrchestrator(fetcher, filter, modelClient, snapshotRepo, tax, pipeline.Options{
		MaxPromptChars:    cfg.PromptMaxChars,
		IncidentCap:       cfg.IncidentCap,
		ReadIncidentLimit: cfg.ReadIncidentLimit,
		ReadArticleLimit:  cfg.ReadArticleLimit,
		RunTimeout:        cfg.RunTimeout,
	}, log, appMetrics)

	// Уведомления о новых снимках
	publishers := []service.SnapshotPublisher{webhook.NewRedisWebhookPublisher(redisClient)}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(events.NATSConfig{URL: cfg.NATSURL, Subject: cfg.NATSSubject})
		if err != nil {
			log.WithError(err).Warn("NATS is unavailable, snapshot events will be delivered by webhook only")
		} else {
			defer natsPublisher.Close()
			publishers = append(publishers, natsPublisher)
		}
	}

	// Инициализация и запуск воркера вебхуков
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	workerDone := webhookWorker.Start(ctx)

	// Инициализация сервисов
	regions := tax.Regions()
	conflictService := service.NewConflictService(service.Dependencies{
		Repo:       snapshotRepo,
		Cache:      snapshotCache,
		Pipeline:   orchestrator,
		Publishers: publishers,
		Searcher:   searcher,
		Filter:     filter,
		Model:      modelClient,
		Keys:       cfg,
		Fallback: func(now time.Time) *models.ConflictSnapshot {
			return pipeline.NeutralSnapshot(regions, now, models.SourceDefault)
		},
	}, service.Options{
		ReadIncidentLimit: cfg.ReadIncidentLimit,
		ReadArticleLimit:  cfg.ReadArticleLimit,
		NewsQuery:         tax.GeneralQueries[0],
		NewsPageSize:      newsPageSize,
		SearchLanguage:    cfg.SearchLanguage,
	}, log)

	// Периодическое обновление
	refreshScheduler, err := scheduler.New(conflictService, cfg.RefreshSchedule, cfg.RunTimeout, cfg.RefreshOnStart, log)
	if err != nil {
		log.Fatalf("Failed to create refresh scheduler: %v", err)
	}
	refreshScheduler.Start(ctx)

	// Инициализация хэндлеров
	handler := v1.NewHandler(conflictService, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api")
	handler.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	// Отмена контекста прерывает текущий запуск конвейера и воркер вебхуков
	cancel()
	select {
	case <-refreshScheduler.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("Refresh scheduler did not stop in time")
	}
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn("Webhook worker did not stop in time")
	}

	log.Info("Server gracefully stopped")
}
