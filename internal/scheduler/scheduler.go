// Package scheduler запускает обновление данных по расписанию cron.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
	"github.com/shenikar/border_conflict_monitor/internal/service"
)

//go:generate mockgen -source=scheduler.go -destination=mocks/scheduler.go -package=mocks

// Refresher выполняет одно обновление данных
type Refresher interface {
	Refresh(ctx context.Context) (*service.RefreshResult, error)
}

// Scheduler периодически вызывает Refresh. Запуск пропускается, если предыдущий еще идет.
type Scheduler struct {
	cron       *cron.Cron
	refresher  Refresher
	timeout    time.Duration
	runOnStart bool
	entryID    cron.EntryID
	logger     *logrus.Logger

	mu      sync.Mutex
	baseCtx context.Context
}

func New(refresher Refresher, spec string, timeout time.Duration, runOnStart bool, logger *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		refresher:  refresher,
		timeout:    timeout,
		runOnStart: runOnStart,
		logger:     logger,
		baseCtx:    context.Background(),
	}
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(logger)),
		cron.SkipIfStillRunning(cron.PrintfLogger(logger)),
	))
	id, err := s.cron.AddJob(spec, cron.FuncJob(s.runJob))
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}
	s.entryID = id
	return s, nil
}

// Start запускает планировщик; ctx ограничивает время жизни всех запусков
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	s.logger.Info("Starting refresh scheduler...")
	if s.runOnStart {
		// через ту же цепочку, чтобы стартовый запуск не пересекся с плановым
		go s.cron.Entry(s.entryID).WrappedJob.Run()
	}
	s.cron.Start()
}

// Stop останавливает планировщик; возвращенный контекст завершается после окончания текущих запусков
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping refresh scheduler.")
	return s.cron.Stop()
}

func (s *Scheduler) runJob() {
	s.mu.Lock()
	base := s.baseCtx
	s.mu.Unlock()

	ctx := base
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(base, s.timeout)
		defer cancel()
	}
	s.RunNow(ctx)
}

// RunNow выполняет одно обновление синхронно
func (s *Scheduler) RunNow(ctx context.Context) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "scheduler",
		"method":  "RunNow",
	})

	result, err := s.refresher.Refresh(ctx)
	if err != nil {
		if apperrors.IsConfiguration(err) {
			log.WithError(err).Warn("Scheduled refresh skipped")
			return
		}
		log.WithError(err).Error("Scheduled refresh failed")
		return
	}
	log.WithFields(logrus.Fields{
		"source":    result.Snapshot.Source,
		"persisted": result.Persisted,
	}).Info("Scheduled refresh completed")
}
