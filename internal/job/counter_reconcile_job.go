package job

import (
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/logger"
	"Agora/internal/pkg/metrics"
	"Agora/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/pkg/errors"
)

const counterReconcileTTL = 10 * time.Minute

// CounterReconcileJob 按关注关系校正用户与分类上的计数
type CounterReconcileJob struct {
	userRepo     repository.UserRepo
	categoryRepo repository.CategoryRepo
}

func NewCounterReconcileJob(userRepo repository.UserRepo, categoryRepo repository.CategoryRepo) *CounterReconcileJob {
	return &CounterReconcileJob{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *CounterReconcileJob) Run() {
	ctx := logger.NewJobContext(context.Background(), "job-counter")
	err := s.Execute(ctx)
	metrics.RecordJobRun("counter_reconcile", err)
}

func (s *CounterReconcileJob) Execute(ctx context.Context) error {
	var users, categories int64
	_, err := runExclusive(ctx, consts.CounterReconcileLock, counterReconcileTTL, func() error {
		var err error
		if users, err = s.userRepo.ReconcileFollowCounters(ctx); err != nil {
			return errors.Wrap(err, "reconcile user follow counters")
		}
		if categories, err = s.categoryRepo.ReconcileFollowers(ctx); err != nil {
			return errors.Wrap(err, "reconcile category followers")
		}
		return nil
	})
	if err != nil {
		log.ErrorContext(ctx, "counter reconcile error", "err", err)
		return err
	}

	if users > 0 || categories > 0 {
		log.InfoContext(ctx, "counter reconcile fixed rows", "users", users, "categories", categories)
	}
	return nil
}
