package job

import (
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/logger"
	"Agora/internal/pkg/metrics"
	"Agora/internal/repository"
	"Agora/internal/service"
	"context"
	log "log/slog"
	"time"
)

const (
	interactionLogCleanBatch = 1000
	interactionLogCleanTTL   = 30 * time.Minute
)

// InteractionLogCleanJob 清理超出保留期的互动流水
type InteractionLogCleanJob struct {
	logRepo       repository.InteractionLogRepo
	retentionDays int
	now           service.Clock
}

func NewInteractionLogCleanJob(logRepo repository.InteractionLogRepo, retentionDays int, now service.Clock) *InteractionLogCleanJob {
	if now == nil {
		now = service.SystemClock
	}
	return &InteractionLogCleanJob{
		logRepo:       logRepo,
		retentionDays: retentionDays,
		now:           now,
	}
}

func (s *InteractionLogCleanJob) Run() {
	ctx := logger.NewJobContext(context.Background(), "job-interaction-log")
	_, err := s.Execute(ctx)
	metrics.RecordJobRun("interaction_log_clean", err)
}

// Execute 返回删除的行数
func (s *InteractionLogCleanJob) Execute(ctx context.Context) (int64, error) {
	before := s.now().AddDate(0, 0, -s.retentionDays)

	var deleted int64
	_, err := runExclusive(ctx, consts.InteractionLogCleanLock, interactionLogCleanTTL, func() error {
		var err error
		deleted, err = s.logRepo.PurgeBefore(ctx, before, interactionLogCleanBatch)
		return err
	})
	if err != nil {
		log.ErrorContext(ctx, "purge interaction logs error", "before", before, "deleted", deleted, "err", err)
		return deleted, err
	}

	log.InfoContext(ctx, "purge interaction logs success", "before", before, "deleted", deleted)
	return deleted, nil
}
