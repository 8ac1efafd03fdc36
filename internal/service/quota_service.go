package service

import (
	"Agora/internal/api/config"
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/metrics"
	"Agora/internal/pkg/redis"
	"Agora/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// InteractionQuotaService 每日互动配额，自然日按配置的时区计算
type InteractionQuotaService interface {
	CheckLimit(ctx context.Context, userID uint64) error
	RecordInteraction(ctx context.Context, userID uint64, typ model.InteractionType) error
	RefundInteraction(ctx context.Context, userID uint64, typ model.InteractionType) error
	Remaining(ctx context.Context, userID uint64) (int, error)
	Limit() int
	Now() time.Time
	// Today 当前自然日零点
	Today() time.Time
	// WithActorLock 在事务中锁定用户行后执行 fn，fn 内的配额检查、业务变更与流水一起提交
	WithActorLock(ctx context.Context, userID uint64, fn func(tx *gorm.DB, quota InteractionQuotaService) error) error
}

type interactionQuotaServiceImpl struct {
	db      *gorm.DB
	logRepo repository.InteractionLogRepo
	limit   int
	loc     *time.Location
	now     Clock
	// inTx 为 true 时由外层事务提交后统一清理缓存
	inTx bool
}

func NewInteractionQuotaService(db *gorm.DB, cfg config.QuotaConfig, now Clock) InteractionQuotaService {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		if cfg.Timezone != "" {
			log.Warn("invalid quota timezone, falling back to local", "timezone", cfg.Timezone, "err", err)
		}
		loc = time.Local
	}
	limit := cfg.DailyLimit
	if limit <= 0 {
		limit = 20
	}
	if now == nil {
		now = SystemClock
	}
	return &interactionQuotaServiceImpl{
		db:      db,
		logRepo: repository.NewInteractionLogRepo(db),
		limit:   limit,
		loc:     loc,
		now:     now,
	}
}

func (s *interactionQuotaServiceImpl) Limit() int {
	return s.limit
}

func (s *interactionQuotaServiceImpl) Now() time.Time {
	return s.now()
}

func (s *interactionQuotaServiceImpl) Today() time.Time {
	t := s.now().In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// CheckLimit 当日已用次数达到上限时返回 ErrQuotaExceeded
func (s *interactionQuotaServiceImpl) CheckLimit(ctx context.Context, userID uint64) error {
	used, err := s.logRepo.CountSince(ctx, userID, s.Today())
	if err != nil {
		return err
	}
	if used >= int64(s.limit) {
		metrics.QuotaRejections.Inc()
		return ErrQuotaExceeded
	}
	return nil
}

// RecordInteraction 追加一条配额流水
func (s *interactionQuotaServiceImpl) RecordInteraction(ctx context.Context, userID uint64, typ model.InteractionType) error {
	err := s.logRepo.CreateLog(ctx, &model.InteractionLog{
		UserID:    userID,
		Type:      typ,
		CreatedAt: s.now(),
	})
	if err != nil {
		return err
	}
	if !s.inTx {
		s.invalidate(ctx, userID)
	}
	return nil
}

// RefundInteraction 删除当日最近一条同类型流水，没有则不做任何事
func (s *interactionQuotaServiceImpl) RefundInteraction(ctx context.Context, userID uint64, typ model.InteractionType) error {
	latest, err := s.logRepo.GetLatestSince(ctx, userID, typ, s.Today())
	if err != nil {
		return err
	}
	if latest == nil {
		return nil
	}
	if err = s.logRepo.DeleteLog(ctx, latest.ID); err != nil {
		return err
	}
	if !s.inTx {
		s.invalidate(ctx, userID)
	}
	return nil
}

// Remaining 当日剩余次数，缓存到当天结束
func (s *interactionQuotaServiceImpl) Remaining(ctx context.Context, userID uint64) (int, error) {
	key := s.cacheKey(userID)
	if redis.Enabled() && !s.inTx {
		if cached, ok, err := redis.GetInt(ctx, key); err != nil {
			log.WarnContext(ctx, "read quota cache failed", "user_id", userID, "err", err)
		} else if ok {
			return cached, nil
		}
	}

	used, err := s.logRepo.CountSince(ctx, userID, s.Today())
	if err != nil {
		return 0, err
	}
	remaining := s.limit - int(used)
	if remaining < 0 {
		remaining = 0
	}

	if redis.Enabled() && !s.inTx {
		ttl := s.Today().AddDate(0, 0, 1).Sub(s.now())
		if ttl > 0 {
			if err = redis.SetWithExpiration(ctx, key, remaining, ttl); err != nil {
				log.WarnContext(ctx, "write quota cache failed", "user_id", userID, "err", err)
			}
		}
	}
	return remaining, nil
}

func (s *interactionQuotaServiceImpl) WithActorLock(ctx context.Context, userID uint64, fn func(tx *gorm.DB, quota InteractionQuotaService) error) error {
	if userID == 0 {
		return ErrUserNotFound
	}
	if s.inTx {
		return fn(s.db, s)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := repository.NewUserRepo(tx).LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		return fn(tx, s.bind(tx))
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// bind 返回绑定到事务的配额服务
func (s *interactionQuotaServiceImpl) bind(tx *gorm.DB) *interactionQuotaServiceImpl {
	return &interactionQuotaServiceImpl{
		db:      tx,
		logRepo: repository.NewInteractionLogRepo(tx),
		limit:   s.limit,
		loc:     s.loc,
		now:     s.now,
		inTx:    true,
	}
}

func (s *interactionQuotaServiceImpl) cacheKey(userID uint64) string {
	return consts.QuotaRemainingKey + strconv.FormatUint(userID, 10) + ":" + s.Today().Format(consts.DateLayout)
}

func (s *interactionQuotaServiceImpl) invalidate(ctx context.Context, userID uint64) {
	if !redis.Enabled() {
		return
	}
	if err := redis.DeleteKey(ctx, s.cacheKey(userID)); err != nil {
		log.WarnContext(ctx, "invalidate quota cache failed", "user_id", userID, "err", err)
	}
}
