package job

import (
	"Agora/internal/pkg/redis"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// runExclusive 多实例部署时用 Redis 锁保证同一时刻只有一个实例执行，未配置 Redis 时直接执行
func runExclusive(ctx context.Context, lockKey string, ttl time.Duration, fn func() error) (bool, error) {
	if !redis.Enabled() {
		return true, fn()
	}

	owner := uuid.NewString()
	ok, err := redis.TryLock(ctx, lockKey, owner, ttl, 1)
	if err != nil {
		return false, err
	}
	if !ok {
		log.InfoContext(ctx, "job lock held by another instance", "key", lockKey)
		return false, nil
	}
	defer redis.UnLock(ctx, lockKey, owner)
	return true, fn()
}
