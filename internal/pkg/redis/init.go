package redis

import (
	"Agora/internal/api/config"
	"Agora/internal/pkg/logger"
	"context"
	log "log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

const pingTimeout = 5 * time.Second

// Rdb 为 nil 时配额缓存、令牌黑名单与任务锁均关闭
var Rdb *redis.Client

// InitRedis 连接失败时不替换已有的 Rdb
func InitRedis(cfg config.RedisConfig) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,

		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return errors.Wrapf(err, "ping redis %s", cfg.Addr)
	}

	rdb.AddHook(logger.NewRedisLogger())
	Rdb = rdb
	log.Info("Connected to Redis", "addr", cfg.Addr, "db", cfg.DB)
	return nil
}
