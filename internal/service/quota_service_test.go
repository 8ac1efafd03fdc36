package service

import (
	"Agora/internal/api/config"
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/redis"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	redis.Rdb = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = redis.Rdb.Close()
		redis.Rdb = nil
	})
	return mr
}

func TestQuota_TodayUsesConfiguredTimezone(t *testing.T) {
	db := setupTestDB(t)
	loc := time.FixedZone("UTC+8", 8*3600)
	// UTC 20:00 已经是东八区次日 04:00
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	quota := NewInteractionQuotaService(db, config.QuotaConfig{DailyLimit: 5, Timezone: "UTC"}, func() time.Time { return now })
	assert.True(t, quota.Today().Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))

	impl := quota.(*interactionQuotaServiceImpl)
	impl.loc = loc
	assert.True(t, quota.Today().Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, loc)))
}

func TestQuota_InvalidTimezoneFallsBack(t *testing.T) {
	db := setupTestDB(t)
	quota := NewInteractionQuotaService(db, config.QuotaConfig{DailyLimit: 0, Timezone: "Mars/Olympus"}, nil)
	assert.Equal(t, 20, quota.Limit())
	assert.Equal(t, time.Local, quota.(*interactionQuotaServiceImpl).loc)
}

func TestQuota_RecordCheckRefund(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1)
	env := newTestEnv(t, db, 2, 0)
	ctx := context.Background()

	require.NoError(t, env.quota.CheckLimit(ctx, 1))
	require.NoError(t, env.quota.RecordInteraction(ctx, 1, model.InteractionLike))
	require.NoError(t, env.quota.RecordInteraction(ctx, 1, model.InteractionComment))
	assert.ErrorIs(t, env.quota.CheckLimit(ctx, 1), ErrQuotaExceeded)

	remaining, err := env.quota.Remaining(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	require.NoError(t, env.quota.RefundInteraction(ctx, 1, model.InteractionLike))
	require.NoError(t, env.quota.CheckLimit(ctx, 1))
	assert.Equal(t, int64(1), ledgerCount(t, db, 1))

	// 没有当日同类型流水时不做任何事
	require.NoError(t, env.quota.RefundInteraction(ctx, 1, model.InteractionLike))
	assert.Equal(t, int64(1), ledgerCount(t, db, 1))
}

func TestQuota_ResetsNextDay(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1)
	env := newTestEnv(t, db, 1, 0)
	ctx := context.Background()

	require.NoError(t, env.quota.RecordInteraction(ctx, 1, model.InteractionLike))
	assert.ErrorIs(t, env.quota.CheckLimit(ctx, 1), ErrQuotaExceeded)

	env.clock.Advance(24 * time.Hour)
	assert.NoError(t, env.quota.CheckLimit(ctx, 1))
	remaining, err := env.quota.Remaining(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestQuota_RemainingCached(t *testing.T) {
	mr := setupMiniRedis(t)
	db := setupTestDB(t)
	seedUser(t, db, 1)
	seedUser(t, db, 2)
	seedPost(t, db, 10, 2, 0, time.Hour)
	env := newTestEnv(t, db, 3, 0)
	ctx := context.Background()

	remaining, err := env.quota.Remaining(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)

	key := consts.QuotaRemainingKey + "1:" + baseTime.Format(consts.DateLayout)
	cached, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "3", cached)
	assert.Equal(t, 12*time.Hour, mr.TTL(key))

	_, err = env.actions.ToggleLike(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))

	remaining, err = env.quota.Remaining(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestQuota_WithActorLockRollsBack(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1)
	env := newTestEnv(t, db, 5, 0)
	ctx := context.Background()

	err := env.quota.WithActorLock(ctx, 1, func(tx *gorm.DB, quota InteractionQuotaService) error {
		require.NoError(t, quota.RecordInteraction(ctx, 1, model.InteractionLike))
		return ErrPostNotFound
	})
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Equal(t, int64(0), ledgerCount(t, db, 1))

	err = env.quota.WithActorLock(ctx, 99, func(*gorm.DB, InteractionQuotaService) error { return nil })
	assert.ErrorIs(t, err, ErrUserNotFound)
}
