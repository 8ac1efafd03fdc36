package service

import (
	"Agora/internal/api/config"
	"Agora/internal/model"
	"Agora/internal/pkg/database"
	"Agora/internal/repository"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// testClock 可调整的测试时钟
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{now: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier 记录投递的通知
type recordingNotifier struct {
	mu     sync.Mutex
	events []*NotificationEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event *NotificationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []*NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*NotificationEvent{}, n.events...)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := database.NewGormConfig()
	cfg.Logger = logger.Discard
	cfg.PrepareStmt = false
	cfg.NowFunc = func() time.Time { return baseTime }

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id uint64) *model.User {
	t.Helper()
	name := fmt.Sprintf("user%d", id)
	u := &model.User{ID: id, Username: &name, UserDetail: model.UserDetail{UserID: id, Nickname: "nick" + name}}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCategory(t *testing.T, db *gorm.DB, id uint64, name string) *model.Category {
	t.Helper()
	c := &model.Category{ID: id, Name: name, CreatedAt: baseTime}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedPost(t *testing.T, db *gorm.DB, id, author, category uint64, age time.Duration) *model.Post {
	t.Helper()
	p := &model.Post{
		ID:         id,
		UserID:     author,
		CategoryID: category,
		Title:      fmt.Sprintf("post %d", id),
		Content:    "content",
		Status:     model.PostStatusPublished,
		CreatedAt:  baseTime.Add(-age),
	}
	require.NoError(t, db.Omit("User", "Category", "Segments").Create(p).Error)
	return p
}

func setLikes(t *testing.T, db *gorm.DB, postID uint64, likes int) {
	t.Helper()
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", postID).UpdateColumn("likes_count", likes).Error)
}

func follow(t *testing.T, db *gorm.DB, follower, following uint64) {
	t.Helper()
	require.NoError(t, db.Create(&model.UserFollow{FollowerID: follower, FollowingID: following, CreatedAt: baseTime}).Error)
}

func block(t *testing.T, db *gorm.DB, blocker, blocked uint64) {
	t.Helper()
	require.NoError(t, db.Create(&model.UserBlock{BlockerID: blocker, BlockedID: blocked, CreatedAt: baseTime}).Error)
}

func likesCount(t *testing.T, db *gorm.DB, postID uint64) int {
	t.Helper()
	var p model.Post
	require.NoError(t, db.First(&p, postID).Error)
	return p.LikesCount
}

func ledgerCount(t *testing.T, db *gorm.DB, userID uint64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.InteractionLog{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

// testEnv 装配好的服务集合
type testEnv struct {
	db         *gorm.DB
	clock      *testClock
	notifier   *recordingNotifier
	quota      InteractionQuotaService
	visibility VisibilityService
	recommend  RecommendService
	feed       FeedService
	discover   DiscoverService
	actions    PostActionService
	relations  RelationService
	moderation ModerationService
}

func newTestEnv(t *testing.T, db *gorm.DB, dailyLimit, insertionRate int) *testEnv {
	t.Helper()
	clock := newTestClock(baseTime)
	notifier := &recordingNotifier{}

	postRepo := repository.NewPostRepo(db)
	userRepo := repository.NewUserRepo(db)
	followRepo := repository.NewUserFollowRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	actionRepo := repository.NewPostActionRepo(db)
	blockRepo := repository.NewBlockRepo(db)
	hiddenRepo := repository.NewHiddenPostRepo(db)

	feedCfg := config.FeedConfig{DefaultPageSize: 20, MaxPageSize: 50, InsertionRate: insertionRate}
	recCfg := config.RecommendConfig{DefaultLimit: 10, MaxLimit: 50, CandidatePool: 100, TrendingWindow: 168}

	visibility := NewVisibilityService(blockRepo, hiddenRepo)
	quota := NewInteractionQuotaService(db, config.QuotaConfig{DailyLimit: dailyLimit, Timezone: "UTC"}, clock.Now)
	recommend := NewRecommendService(postRepo, userRepo, followRepo, categoryRepo, actionRepo, visibility, recCfg, clock.Now)

	return &testEnv{
		db:         db,
		clock:      clock,
		notifier:   notifier,
		quota:      quota,
		visibility: visibility,
		recommend:  recommend,
		feed:       NewFeedService(postRepo, userRepo, followRepo, categoryRepo, actionRepo, visibility, feedCfg),
		discover:   NewDiscoverService(postRepo, userRepo, actionRepo, visibility, recommend, feedCfg),
		actions:    NewPostActionService(db, postRepo, actionRepo, blockRepo, visibility, quota, notifier),
		relations:  NewRelationService(db, userRepo, postRepo, categoryRepo, blockRepo, hiddenRepo, notifier, clock.Now),
		moderation: NewModerationService(postRepo, notifier),
	}
}
