package job

import (
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/database"
	"Agora/internal/pkg/es"
	"Agora/internal/pkg/redis"
	"Agora/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

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

func seedUser(t *testing.T, db *gorm.DB, id uint64, following, followers int) {
	t.Helper()
	name := fmt.Sprintf("user%d", id)
	u := &model.User{
		ID:             id,
		Username:       &name,
		FollowingCount: following,
		FollowersCount: followers,
		UserDetail:     model.UserDetail{UserID: id, Nickname: name},
	}
	require.NoError(t, db.Create(u).Error)
}

func seedLogs(t *testing.T, db *gorm.DB, ages ...time.Duration) {
	t.Helper()
	for _, age := range ages {
		require.NoError(t, db.Create(&model.InteractionLog{UserID: 1, Type: model.InteractionLike, CreatedAt: baseTime.Add(-age)}).Error)
	}
}

func countLogs(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.InteractionLog{}).Count(&n).Error)
	return n
}

func TestInteractionLogCleanJob_PurgesExpired(t *testing.T) {
	db := setupTestDB(t)
	day := 24 * time.Hour
	seedLogs(t, db, time.Hour, 2*day, 31*day, 40*day, 90*day)

	j := NewInteractionLogCleanJob(repository.NewInteractionLogRepo(db), 30, func() time.Time { return baseTime })
	deleted, err := j.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Equal(t, int64(2), countLogs(t, db))

	deleted, err = j.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestInteractionLogCleanJob_SkipsWhenLocked(t *testing.T) {
	db := setupTestDB(t)
	mr := setupMiniRedis(t)
	seedLogs(t, db, 60*24*time.Hour)
	require.NoError(t, mr.Set(consts.InteractionLogCleanLock, "other-instance"))

	j := NewInteractionLogCleanJob(repository.NewInteractionLogRepo(db), 30, func() time.Time { return baseTime })
	deleted, err := j.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Equal(t, int64(1), countLogs(t, db))

	mr.Del(consts.InteractionLogCleanLock)
	deleted, err = j.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.False(t, mr.Exists(consts.InteractionLogCleanLock))
}

func TestCounterReconcileJob(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1, 5, 0)
	seedUser(t, db, 2, 0, 9)
	seedUser(t, db, 3, 0, 0)
	require.NoError(t, db.Create(&model.Category{ID: 1, Name: "go", FollowersCount: 7}).Error)
	require.NoError(t, db.Create(&[]model.UserFollow{
		{FollowerID: 1, FollowingID: 2},
		{FollowerID: 3, FollowingID: 2},
	}).Error)
	require.NoError(t, db.Create(&model.CategoryFollow{UserID: 1, CategoryID: 1}).Error)

	j := NewCounterReconcileJob(repository.NewUserRepo(db), repository.NewCategoryRepo(db))
	require.NoError(t, j.Execute(context.Background()))

	var users []model.User
	require.NoError(t, db.Order("id").Find(&users).Error)
	require.Len(t, users, 3)
	assert.Equal(t, []int{1, 0, 1}, []int{users[0].FollowingCount, users[1].FollowingCount, users[2].FollowingCount})
	assert.Equal(t, []int{0, 2, 0}, []int{users[0].FollowersCount, users[1].FollowersCount, users[2].FollowersCount})

	var category model.Category
	require.NoError(t, db.First(&category, 1).Error)
	assert.Equal(t, 1, category.FollowersCount)
}

// memoryIndex 记录写入与删除的检索索引替身
type memoryIndex struct {
	docs     map[uint64]*es.PostES
	removed  []uint64
	indexErr error
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{docs: make(map[uint64]*es.PostES)}
}

func (m *memoryIndex) SearchCandidates(context.Context, *repository.CandidateQuery) ([]uint64, error) {
	return nil, nil
}

func (m *memoryIndex) SearchTrending(context.Context, *repository.CandidateQuery) ([]uint64, error) {
	return nil, nil
}

func (m *memoryIndex) IndexPost(_ context.Context, post *es.PostES) error {
	if m.indexErr != nil {
		return m.indexErr
	}
	m.docs[post.ID] = post
	return nil
}

func (m *memoryIndex) DeletePost(_ context.Context, id uint64) error {
	delete(m.docs, id)
	m.removed = append(m.removed, id)
	return nil
}

func (m *memoryIndex) ids() []uint64 {
	ids := make([]uint64, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func seedPost(t *testing.T, db *gorm.DB, id uint64, status model.PostStatus, deleted bool, age time.Duration) {
	t.Helper()
	p := &model.Post{
		ID:         id,
		UserID:     1,
		Title:      fmt.Sprintf("post %d", id),
		Content:    "content",
		Status:     status,
		IsDeleted:  deleted,
		LikesCount: int(id),
		CreatedAt:  baseTime.Add(-age),
	}
	require.NoError(t, db.Omit("User", "Category", "Segments").Create(p).Error)
}

func TestPostIndexJob_SyncsWindow(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1, 0, 0)
	seedPost(t, db, 1, model.PostStatusPublished, false, time.Hour)
	seedPost(t, db, 2, model.PostStatusRejected, false, 2*time.Hour)
	seedPost(t, db, 3, model.PostStatusPublished, true, 3*time.Hour)
	seedPost(t, db, 4, model.PostStatusPublished, false, 5*time.Hour)
	seedPost(t, db, 5, model.PostStatusPublished, false, 40*24*time.Hour)

	index := newMemoryIndex()
	index.docs[2] = &es.PostES{ID: 2}
	j := NewPostIndexJob(repository.NewPostRepo(db), index, 720, func() time.Time { return baseTime })

	indexed, removed, err := j.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []uint64{1, 4}, index.ids())
	assert.ElementsMatch(t, []uint64{2, 3}, index.removed)
	assert.Equal(t, 4, index.docs[4].LikesCount)
	assert.Equal(t, int(model.PostStatusPublished), index.docs[1].Status)
}

func TestPostIndexJob_StopsOnIndexError(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1, 0, 0)
	seedPost(t, db, 1, model.PostStatusPublished, false, time.Hour)

	index := newMemoryIndex()
	index.indexErr = errors.New("cluster unavailable")
	j := NewPostIndexJob(repository.NewPostRepo(db), index, 720, func() time.Time { return baseTime })

	indexed, _, err := j.Execute(context.Background())
	require.Error(t, err)
	assert.Zero(t, indexed)
	assert.Contains(t, err.Error(), "index post 1")
}
