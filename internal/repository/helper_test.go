package repository

import (
	"Agora/internal/model"
	"Agora/internal/pkg/database"
	"fmt"
	"testing"
	"time"

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

func seedUser(t *testing.T, db *gorm.DB, id uint64) *model.User {
	t.Helper()
	name := fmt.Sprintf("user%d", id)
	u := &model.User{ID: id, Username: &name, UserDetail: model.UserDetail{UserID: id, Nickname: "nick" + name}}
	require.NoError(t, db.Create(u).Error)
	return u
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
