package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLite 会丢弃 FOR UPDATE，行锁语句用 MySQL 方言空跑检查
func TestLockUserSelectsForUpdate(t *testing.T) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "agora:agora@tcp(127.0.0.1:3306)/agora?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, Logger: logger.Discard})
	require.NoError(t, err)

	var statements []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}))

	_, err = NewUserRepo(db).LockUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], "is_delete = ?")
	assert.Contains(t, statements[0], "`users`.`id` = ?")
	assert.Contains(t, statements[0], "FOR UPDATE")
}

func TestLockUserInTransaction(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1)
	deleted := seedUser(t, db, 2)
	require.NoError(t, db.Model(deleted).Update("is_delete", true).Error)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		repo := NewUserRepo(tx)

		user, err := repo.LockUser(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.EqualValues(t, 1, user.ID)

		// 已注销与不存在的用户都返回 nil
		user, err = repo.LockUser(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, user)

		user, err = repo.LockUser(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, user)
		return nil
	})
	require.NoError(t, err)
}
