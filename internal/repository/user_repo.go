package repository

import (
	"Agora/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo interface {
	GetUserById(ctx context.Context, id uint64) (*model.User, error)
	LockUser(ctx context.Context, id uint64) (*model.User, error)
	IncrFollowCounters(ctx context.Context, followerID, followingID uint64, delta int) error
	ReconcileFollowCounters(ctx context.Context) (int64, error)
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

// GetUserById 获取未注销的用户，不存在返回 nil
func (s *UserRepoImpl) GetUserById(ctx context.Context, id uint64) (*model.User, error) {
	if id == 0 {
		return nil, nil
	}
	user := &model.User{}
	result := s.db.WithContext(ctx).
		Preload("UserDetail").
		Where("is_delete = ?", false).
		First(user, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(result.Error, "get user %d", id)
	}
	return user, nil
}

// LockUser 在当前事务中对用户行加排他锁，同一用户的配额操作借此串行
func (s *UserRepoImpl) LockUser(ctx context.Context, id uint64) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("is_delete = ?", false).
		First(user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(result.Error, "lock user %d", id)
	}
	return user, nil
}

// IncrFollowCounters 同时调整关注者的关注数与被关注者的粉丝数
func (s *UserRepoImpl) IncrFollowCounters(ctx context.Context, followerID, followingID uint64, delta int) error {
	if delta == 0 {
		return nil
	}
	if err := s.incr(ctx, followerID, "following_count", delta); err != nil {
		return err
	}
	return s.incr(ctx, followingID, "followers_count", delta)
}

func (s *UserRepoImpl) incr(ctx context.Context, id uint64, col string, delta int) error {
	db := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id)
	if delta < 0 {
		db = db.Where(col+" >= ?", -delta)
	}
	if err := db.UpdateColumn(col, gorm.Expr(col+" + ?", delta)).Error; err != nil {
		return errors.Wrapf(err, "incr %s of user %d", col, id)
	}
	return nil
}

// ReconcileFollowCounters 按关注关系重新计算所有用户的计数，返回修正的行数
func (s *UserRepoImpl) ReconcileFollowCounters(ctx context.Context) (int64, error) {
	var fixed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		following := tx.Model(&model.User{}).
			Where("following_count <> (SELECT COUNT(*) FROM user_follows WHERE user_follows.follower_id = users.id)").
			UpdateColumn("following_count", gorm.Expr("(SELECT COUNT(*) FROM user_follows WHERE user_follows.follower_id = users.id)"))
		if following.Error != nil {
			return following.Error
		}
		followers := tx.Model(&model.User{}).
			Where("followers_count <> (SELECT COUNT(*) FROM user_follows WHERE user_follows.following_id = users.id)").
			UpdateColumn("followers_count", gorm.Expr("(SELECT COUNT(*) FROM user_follows WHERE user_follows.following_id = users.id)"))
		if followers.Error != nil {
			return followers.Error
		}
		fixed = following.RowsAffected + followers.RowsAffected
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "reconcile follow counters")
	}
	return fixed, nil
}
