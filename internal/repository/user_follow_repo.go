package repository

import (
	"Agora/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserFollowRepo interface {
	GetUserFollow(ctx context.Context, userID uint64, followingID uint64) (*model.UserFollow, error)
	GetFollowingIDs(ctx context.Context, userID uint64) ([]uint64, error)
	CreateUserFollow(ctx context.Context, userFollow *model.UserFollow) (bool, error)
	DeleteUserFollow(ctx context.Context, userID uint64, followingID uint64) (bool, error)
}

type UserFollowRepoImpl struct {
	db *gorm.DB
}

func NewUserFollowRepo(db *gorm.DB) UserFollowRepo {
	return &UserFollowRepoImpl{db: db}
}

// GetUserFollow 获取用户的关注关系
func (s *UserFollowRepoImpl) GetUserFollow(ctx context.Context, userID uint64, followingID uint64) (*model.UserFollow, error) {
	var userFollow model.UserFollow
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", userID, followingID).
		First(&userFollow)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "get user follow")
	}
	return &userFollow, nil
}

// GetFollowingIDs 获取用户关注的全部用户 id
func (s *UserFollowRepoImpl) GetFollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := s.db.WithContext(ctx).
		Model(&model.UserFollow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, errors.Wrapf(err, "get following ids of user %d", userID)
	}
	return ids, nil
}

// CreateUserFollow 创建用户的关注关系，已存在时返回 false
func (s *UserFollowRepoImpl) CreateUserFollow(ctx context.Context, userFollow *model.UserFollow) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			DoNothing: true,
		}).
		Create(userFollow)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "create user follow")
	}
	return result.RowsAffected > 0, nil
}

// DeleteUserFollow 删除用户的关注关系，不存在时返回 false
func (s *UserFollowRepoImpl) DeleteUserFollow(ctx context.Context, userID uint64, followingID uint64) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", userID, followingID).
		Delete(&model.UserFollow{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "delete user follow")
	}
	return result.RowsAffected > 0, nil
}
