package repository

import (
	"Agora/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HiddenPostRepo interface {
	GetHiddenPostIDs(ctx context.Context, userID uint64) ([]uint64, error)
	CreateHiddenPost(ctx context.Context, hidden *model.HiddenPost) (bool, error)
	DeleteHiddenPost(ctx context.Context, userID, postID uint64) (bool, error)
}

type HiddenPostRepoImpl struct {
	db *gorm.DB
}

func NewHiddenPostRepo(db *gorm.DB) HiddenPostRepo {
	return &HiddenPostRepoImpl{db: db}
}

// GetHiddenPostIDs 获取用户隐藏的帖子
func (s *HiddenPostRepoImpl) GetHiddenPostIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := s.db.WithContext(ctx).Model(&model.HiddenPost{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, errors.Wrapf(err, "get hidden posts of user %d", userID)
	}
	return ids, nil
}

func (s *HiddenPostRepoImpl) CreateHiddenPost(ctx context.Context, hidden *model.HiddenPost) (bool, error) {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(hidden)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "create hidden post")
	}
	return result.RowsAffected > 0, nil
}

func (s *HiddenPostRepoImpl) DeleteHiddenPost(ctx context.Context, userID, postID uint64) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.HiddenPost{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "delete hidden post")
	}
	return result.RowsAffected > 0, nil
}
