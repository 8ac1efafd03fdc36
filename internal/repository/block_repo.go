package repository

import (
	"Agora/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlockRepo interface {
	GetBlockedIDs(ctx context.Context, blockerID uint64) ([]uint64, error)
	GetBlockerIDs(ctx context.Context, blockedID uint64) ([]uint64, error)
	IsBlockedEither(ctx context.Context, a, b uint64) (bool, error)
	CreateBlock(ctx context.Context, block *model.UserBlock) (bool, error)
	DeleteBlock(ctx context.Context, blockerID, blockedID uint64) (bool, error)
}

type BlockRepoImpl struct {
	db *gorm.DB
}

func NewBlockRepo(db *gorm.DB) BlockRepo {
	return &BlockRepoImpl{db: db}
}

// GetBlockedIDs 获取 blockerID 拉黑的用户
func (s *BlockRepoImpl) GetBlockedIDs(ctx context.Context, blockerID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := s.db.WithContext(ctx).Model(&model.UserBlock{}).
		Where("blocker_id = ?", blockerID).
		Pluck("blocked_id", &ids).Error
	if err != nil {
		return nil, errors.Wrapf(err, "get users blocked by %d", blockerID)
	}
	return ids, nil
}

// GetBlockerIDs 获取拉黑了 blockedID 的用户
func (s *BlockRepoImpl) GetBlockerIDs(ctx context.Context, blockedID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := s.db.WithContext(ctx).Model(&model.UserBlock{}).
		Where("blocked_id = ?", blockedID).
		Pluck("blocker_id", &ids).Error
	if err != nil {
		return nil, errors.Wrapf(err, "get blockers of %d", blockedID)
	}
	return ids, nil
}

// IsBlockedEither 任意一方拉黑另一方即为 true
func (s *BlockRepoImpl) IsBlockedEither(ctx context.Context, a, b uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserBlock{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "check block relation")
	}
	return count > 0, nil
}

func (s *BlockRepoImpl) CreateBlock(ctx context.Context, block *model.UserBlock) (bool, error) {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(block)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "create block")
	}
	return result.RowsAffected > 0, nil
}

func (s *BlockRepoImpl) DeleteBlock(ctx context.Context, blockerID, blockedID uint64) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.UserBlock{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "delete block")
	}
	return result.RowsAffected > 0, nil
}
