package repository

import (
	"Agora/internal/model"
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type InteractionLogRepo interface {
	CreateLog(ctx context.Context, log *model.InteractionLog) error
	CountSince(ctx context.Context, userID uint64, since time.Time) (int64, error)
	GetLatestSince(ctx context.Context, userID uint64, typ model.InteractionType, since time.Time) (*model.InteractionLog, error)
	DeleteLog(ctx context.Context, id uint64) error
	PurgeBefore(ctx context.Context, before time.Time, batchSize int) (int64, error)
}

type InteractionLogRepoImpl struct {
	db *gorm.DB
}

func NewInteractionLogRepo(db *gorm.DB) InteractionLogRepo {
	return &InteractionLogRepoImpl{db: db}
}

func (s *InteractionLogRepoImpl) CreateLog(ctx context.Context, log *model.InteractionLog) error {
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return errors.Wrap(err, "create interaction log")
	}
	return nil
}

// CountSince 统计 since 之后的互动次数
func (s *InteractionLogRepoImpl) CountSince(ctx context.Context, userID uint64, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.InteractionLog{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrapf(err, "count interactions of user %d", userID)
	}
	return count, nil
}

// GetLatestSince 获取 since 之后最近一条指定类型的流水，不存在返回 nil
func (s *InteractionLogRepoImpl) GetLatestSince(ctx context.Context, userID uint64, typ model.InteractionType, since time.Time) (*model.InteractionLog, error) {
	var log model.InteractionLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND created_at >= ?", userID, typ, since).
		Order("created_at DESC").Order("id DESC").
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get latest interaction of user %d", userID)
	}
	return &log, nil
}

func (s *InteractionLogRepoImpl) DeleteLog(ctx context.Context, id uint64) error {
	if err := s.db.WithContext(ctx).Delete(&model.InteractionLog{}, id).Error; err != nil {
		return errors.Wrapf(err, "delete interaction log %d", id)
	}
	return nil
}

// PurgeBefore 分批删除 before 之前的流水，返回删除总数
func (s *InteractionLogRepoImpl) PurgeBefore(ctx context.Context, before time.Time, batchSize int) (int64, error) {
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		ids := make([]uint64, 0, batchSize)
		err := s.db.WithContext(ctx).Model(&model.InteractionLog{}).
			Where("created_at < ?", before).
			Order("id ASC").
			Limit(batchSize).
			Pluck("id", &ids).Error
		if err != nil {
			return total, errors.Wrap(err, "select expired interaction logs")
		}
		if len(ids) == 0 {
			return total, nil
		}
		result := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.InteractionLog{})
		if result.Error != nil {
			return total, errors.Wrap(result.Error, "purge interaction logs")
		}
		total += result.RowsAffected
		if len(ids) < batchSize {
			return total, nil
		}
	}
}
