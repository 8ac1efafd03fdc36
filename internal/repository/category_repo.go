package repository

import (
	"Agora/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepo interface {
	GetCategory(ctx context.Context, id uint64) (*model.Category, error)
	GetFollowedCategories(ctx context.Context, userID uint64) ([]*model.Category, error)
	CreateCategoryFollow(ctx context.Context, follow *model.CategoryFollow) (bool, error)
	DeleteCategoryFollow(ctx context.Context, userID, categoryID uint64) (bool, error)
	IncrFollowers(ctx context.Context, categoryID uint64, delta int) error
	ReconcileFollowers(ctx context.Context) (int64, error)
}

type CategoryRepoImpl struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepo {
	return &CategoryRepoImpl{db: db}
}

func (s *CategoryRepoImpl) GetCategory(ctx context.Context, id uint64) (*model.Category, error) {
	var category model.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get category %d", id)
	}
	return &category, nil
}

// GetFollowedCategories 获取用户关注的分类
func (s *CategoryRepoImpl) GetFollowedCategories(ctx context.Context, userID uint64) ([]*model.Category, error) {
	categories := make([]*model.Category, 0)
	err := s.db.WithContext(ctx).
		Joins("JOIN category_follows ON category_follows.category_id = categories.id").
		Where("category_follows.user_id = ?", userID).
		Order("categories.id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, errors.Wrapf(err, "get followed categories of user %d", userID)
	}
	return categories, nil
}

func (s *CategoryRepoImpl) CreateCategoryFollow(ctx context.Context, follow *model.CategoryFollow) (bool, error) {
	result := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(follow)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "create category follow")
	}
	return result.RowsAffected > 0, nil
}

func (s *CategoryRepoImpl) DeleteCategoryFollow(ctx context.Context, userID, categoryID uint64) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Delete(&model.CategoryFollow{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "delete category follow")
	}
	return result.RowsAffected > 0, nil
}

// IncrFollowers 原子调整分类关注数，不会低于 0
func (s *CategoryRepoImpl) IncrFollowers(ctx context.Context, categoryID uint64, delta int) error {
	if delta == 0 {
		return nil
	}
	db := s.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", categoryID)
	if delta < 0 {
		db = db.Where("followers_count >= ?", -delta)
	}
	if err := db.UpdateColumn("followers_count", gorm.Expr("followers_count + ?", delta)).Error; err != nil {
		return errors.Wrapf(err, "incr followers of category %d", categoryID)
	}
	return nil
}

// ReconcileFollowers 按关注关系重新计算分类关注数
func (s *CategoryRepoImpl) ReconcileFollowers(ctx context.Context) (int64, error) {
	const count = "(SELECT COUNT(*) FROM category_follows WHERE category_follows.category_id = categories.id)"
	result := s.db.WithContext(ctx).Model(&model.Category{}).
		Where("followers_count <> " + count).
		UpdateColumn("followers_count", gorm.Expr(count))
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "reconcile category followers")
	}
	return result.RowsAffected, nil
}
