package repository

import (
	"Agora/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostActionRepo interface {
	GetLike(ctx context.Context, userID, postID uint64) (*model.Like, error)
	CreateLike(ctx context.Context, like *model.Like) (bool, error)
	DeleteLike(ctx context.Context, userID, postID uint64) (bool, error)
	GetLikedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) ([]uint64, error)

	GetCollection(ctx context.Context, userID, postID uint64) (*model.Collection, error)
	CreateCollection(ctx context.Context, collection *model.Collection) (bool, error)
	DeleteCollection(ctx context.Context, userID, postID uint64) (bool, error)
	GetCollectedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) ([]uint64, error)

	CreateComment(ctx context.Context, comment *model.PostComment) error
	SoftDeleteComment(ctx context.Context, commentID uint64) (bool, error)
	GetCommentByID(ctx context.Context, commentID uint64) (*model.PostComment, error)
	GetCommentsByPostID(ctx context.Context, postID uint64) ([]*model.PostComment, error)
}

type PostActionRepoImpl struct {
	db *gorm.DB
}

func NewPostActionRepo(db *gorm.DB) PostActionRepo {
	return &PostActionRepoImpl{db}
}

func (s *PostActionRepoImpl) GetLike(ctx context.Context, userID, postID uint64) (*model.Like, error) {
	var like model.Like
	err := s.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get like")
	}
	return &like, nil
}

// CreateLike 已点赞时返回 false
func (s *PostActionRepoImpl) CreateLike(ctx context.Context, like *model.Like) (bool, error) {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "create like")
	}
	return result.RowsAffected > 0, nil
}

func (s *PostActionRepoImpl) DeleteLike(ctx context.Context, userID, postID uint64) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Like{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "delete like")
	}
	return result.RowsAffected > 0, nil
}

// GetLikedPostIDs 返回 postIDs 中用户已点赞的部分
func (s *PostActionRepoImpl) GetLikedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	if userID == 0 || len(postIDs) == 0 {
		return ids, nil
	}
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "get liked post ids")
	}
	return ids, nil
}

func (s *PostActionRepoImpl) GetCollection(ctx context.Context, userID, postID uint64) (*model.Collection, error) {
	var collection model.Collection
	err := s.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).First(&collection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get collection")
	}
	return &collection, nil
}

func (s *PostActionRepoImpl) CreateCollection(ctx context.Context, collection *model.Collection) (bool, error) {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(collection)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "create collection")
	}
	return result.RowsAffected > 0, nil
}

func (s *PostActionRepoImpl) DeleteCollection(ctx context.Context, userID, postID uint64) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Collection{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "delete collection")
	}
	return result.RowsAffected > 0, nil
}

// GetCollectedPostIDs 返回 postIDs 中用户已收藏的部分
func (s *PostActionRepoImpl) GetCollectedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	if userID == 0 || len(postIDs) == 0 {
		return ids, nil
	}
	err := s.db.WithContext(ctx).Model(&model.Collection{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "get collected post ids")
	}
	return ids, nil
}

func (s *PostActionRepoImpl) CreateComment(ctx context.Context, comment *model.PostComment) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return errors.Wrap(err, "create comment")
	}
	return nil
}

// SoftDeleteComment 标记删除，已删除时返回 false
func (s *PostActionRepoImpl) SoftDeleteComment(ctx context.Context, commentID uint64) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.PostComment{}).
		Where("id = ? AND is_deleted = ?", commentID, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return false, errors.Wrapf(result.Error, "delete comment %d", commentID)
	}
	return result.RowsAffected > 0, nil
}

func (s *PostActionRepoImpl) GetCommentByID(ctx context.Context, commentID uint64) (*model.PostComment, error) {
	var comment model.PostComment
	err := s.db.WithContext(ctx).Where("is_deleted = ?", false).First(&comment, commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get comment %d", commentID)
	}
	return &comment, nil
}

// GetCommentsByPostID 获取帖子下全部评论，已删除的保留占位以维持楼层结构
func (s *PostActionRepoImpl) GetCommentsByPostID(ctx context.Context, postID uint64) ([]*model.PostComment, error) {
	comments := make([]*model.PostComment, 0)
	err := s.db.WithContext(ctx).
		Preload("User.UserDetail").
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, errors.Wrapf(err, "get comments of post %d", postID)
	}
	return comments, nil
}
