package repository

import (
	"Agora/internal/model"
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PostCounter 可原子增减的帖子计数列
type PostCounter string

const (
	CounterLikes    PostCounter = "likes_count"
	CounterComments PostCounter = "comments_count"
	CounterCollects PostCounter = "collects_count"
	CounterViews    PostCounter = "views_count"
)

// FeedQuery 分页信息流查询条件
type FeedQuery struct {
	// FollowedUserIDs / FollowedCategoryIDs 为 nil 时不限制来源
	FollowedUserIDs     []uint64
	FollowedCategoryIDs []uint64
	ExcludeUserIDs      []uint64
	ExcludePostIDs      []uint64
	Offset              int
	Limit               int
}

// CandidateQuery 推荐候选查询条件
type CandidateQuery struct {
	ExcludeUserIDs []uint64
	ExcludePostIDs []uint64
	Since          time.Time // 零值表示不限时间
	Limit          int
}

type PostRepo interface {
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	GetPostDetail(ctx context.Context, id uint64) (*model.Post, error)
	GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error)
	GetFeedPage(ctx context.Context, q *FeedQuery) ([]*model.Post, int64, error)
	GetCandidates(ctx context.Context, q *CandidateQuery) ([]*model.Post, error)
	GetTrending(ctx context.Context, q *CandidateQuery) ([]*model.Post, error)
	IncrCounter(ctx context.Context, postID uint64, counter PostCounter, delta int) error
	UpdateStatus(ctx context.Context, id uint64, from, to model.PostStatus) (bool, error)
	ListCreatedSince(ctx context.Context, since time.Time, afterID uint64, limit int) ([]*model.Post, error)
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

// GetPost 获取帖子基础信息，不存在或已删除返回 nil
func (s *PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Where("is_deleted = ?", false).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get post %d", id)
	}
	return &post, nil
}

// GetPostDetail 获取帖子详情，包含作者、分类与有序分段
func (s *PostRepoImpl) GetPostDetail(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).
		Scopes(withAuthor).
		Preload("Segments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("is_deleted = ?", false).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get post detail %d", id)
	}
	return &post, nil
}

// GetPostByIds 批量获取帖子并预加载作者摘要，返回顺序与 ids 一致
func (s *PostRepoImpl) GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error) {
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}
	var posts []*model.Post
	err := s.db.WithContext(ctx).Scopes(withAuthor).Where("id IN ?", ids).Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "get posts by ids")
	}

	byID := make(map[uint64]*model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*model.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// GetFeedPage 按时间倒序分页获取信息流，同时返回满足条件的总数
func (s *PostRepoImpl) GetFeedPage(ctx context.Context, q *FeedQuery) ([]*model.Post, int64, error) {
	restricted := q.FollowedUserIDs != nil || q.FollowedCategoryIDs != nil
	if restricted && len(q.FollowedUserIDs) == 0 && len(q.FollowedCategoryIDs) == 0 {
		return []*model.Post{}, 0, nil
	}

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(publishedPosts, excludeAuthors(q.ExcludeUserIDs), excludePosts(q.ExcludePostIDs))
		if restricted {
			db = db.Scopes(followedSources(q.FollowedUserIDs, q.FollowedCategoryIDs))
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Post{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count feed")
	}
	if total == 0 {
		return []*model.Post{}, 0, nil
	}

	posts := make([]*model.Post, 0, q.Limit)
	err := s.db.WithContext(ctx).
		Scopes(filter, newestFirst, withAuthor, paginate(q.Offset, q.Limit)).
		Find(&posts).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "query feed page")
	}
	return posts, total, nil
}

// GetCandidates 获取最新的推荐候选
func (s *PostRepoImpl) GetCandidates(ctx context.Context, q *CandidateQuery) ([]*model.Post, error) {
	posts := make([]*model.Post, 0, q.Limit)
	db := s.db.WithContext(ctx).
		Scopes(publishedPosts, excludeAuthors(q.ExcludeUserIDs), excludePosts(q.ExcludePostIDs))
	if !q.Since.IsZero() {
		db = db.Where("posts.created_at >= ?", q.Since)
	}
	err := db.Scopes(newestFirst, withAuthor).Limit(q.Limit).Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "query recommend candidates")
	}
	return posts, nil
}

// GetTrending 获取时间窗口内点赞最多的帖子
func (s *PostRepoImpl) GetTrending(ctx context.Context, q *CandidateQuery) ([]*model.Post, error) {
	posts := make([]*model.Post, 0, q.Limit)
	err := s.db.WithContext(ctx).
		Scopes(publishedPosts, excludeAuthors(q.ExcludeUserIDs), excludePosts(q.ExcludePostIDs)).
		Where("posts.created_at >= ?", q.Since).
		Order("posts.likes_count DESC").
		Scopes(newestFirst, withAuthor).
		Limit(q.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "query trending posts")
	}
	return posts, nil
}

// IncrCounter 原子增减计数，减少时不会低于 0
func (s *PostRepoImpl) IncrCounter(ctx context.Context, postID uint64, counter PostCounter, delta int) error {
	if delta == 0 {
		return nil
	}
	col := string(counter)
	db := s.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", postID)
	if delta < 0 {
		db = db.Where(col+" >= ?", -delta)
	}
	if err := db.UpdateColumn(col, gorm.Expr(col+" + ?", delta)).Error; err != nil {
		return errors.Wrapf(err, "incr %s of post %d", col, postID)
	}
	return nil
}

// UpdateStatus 仅当当前状态为 from 时更新为 to
func (s *PostRepoImpl) UpdateStatus(ctx context.Context, id uint64, from, to model.PostStatus) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND status = ? AND is_deleted = ?", id, from, false).
		Update("status", to)
	if result.Error != nil {
		return false, errors.Wrapf(result.Error, "update status of post %d", id)
	}
	return result.RowsAffected > 0, nil
}

// ListCreatedSince 按 id 升序游标遍历 since 之后创建的帖子，包含未发布与已删除的
func (s *PostRepoImpl) ListCreatedSince(ctx context.Context, since time.Time, afterID uint64, limit int) ([]*model.Post, error) {
	posts := make([]*model.Post, 0, limit)
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND id > ?", since, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "list posts created since")
	}
	return posts, nil
}
