package service

import (
	"Agora/internal/api/config"
	"Agora/internal/api/dto"
	"Agora/internal/pkg/metrics"
	"Agora/internal/repository"
	"context"
	"time"
)

type FeedService interface {
	// GetFeed 关注流：关注的用户或分类下的帖子，按发布时间倒序
	GetFeed(ctx context.Context, viewerID uint64, page, pageSize int) (*dto.PageDTO[*dto.FeedItemDTO], error)
}

type feedServiceImpl struct {
	postRepo     repository.PostRepo
	userRepo     repository.UserRepo
	followRepo   repository.UserFollowRepo
	categoryRepo repository.CategoryRepo
	visibility   VisibilityService
	builder      *feedItemBuilder
	cfg          config.FeedConfig
}

func NewFeedService(
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	followRepo repository.UserFollowRepo,
	categoryRepo repository.CategoryRepo,
	actionRepo repository.PostActionRepo,
	visibility VisibilityService,
	cfg config.FeedConfig,
) FeedService {
	return &feedServiceImpl{
		postRepo:     postRepo,
		userRepo:     userRepo,
		followRepo:   followRepo,
		categoryRepo: categoryRepo,
		visibility:   visibility,
		builder:      newFeedItemBuilder(actionRepo),
		cfg:          cfg,
	}
}

func (s *feedServiceImpl) GetFeed(ctx context.Context, viewerID uint64, page, pageSize int) (res *dto.PageDTO[*dto.FeedItemDTO], err error) {
	if err = validatePage(page, pageSize, s.cfg.MaxPageSize); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.ObserveFeedBuild(metrics.FeedFollowing, start, err) }()

	user, err := s.userRepo.GetUserById(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	followed, err := s.followRepo.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.GetFollowedCategories(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	categoryIDs := make([]uint64, 0, len(categories))
	for _, c := range categories {
		categoryIDs = append(categoryIDs, c.ID)
	}

	excl, err := s.visibility.Exclusion(ctx, viewerID, false)
	if err != nil {
		return nil, err
	}

	// 关注集合为空时也必须是非 nil 切片，否则仓储层会放开来源限制
	posts, total, err := s.postRepo.GetFeedPage(ctx, &repository.FeedQuery{
		FollowedUserIDs:     append([]uint64{}, followed...),
		FollowedCategoryIDs: categoryIDs,
		ExcludeUserIDs:      excl.UserIDs,
		ExcludePostIDs:      excl.PostIDs,
		Offset:              (page - 1) * pageSize,
		Limit:               pageSize,
	})
	if err != nil {
		return nil, err
	}

	items, err := s.builder.build(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}
	return newPage(items, page, pageSize, total), nil
}

func validatePage(page, pageSize, maxPageSize int) error {
	if page < 1 || pageSize < 1 {
		return ErrParamInvalid
	}
	if maxPageSize > 0 && pageSize > maxPageSize {
		return ErrParamInvalid
	}
	return nil
}

func newPage[T any](items []T, page, pageSize int, total int64) *dto.PageDTO[T] {
	return &dto.PageDTO[T]{
		List:     items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  int64(page*pageSize) < total,
	}
}
