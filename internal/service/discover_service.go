package service

import (
	"Agora/internal/api/config"
	"Agora/internal/api/dto"
	"Agora/internal/pkg/metrics"
	"Agora/internal/repository"
	"context"
	log "log/slog"
	"time"
)

type DiscoverService interface {
	// GetDiscoverFeed 全站最新帖子，按固定间隔插入推荐
	GetDiscoverFeed(ctx context.Context, viewerID uint64, page, pageSize int) (*dto.PageDTO[*dto.DiscoverItemDTO], error)
}

type discoverServiceImpl struct {
	postRepo   repository.PostRepo
	userRepo   repository.UserRepo
	visibility VisibilityService
	recommend  RecommendService
	builder    *feedItemBuilder
	cfg        config.FeedConfig
}

func NewDiscoverService(
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	actionRepo repository.PostActionRepo,
	visibility VisibilityService,
	recommend RecommendService,
	cfg config.FeedConfig,
) DiscoverService {
	return &discoverServiceImpl{
		postRepo:   postRepo,
		userRepo:   userRepo,
		visibility: visibility,
		recommend:  recommend,
		builder:    newFeedItemBuilder(actionRepo),
		cfg:        cfg,
	}
}

func (s *discoverServiceImpl) GetDiscoverFeed(ctx context.Context, viewerID uint64, page, pageSize int) (res *dto.PageDTO[*dto.DiscoverItemDTO], err error) {
	if err = validatePage(page, pageSize, s.cfg.MaxPageSize); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.ObserveFeedBuild(metrics.FeedDiscover, start, err) }()

	// 匿名用户看到未过滤的全站内容
	excl := newExclusion(nil, nil)
	if viewerID > 0 {
		user, err := s.userRepo.GetUserById(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		if excl, err = s.visibility.Exclusion(ctx, viewerID, false); err != nil {
			return nil, err
		}
	}

	posts, total, err := s.postRepo.GetFeedPage(ctx, &repository.FeedQuery{
		ExcludeUserIDs: excl.UserIDs,
		ExcludePostIDs: excl.PostIDs,
		Offset:         (page - 1) * pageSize,
		Limit:          pageSize,
	})
	if err != nil {
		return nil, err
	}
	items, err := s.builder.build(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}

	normal := make([]*dto.DiscoverItemDTO, 0, len(items))
	pageIDs := make([]uint64, 0, len(items))
	for _, item := range items {
		normal = append(normal, &dto.DiscoverItemDTO{Type: dto.DiscoverItemPost, Post: item})
		pageIDs = append(pageIDs, item.ID)
	}

	rate := s.cfg.InsertionRate
	recs := s.recommendations(ctx, viewerID, len(normal), rate, pageIDs)
	return newPage(Interleave(normal, recs, rate), page, pageSize, total), nil
}

// recommendations 按插入间隔计算需要的推荐数，失败时只返回普通内容
func (s *discoverServiceImpl) recommendations(ctx context.Context, viewerID uint64, n, rate int, pageIDs []uint64) []*dto.DiscoverItemDTO {
	if viewerID == 0 || rate <= 0 {
		return nil
	}
	needed := n / rate
	if needed == 0 {
		return nil
	}
	recs, err := s.recommend.GetRecommendations(ctx, viewerID, needed, ExcludePosts(pageIDs))
	if err != nil {
		log.WarnContext(ctx, "discover feed without recommendations", "viewer_id", viewerID, "err", err)
		return nil
	}
	out := make([]*dto.DiscoverItemDTO, 0, len(recs))
	for _, r := range recs {
		item := r.FeedItemDTO
		out = append(out, &dto.DiscoverItemDTO{
			Type:       dto.DiscoverItemRecommendation,
			Post:       &item,
			Reason:     r.Reason,
			ReasonType: r.ReasonType,
		})
	}
	return out
}

// Interleave 第 i 个位置（从 1 开始）满足 i%(rate+1)==0 且仍有推荐时放入推荐，否则放入普通内容
// 普通内容用完后只在间隔点继续放推荐
func Interleave[T any](normal, recs []T, rate int) []T {
	if rate <= 0 || len(recs) == 0 {
		return normal
	}
	out := make([]T, 0, len(normal)+len(recs))
	ni, ri := 0, 0
	for pos := 1; ; pos++ {
		cadence := pos%(rate+1) == 0
		switch {
		case cadence && ri < len(recs):
			out = append(out, recs[ri])
			ri++
		case ni < len(normal):
			out = append(out, normal[ni])
			ni++
		default:
			return out
		}
	}
}
