package service

import (
	"Agora/internal/api/config"
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/metrics"
	"Agora/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"sort"
	"time"
)

// ReasonType 推荐理由类型
type ReasonType string

const (
	ReasonCategory ReasonType = "category"
	ReasonPopular  ReasonType = "popular"
	ReasonTrending ReasonType = "trending"
)

const (
	reasonPopularText  = "热门推荐"
	reasonTrendingText = "近期热门"
)

func categoryReason(name string) string {
	return fmt.Sprintf("因为你关注了「%s」", name)
}

type RecommendOptions struct {
	ExcludePostIDs []uint64
}

type RecommendOption func(*RecommendOptions)

// ExcludePosts 额外排除的帖子，例如当前页已经展示的内容
func ExcludePosts(ids []uint64) RecommendOption {
	return func(o *RecommendOptions) {
		o.ExcludePostIDs = append(o.ExcludePostIDs, ids...)
	}
}

type RecommendService interface {
	GetRecommendations(ctx context.Context, viewerID uint64, limit int, opts ...RecommendOption) ([]*dto.RecommendedItemDTO, error)
}

type recommendServiceImpl struct {
	postRepo     repository.PostRepo
	userRepo     repository.UserRepo
	followRepo   repository.UserFollowRepo
	categoryRepo repository.CategoryRepo
	visibility   VisibilityService
	scorer       *CandidateScorer
	builder      *feedItemBuilder
	cfg          config.RecommendConfig
	now          Clock
}

func NewRecommendService(
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	followRepo repository.UserFollowRepo,
	categoryRepo repository.CategoryRepo,
	actionRepo repository.PostActionRepo,
	visibility VisibilityService,
	cfg config.RecommendConfig,
	now Clock,
) RecommendService {
	if now == nil {
		now = SystemClock
	}
	if cfg.CandidatePool <= 0 {
		cfg.CandidatePool = 100
	}
	if cfg.TrendingWindow <= 0 {
		cfg.TrendingWindow = 168
	}
	return &recommendServiceImpl{
		postRepo:     postRepo,
		userRepo:     userRepo,
		followRepo:   followRepo,
		categoryRepo: categoryRepo,
		visibility:   visibility,
		scorer:       NewCandidateScorer(now),
		builder:      newFeedItemBuilder(actionRepo),
		cfg:          cfg,
		now:          now,
	}
}

type scoredPost struct {
	post       *model.Post
	score      float64
	reason     string
	reasonType ReasonType
}

// GetRecommendations 候选打分后按作者去重选取，不足时用近期热门回填
// 存储错误只会让结果变少，唯一向上返回的是用户不存在
func (s *recommendServiceImpl) GetRecommendations(ctx context.Context, viewerID uint64, limit int, opts ...RecommendOption) (res []*dto.RecommendedItemDTO, err error) {
	if limit < 0 {
		return nil, ErrParamInvalid
	}
	if limit == 0 {
		return []*dto.RecommendedItemDTO{}, nil
	}
	start := time.Now()
	defer func() { metrics.ObserveFeedBuild(metrics.FeedRecommend, start, err) }()

	options := &RecommendOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if viewerID > 0 {
		user, err := s.userRepo.GetUserById(ctx, viewerID)
		if err != nil {
			s.degrade(ctx, "viewer", err)
			return []*dto.RecommendedItemDTO{}, nil
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
	}

	followed, categories := s.loadFollows(ctx, viewerID)

	excl, err := s.visibility.Exclusion(ctx, viewerID, true)
	if err != nil {
		s.degrade(ctx, "exclusion", err)
		return []*dto.RecommendedItemDTO{}, nil
	}

	hiddenAndPage := append(append([]uint64{}, excl.PostIDs...), options.ExcludePostIDs...)

	var candidates []*model.Post
	candidates, err = s.postRepo.GetCandidates(ctx, &repository.CandidateQuery{
		ExcludeUserIDs: append(append([]uint64{}, followed...), excl.UserIDs...),
		ExcludePostIDs: hiddenAndPage,
		Limit:          s.cfg.CandidatePool,
	})
	if err != nil {
		s.degrade(ctx, "candidates", err)
		candidates = nil
	}

	scored := make([]*scoredPost, 0, len(candidates))
	for _, p := range candidates {
		scored = append(scored, &scoredPost{post: p, score: s.scorer.Score(p)})
	}
	// 稳定排序，同分保持候选的新旧顺序
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	picked := make([]*scoredPost, 0, limit)
	authors := make(map[uint64]struct{}, limit)
	picked = diversify(picked, authors, scored, limit)
	for _, p := range picked {
		if name, ok := categories[p.post.CategoryID]; ok {
			p.reason, p.reasonType = categoryReason(name), ReasonCategory
		} else {
			p.reason, p.reasonType = reasonPopularText, ReasonPopular
		}
	}

	if len(picked) < limit {
		picked = s.backfill(ctx, excl, hiddenAndPage, picked, authors, limit)
	}

	return s.toDTO(ctx, viewerID, picked), nil
}

// loadFollows 关注的用户与分类，查询失败时按未关注处理
func (s *recommendServiceImpl) loadFollows(ctx context.Context, viewerID uint64) ([]uint64, map[uint64]string) {
	categories := make(map[uint64]string)
	if viewerID == 0 {
		return nil, categories
	}
	followed, err := s.followRepo.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		s.degrade(ctx, "following", err)
		followed = nil
	}
	cats, err := s.categoryRepo.GetFollowedCategories(ctx, viewerID)
	if err != nil {
		s.degrade(ctx, "categories", err)
		cats = nil
	}
	for _, c := range cats {
		categories[c.ID] = c.Name
	}
	return followed, categories
}

// backfill 近期热门回填，同样遵守每个作者一条
func (s *recommendServiceImpl) backfill(
	ctx context.Context,
	excl *Exclusion,
	excludePosts []uint64,
	picked []*scoredPost,
	authors map[uint64]struct{},
	limit int,
) []*scoredPost {
	metrics.RecommendFallbacks.Inc()

	exclude := append([]uint64{}, excludePosts...)
	for _, p := range picked {
		exclude = append(exclude, p.post.ID)
	}
	trending, err := s.postRepo.GetTrending(ctx, &repository.CandidateQuery{
		ExcludeUserIDs: excl.UserIDs,
		ExcludePostIDs: exclude,
		Since:          s.now().Add(-time.Duration(s.cfg.TrendingWindow) * time.Hour),
		Limit:          s.cfg.CandidatePool,
	})
	if err != nil {
		s.degrade(ctx, "trending", err)
		return picked
	}

	fill := make([]*scoredPost, 0, len(trending))
	for _, p := range trending {
		fill = append(fill, &scoredPost{
			post:       p,
			score:      s.scorer.Score(p),
			reason:     reasonTrendingText,
			reasonType: ReasonTrending,
		})
	}
	return diversify(picked, authors, fill, limit)
}

// diversify 依次挑选作者未出现过的帖子，直到达到 limit
func diversify(picked []*scoredPost, authors map[uint64]struct{}, source []*scoredPost, limit int) []*scoredPost {
	for _, p := range source {
		if len(picked) >= limit {
			break
		}
		if _, seen := authors[p.post.UserID]; seen {
			continue
		}
		authors[p.post.UserID] = struct{}{}
		picked = append(picked, p)
	}
	return picked
}

func (s *recommendServiceImpl) toDTO(ctx context.Context, viewerID uint64, picked []*scoredPost) []*dto.RecommendedItemDTO {
	posts := make([]*model.Post, 0, len(picked))
	for _, p := range picked {
		posts = append(posts, p.post)
	}
	items, err := s.builder.build(ctx, viewerID, posts)
	if err != nil {
		s.degrade(ctx, "enrich", err)
		if items == nil {
			return []*dto.RecommendedItemDTO{}
		}
	}

	res := make([]*dto.RecommendedItemDTO, 0, len(items))
	for i, item := range items {
		res = append(res, &dto.RecommendedItemDTO{
			FeedItemDTO: *item,
			Score:       picked[i].score,
			Reason:      picked[i].reason,
			ReasonType:  string(picked[i].reasonType),
		})
	}
	return res
}

func (s *recommendServiceImpl) degrade(ctx context.Context, step string, err error) {
	metrics.RecommendDegraded.WithLabelValues(step).Inc()
	log.ErrorContext(ctx, "recommendation step failed, degrading", "step", step, "err", err)
}
