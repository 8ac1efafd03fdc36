package handler

import (
	"Agora/internal/api/config"
	"Agora/internal/api/dto"
	"Agora/internal/pkg/response"
	"Agora/internal/pkg/util"
	"Agora/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedSvc      service.FeedService
	discoverSvc  service.DiscoverService
	recommendSvc service.RecommendService
	feedCfg      config.FeedConfig
	recommendCfg config.RecommendConfig
}

func NewFeedHandler(
	feedSvc service.FeedService,
	discoverSvc service.DiscoverService,
	recommendSvc service.RecommendService,
	feedCfg config.FeedConfig,
	recommendCfg config.RecommendConfig,
) *FeedHandler {
	return &FeedHandler{
		feedSvc:      feedSvc,
		discoverSvc:  discoverSvc,
		recommendSvc: recommendSvc,
		feedCfg:      feedCfg,
		recommendCfg: recommendCfg,
	}
}

// GetFollowingFeed 关注流，需要登录
func (s *FeedHandler) GetFollowingFeed(c *gin.Context) {
	page, pageSize, err := bindPage(c, s.feedCfg.DefaultPageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.feedSvc.GetFeed(c.Request.Context(), c.GetUint64("user_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetDiscoverFeed 发现流，匿名可访问
func (s *FeedHandler) GetDiscoverFeed(c *gin.Context) {
	page, pageSize, err := bindPage(c, s.feedCfg.DefaultPageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.discoverSvc.GetDiscoverFeed(c.Request.Context(), c.GetUint64("user_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetRecommendations 推荐列表，limit 超过上限时按上限截断
func (s *FeedHandler) GetRecommendations(c *gin.Context) {
	req := dto.RecommendReq{Limit: s.recommendCfg.DefaultLimit}
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if s.recommendCfg.MaxLimit > 0 && req.Limit > s.recommendCfg.MaxLimit {
		req.Limit = s.recommendCfg.MaxLimit
	}

	res, err := s.recommendSvc.GetRecommendations(c.Request.Context(), c.GetUint64("user_id"), req.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
