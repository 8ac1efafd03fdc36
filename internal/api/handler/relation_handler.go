package handler

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/response"
	"Agora/internal/pkg/util"
	"Agora/internal/service"

	"github.com/gin-gonic/gin"
)

type RelationHandler struct {
	relationSvc service.RelationService
}

func NewRelationHandler(relationSvc service.RelationService) *RelationHandler {
	return &RelationHandler{relationSvc: relationSvc}
}

// FollowUser 关注 / 取消关注用户
func (s *RelationHandler) FollowUser(c *gin.Context) {
	targetID, err := paramID(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	following, err := s.relationSvc.ToggleFollowUser(c.Request.Context(), c.GetUint64("user_id"), targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ToggleResultDTO{Active: following})
}

// FollowCategory 关注 / 取消关注分类
func (s *RelationHandler) FollowCategory(c *gin.Context) {
	categoryID, err := paramID(c, "category_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	following, err := s.relationSvc.ToggleFollowCategory(c.Request.Context(), c.GetUint64("user_id"), categoryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ToggleResultDTO{Active: following})
}

// BlockUser 拉黑 / 取消拉黑
func (s *RelationHandler) BlockUser(c *gin.Context) {
	targetID, err := paramID(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	blocking, err := s.relationSvc.ToggleBlock(c.Request.Context(), c.GetUint64("user_id"), targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ToggleResultDTO{Active: blocking})
}

// HidePost 隐藏 / 取消隐藏帖子
func (s *RelationHandler) HidePost(c *gin.Context) {
	var req dto.PostActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	hidden, err := s.relationSvc.ToggleHidePost(c.Request.Context(), c.GetUint64("user_id"), req.PostID, model.HiddenReason(req.Reason))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ToggleResultDTO{Active: hidden})
}
