package handler

import (
	"Agora/internal/api/dto"
	"Agora/internal/pkg/response"
	"Agora/internal/pkg/util"
	"Agora/internal/service"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	moderationSvc service.ModerationService
}

func NewModerationHandler(moderationSvc service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationSvc: moderationSvc}
}

// Moderate 审核员变更帖子状态
func (s *ModerationHandler) Moderate(c *gin.Context) {
	var req dto.ModerationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	action, err := service.ParseModerationAction(req.Action)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.moderationSvc.ApplyModeration(c.Request.Context(), req.PostID, action)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
