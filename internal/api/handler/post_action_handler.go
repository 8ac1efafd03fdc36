package handler

import (
	"Agora/internal/api/dto"
	"Agora/internal/pkg/response"
	"Agora/internal/pkg/util"
	"Agora/internal/service"

	"github.com/gin-gonic/gin"
)

type PostActionHandler struct {
	actionSvc service.PostActionService
	quotaSvc  service.InteractionQuotaService
}

func NewPostActionHandler(actionSvc service.PostActionService, quotaSvc service.InteractionQuotaService) *PostActionHandler {
	return &PostActionHandler{
		actionSvc: actionSvc,
		quotaSvc:  quotaSvc,
	}
}

// LikePost 点赞 / 取消点赞
func (s *PostActionHandler) LikePost(c *gin.Context) {
	postID, err := paramID(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	liked, err := s.actionSvc.ToggleLike(c.Request.Context(), c.GetUint64("user_id"), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ToggleResultDTO{Active: liked})
}

// CollectPost 收藏 / 取消收藏
func (s *PostActionHandler) CollectPost(c *gin.Context) {
	postID, err := paramID(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	saved, err := s.actionSvc.ToggleCollect(c.Request.Context(), c.GetUint64("user_id"), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ToggleResultDTO{Active: saved})
}

func (s *PostActionHandler) CreateComment(c *gin.Context) {
	var req dto.CommentCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	comment, err := s.actionSvc.CreateComment(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *PostActionHandler) DeleteComment(c *gin.Context) {
	commentID, err := paramID(c, "comment_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.actionSvc.DeleteComment(c.Request.Context(), c.GetUint64("user_id"), commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetComments 帖子评论楼层
func (s *PostActionHandler) GetComments(c *gin.Context) {
	postID, err := paramID(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	comments, err := s.actionSvc.GetComments(c.Request.Context(), c.GetUint64("user_id"), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comments)
}

func (s *PostActionHandler) GetPostDetail(c *gin.Context) {
	postID, err := paramID(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	detail, err := s.actionSvc.GetPostDetail(c.Request.Context(), c.GetUint64("user_id"), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// GetQuota 当日剩余互动次数
func (s *PostActionHandler) GetQuota(c *gin.Context) {
	remaining, err := s.quotaSvc.Remaining(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.QuotaDTO{Limit: s.quotaSvc.Limit(), Remaining: remaining})
}
