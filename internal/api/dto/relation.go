package dto

// ModerationReq 审核操作请求
type ModerationReq struct {
	PostID uint64 `json:"post_id" binding:"required"`
	Action string `json:"action" binding:"required" validate:"oneof=approve reject escalate restore"`
}

// ModerationResultDTO 审核结果
type ModerationResultDTO struct {
	PostID uint64 `json:"post_id"`
	Status int8   `json:"status"`
}
