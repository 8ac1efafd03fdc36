package dto

// CommentCreateDTO 创建评论请求
type CommentCreateDTO struct {
	PostID        uint64 `json:"post_id" binding:"required"`
	Content       string `json:"content" binding:"required" validate:"min=1,max=1000"`
	RootID        uint64 `json:"root_id"`   // 0 表示一级评论
	ParentID      uint64 `json:"parent_id"` // 父评论 ID
	ReplyToUserID uint64 `json:"reply_to_user_id"`
}

// CommentDTO 评论返回详情
type CommentDTO struct {
	ID            uint64 `json:"id"`
	PostID        uint64 `json:"post_id"`
	UserID        uint64 `json:"user_id"`
	Nickname      string `json:"nickname"`
	AvatarURL     string `json:"avatar_url"`
	Content       string `json:"content"`
	RootID        uint64 `json:"root_id"`
	ParentID      uint64 `json:"parent_id"`
	ReplyToUserID uint64 `json:"reply_to_user_id"`
	IsDeleted     bool   `json:"is_deleted"`
	CreatedAt     string `json:"created_at"`

	SubComments []*CommentDTO `json:"sub_comments"`
}

// PostDetailDTO 帖子详情，分段按顺序排列
type PostDetailDTO struct {
	FeedItemDTO
	Segments []string `json:"segments"`
}

// PostActionReq 点赞 / 收藏 / 隐藏通用请求
type PostActionReq struct {
	PostID uint64 `json:"post_id" binding:"required"`
	Reason int8   `json:"reason" validate:"omitempty,oneof=1 2 3"`
}

// ToggleResultDTO 切换类操作的结果，Active 为操作后的状态
type ToggleResultDTO struct {
	Active bool `json:"active"`
}

// QuotaDTO 当日剩余互动次数
type QuotaDTO struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}
