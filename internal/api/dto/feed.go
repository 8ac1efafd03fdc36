package dto

// AuthorDTO 作者摘要
type AuthorDTO struct {
	UserID    uint64 `json:"user_id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

// FeedItemDTO 信息流中的帖子
type FeedItemDTO struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	CategoryID    uint64    `json:"category_id"`
	CategoryName  string    `json:"category_name"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	CollectsCount int       `json:"collects_count"`
	ViewsCount    int       `json:"views_count"`
	CreatedAt     string    `json:"created_at"`
	Author        AuthorDTO `json:"author"`
	HasLiked      bool      `json:"has_liked"`
	HasSaved      bool      `json:"has_saved"`
}

// RecommendedItemDTO 推荐结果，附带得分与推荐理由
type RecommendedItemDTO struct {
	FeedItemDTO
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
	ReasonType string  `json:"reason_type"`
}

const (
	DiscoverItemPost           = "post"
	DiscoverItemRecommendation = "recommendation"
)

// DiscoverItemDTO 发现流条目，Type 为 post 或 recommendation
type DiscoverItemDTO struct {
	Type       string       `json:"type"`
	Post       *FeedItemDTO `json:"post"`
	Reason     string       `json:"reason,omitempty"`
	ReasonType string       `json:"reason_type,omitempty"`
}

// RecommendReq 推荐请求参数
type RecommendReq struct {
	Limit int `form:"limit" validate:"omitempty,min=0"`
}
