package es

import (
	"Agora/internal/model"
	"time"
)

// PostES 推荐候选检索用的帖子文档，只保留过滤与排序字段
type PostES struct {
	ID            uint64    `json:"id"`
	UserID        uint64    `json:"user_id"`
	CategoryID    uint64    `json:"category_id"`
	Status        int       `json:"status"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	CollectsCount int       `json:"collects_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewPostES(post *model.Post) *PostES {
	return &PostES{
		ID:            post.ID,
		UserID:        post.UserID,
		CategoryID:    post.CategoryID,
		Status:        int(post.Status),
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		CollectsCount: post.CollectsCount,
		CreatedAt:     post.CreatedAt.UTC(),
	}
}
