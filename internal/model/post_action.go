package model

import (
	"time"
)

// Like 点赞，存在即已点赞
type Like struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	PostID    uint64    `gorm:"primaryKey;index:idx_like_post_id" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Like) TableName() string {
	return "likes"
}

// Collection 收藏，存在即已收藏
type Collection struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	PostID    uint64    `gorm:"primaryKey;index:idx_collection_post_id" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Collection) TableName() string {
	return "collections"
}
