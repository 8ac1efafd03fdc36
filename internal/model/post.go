package model

import (
	"time"
)

// PostStatus 帖子审核状态
type PostStatus int8

const (
	PostStatusPending   PostStatus = 0 // 审核中
	PostStatusPublished PostStatus = 1 // 已发布
	PostStatusRejected  PostStatus = 2 // 拒绝
	PostStatusManual    PostStatus = 3 // 待人工
)

type Post struct {
	ID            uint64     `gorm:"primaryKey"`
	UserID        uint64     `gorm:"not null;index:idx_user_id" json:"user_id"`
	CategoryID    uint64     `gorm:"not null;default:0;index:idx_category_id" json:"category_id"`
	Title         string     `gorm:"type:varchar(255)" json:"title"`
	Content       string     `gorm:"not null" json:"content"`
	LikesCount    int        `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int        `gorm:"not null;default:0" json:"comments_count"`
	CollectsCount int        `gorm:"not null;default:0" json:"collects_count"`
	ViewsCount    int        `gorm:"not null;default:0" json:"views_count"`
	Status        PostStatus `gorm:"not null;default:0;index:idx_status_created,priority:1" json:"status"`
	IsDeleted     bool       `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt     time.Time  `gorm:"index:idx_status_created,priority:2" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// 关联关系
	User     User          `gorm:"foreignKey:UserID;references:ID"`
	Category Category      `gorm:"foreignKey:CategoryID;references:ID"`
	Segments []PostSegment `gorm:"foreignKey:PostID;references:ID"`
}

func (Post) TableName() string {
	return "posts"
}
