package model

import "time"

type UserFollow struct {
	FollowerID  uint64    `gorm:"primaryKey" json:"followerId"`
	FollowingID uint64    `gorm:"primaryKey;index:idx_following_id" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (UserFollow) TableName() string {
	return "user_follows"
}

type CategoryFollow struct {
	UserID     uint64    `gorm:"primaryKey" json:"userId"`
	CategoryID uint64    `gorm:"primaryKey;index:idx_category_follow_category_id" json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`

	Category Category `gorm:"foreignKey:CategoryID;references:ID"`
}

func (CategoryFollow) TableName() string {
	return "category_follows"
}

// UserBlock 拉黑关系，可见性双向屏蔽
type UserBlock struct {
	BlockerID uint64    `gorm:"primaryKey" json:"blockerId"`
	BlockedID uint64    `gorm:"primaryKey;index:idx_blocked_id" json:"blockedId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (UserBlock) TableName() string {
	return "user_blocks"
}
