package model

import "time"

// HiddenReason 隐藏帖子的原因
type HiddenReason int8

const (
	HiddenReasonNotInterested HiddenReason = 1
	HiddenReasonReported      HiddenReason = 2
	HiddenReasonOther         HiddenReason = 3
)

type HiddenPost struct {
	UserID    uint64       `gorm:"primaryKey" json:"userId"`
	PostID    uint64       `gorm:"primaryKey" json:"postId"`
	Reason    HiddenReason `gorm:"not null;default:1" json:"reason"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (HiddenPost) TableName() string {
	return "hidden_posts"
}
