package model

import "time"

type Category struct {
	ID             uint64  `gorm:"primaryKey"`
	Name           string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_category_name"`
	Description    *string `gorm:"type:varchar(255)"` // 默认可为空
	FollowersCount int     `gorm:"not null;default:0"`
	CreatedAt      time.Time
}

func (Category) TableName() string {
	return "categories"
}
