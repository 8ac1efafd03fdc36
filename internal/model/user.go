package model

import (
	"time"
)

type User struct {
	ID             uint64  `gorm:"primaryKey"`
	Username       *string `gorm:"type:varchar(50);uniqueIndex:idx_username"`
	IsBan          bool    `gorm:"type:tinyint(1);default:0"`
	IsDelete       bool    `gorm:"type:tinyint(1);default:0"`
	FollowingCount int     `gorm:"not null;default:0"`
	FollowersCount int     `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	UserDetail UserDetail `gorm:"foreignKey:UserID;references:ID"`
}

func (User) TableName() string {
	return "users"
}
