package model

import "time"

// InteractionType 计入每日配额的互动类型
type InteractionType int8

const (
	InteractionLike    InteractionType = 1
	InteractionComment InteractionType = 2
)

func (t InteractionType) String() string {
	switch t {
	case InteractionLike:
		return "like"
	case InteractionComment:
		return "comment"
	default:
		return "unknown"
	}
}

// InteractionLog 配额流水，只追加，当日撤销时删除
type InteractionLog struct {
	ID        uint64          `gorm:"primaryKey"`
	UserID    uint64          `gorm:"not null;index:idx_user_created,priority:1"`
	Type      InteractionType `gorm:"not null"`
	CreatedAt time.Time       `gorm:"not null;index:idx_user_created,priority:2;index:idx_created_at"`
}

func (InteractionLog) TableName() string {
	return "interaction_logs"
}
