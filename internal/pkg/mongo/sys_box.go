package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const sysBoxCollection = "sys_box"

// SysBoxModel 通知箱中的一条通知
type SysBoxModel struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	// EventID 事件唯一标识，消息重复投递时据此去重
	EventID    string         `bson:"event_id" json:"eventId"`
	ReceiverID uint64         `bson:"receiver_id" json:"receiverId"`
	SenderID   uint64         `bson:"sender_id" json:"senderId"` // 0 表示系统
	Type       int8           `bson:"type" json:"type"`          // 1-点赞 2-收藏 3-评论 4-关注 5-审核
	TargetID   uint64         `bson:"target_id" json:"targetId"`
	Content    string         `bson:"content" json:"content"`
	Payload    map[string]any `bson:"payload,omitempty" json:"payload"`
	IsRead     bool           `bson:"is_read" json:"isRead"`
	CreatedAt  time.Time      `bson:"created_at" json:"createdAt"`
}
