package service

import (
	"context"
	"time"
)

// NotificationType 通知类型
type NotificationType int8

const (
	NotificationLike       NotificationType = 1
	NotificationCollect    NotificationType = 2
	NotificationComment    NotificationType = 3
	NotificationFollow     NotificationType = 4
	NotificationModeration NotificationType = 5
)

// NotificationEvent 互动完成后发出的通知事件
type NotificationEvent struct {
	// EventID 投递方生成，消费端据此去重
	EventID    string           `json:"event_id"`
	ReceiverID uint64           `json:"receiver_id"`
	SenderID   uint64           `json:"sender_id"` // 0 表示系统
	Type       NotificationType `json:"type"`
	TargetID   uint64           `json:"target_id"`
	Content    string           `json:"content"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Notifier 通知投递，调用方不等待结果
type Notifier interface {
	Notify(ctx context.Context, event *NotificationEvent)
}

// NopNotifier 未配置消息队列时使用
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, *NotificationEvent) {}

// notify 自己对自己的互动不通知
func notify(ctx context.Context, n Notifier, event *NotificationEvent) {
	if n == nil || event.ReceiverID == 0 || event.ReceiverID == event.SenderID {
		return
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	n.Notify(ctx, event)
}
