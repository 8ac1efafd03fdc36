package kafka

import (
	"Agora/internal/pkg/logger"
	"Agora/internal/pkg/mongo"
	"Agora/internal/service"
	"context"
	"fmt"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// NotificationHandler 消费通知事件并写入通知箱
type NotificationHandler struct {
	sysBoxRepo mongo.SysBoxRepo
}

func NewNotificationHandler(sysBox mongo.SysBoxRepo) *NotificationHandler {
	return &NotificationHandler{sysBoxRepo: sysBox}
}

func (s *NotificationHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("notification consumer setup")
	return nil
}

func (s *NotificationHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("notification consumer cleanup")
	return nil
}

func (s *NotificationHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	if err := pullMessageBatch(session, claim, s.logic); err != nil {
		log.Error("notification batch error", "err", err)
		return err
	}
	return nil
}

func (s *NotificationHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	for _, h := range msg.Headers {
		if h != nil && string(h.Key) == logger.TraceIDKey && len(h.Value) > 0 {
			ctx = logger.WithTraceID(ctx, string(h.Value))
		}
	}

	var event service.NotificationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrSkipMessage, err)
	}
	if event.ReceiverID == 0 {
		return fmt.Errorf("%w: empty receiver", ErrSkipMessage)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = msg.Timestamp
	}

	err := s.sysBoxRepo.CreateNotification(ctx, &mongo.SysBoxModel{
		EventID:    event.EventID,
		ReceiverID: event.ReceiverID,
		SenderID:   event.SenderID,
		Type:       int8(event.Type),
		TargetID:   event.TargetID,
		Content:    event.Content,
		CreatedAt:  event.CreatedAt,
	})
	if err != nil {
		return err
	}
	log.DebugContext(ctx, "notification stored", "event_id", event.EventID, "receiver_id", event.ReceiverID, "type", event.Type)
	return nil
}
