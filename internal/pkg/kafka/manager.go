package kafka

import (
	"Agora/internal/api/config"
	"Agora/internal/pkg/mongo"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理 Kafka 消费者
type ConsumerManager struct {
	notificationConsumer sarama.ConsumerGroup
	notificationHandler  sarama.ConsumerGroupHandler
	notificationTopic    string
}

func NewConsumerManager(cfg *config.Config, sysBoxRepo mongo.SysBoxRepo) (*ConsumerManager, error) {
	notificationConsumer, err := sarama.NewConsumerGroup(
		cfg.Kafka.Brokers,
		cfg.KafkaNotificationConsumer.GroupID,
		newConsumerConfig(cfg.Kafka),
	)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		notificationConsumer: notificationConsumer,
		notificationHandler:  NewNotificationHandler(sysBoxRepo),
		notificationTopic:    cfg.KafkaNotificationConsumer.Topic,
	}, nil
}

// Start 阻塞到 ctx 结束，期间消费组重平衡后自动重新加入
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		for err := range m.notificationConsumer.Errors() {
			log.Error("notification consumer error", "err", err)
		}
	}()

	go func() {
		log.Info("Notification consumer started", "topic", m.notificationTopic)
		for {
			if err := m.notificationConsumer.Consume(ctx, []string{m.notificationTopic}, m.notificationHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.notificationConsumer.Close(); err != nil {
		log.Error("Failed to close notification consumer", "err", err)
	}
	return nil
}
