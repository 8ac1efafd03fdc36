package kafka

import (
	"Agora/internal/api/config"
	"Agora/internal/pkg/logger"
	"Agora/internal/pkg/metrics"
	"Agora/internal/service"
	"context"
	log "log/slog"
	"strconv"
	"sync"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// NotificationProducer 将通知事件异步写入 Kafka，调用方不等待投递结果
type NotificationProducer struct {
	producer sarama.AsyncProducer
	topic    string
	wg       sync.WaitGroup
}

var _ service.Notifier = (*NotificationProducer)(nil)

func NewNotificationProducer(cfg *config.Config) (*NotificationProducer, error) {
	producer, err := sarama.NewAsyncProducer(cfg.Kafka.Brokers, newProducerConfig(cfg.Kafka))
	if err != nil {
		return nil, err
	}
	return newNotificationProducer(producer, cfg.KafkaNotificationConsumer.Topic), nil
}

func newNotificationProducer(producer sarama.AsyncProducer, topic string) *NotificationProducer {
	p := &NotificationProducer{producer: producer, topic: topic}
	p.wg.Add(2)
	go p.drainSuccesses()
	go p.drainErrors()
	return p
}

// Notify 缓冲区满时丢弃事件，不阻塞业务请求
func (p *NotificationProducer) Notify(ctx context.Context, event *service.NotificationEvent) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		metrics.NotificationsProduced.WithLabelValues("error").Inc()
		log.ErrorContext(ctx, "marshal notification failed", "err", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(event.ReceiverID, 10)),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(logger.TraceIDKey), Value: []byte(logger.TraceID(ctx))},
		},
		Metadata: event.EventID,
	}
	select {
	case p.producer.Input() <- msg:
	default:
		metrics.NotificationsProduced.WithLabelValues("dropped").Inc()
		log.WarnContext(ctx, "notification buffer full, dropping event", "event_id", event.EventID, "receiver_id", event.ReceiverID)
	}
}

func (p *NotificationProducer) drainSuccesses() {
	defer p.wg.Done()
	for range p.producer.Successes() {
		metrics.NotificationsProduced.WithLabelValues("success").Inc()
	}
}

func (p *NotificationProducer) drainErrors() {
	defer p.wg.Done()
	for perr := range p.producer.Errors() {
		metrics.NotificationsProduced.WithLabelValues("error").Inc()
		log.Error("produce notification failed", "event_id", perr.Msg.Metadata, "err", perr.Err)
	}
}

// Close 等待缓冲中的事件发送完成
func (p *NotificationProducer) Close() error {
	err := p.producer.Close()
	p.wg.Wait()
	return err
}
