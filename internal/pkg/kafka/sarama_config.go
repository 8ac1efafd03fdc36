package kafka

import (
	"Agora/internal/api/config"
	"time"

	"github.com/IBM/sarama"
)

func secondsOr(v int, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Second
}

func applySasl(c *sarama.Config, kafkaCfg config.KafkaConfig) {
	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}
}

// newConsumerConfig 消费组配置，位点在批处理完成后手动提交
func newConsumerConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	applySasl(c, kafkaCfg)

	c.Consumer.Return.Errors = true
	c.Consumer.Offsets.Initial = sarama.OffsetNewest

	c.Consumer.Group.Session.Timeout = secondsOr(kafkaCfg.Consumer.SessionTimeout, 10*time.Second)
	c.Consumer.Group.Heartbeat.Interval = secondsOr(kafkaCfg.Consumer.HeartbeatInterval, 3*time.Second)
	c.Consumer.Group.Rebalance.Timeout = secondsOr(kafkaCfg.Consumer.RebalanceTimeout, 60*time.Second)
	c.Consumer.Offsets.AutoCommit.Enable = false
	c.Consumer.MaxProcessingTime = secondsOr(kafkaCfg.Consumer.MaxProcessingTime, 30*time.Second)

	return c
}

// newProducerConfig 通知投递配置，同一接收者的事件落在同一分区
func newProducerConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	applySasl(c, kafkaCfg)

	c.Producer.RequiredAcks = sarama.WaitForLocal
	c.Producer.Compression = sarama.CompressionSnappy
	c.Producer.Partitioner = sarama.NewHashPartitioner
	c.Producer.Return.Successes = true
	c.Producer.Return.Errors = true
	c.Producer.Flush.Frequency = 100 * time.Millisecond
	c.Producer.Retry.Max = 3

	return c
}
