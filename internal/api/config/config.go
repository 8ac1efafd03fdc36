package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.SetEnvPrefix("AGORA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()

	Cfg = &cfg

	return nil
}

// ApplyDefaults 为未配置的信息流、推荐与配额参数填充默认值
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Feed.DefaultPageSize <= 0 {
		c.Feed.DefaultPageSize = 20
	}
	if c.Feed.MaxPageSize <= 0 {
		c.Feed.MaxPageSize = 50
	}
	// InsertionRate <= 0 表示关闭推荐插入，不做覆盖
	if !viper.IsSet("feed.insertion_rate") && c.Feed.InsertionRate == 0 {
		c.Feed.InsertionRate = 10
	}
	if c.Recommend.DefaultLimit <= 0 {
		c.Recommend.DefaultLimit = 10
	}
	if c.Recommend.MaxLimit <= 0 {
		c.Recommend.MaxLimit = 50
	}
	if c.Recommend.CandidatePool <= 0 {
		c.Recommend.CandidatePool = 100
	}
	if c.Recommend.TrendingWindow <= 0 {
		c.Recommend.TrendingWindow = 168
	}
	if c.Quota.DailyLimit <= 0 {
		c.Quota.DailyLimit = 20
	}
	if c.Quota.Timezone == "" {
		c.Quota.Timezone = "Local"
	}
	if c.Quota.RetentionDays <= 0 {
		c.Quota.RetentionDays = 30
	}
	if c.Elastic.PostIndex == "" {
		c.Elastic.PostIndex = "agora_posts"
	}
	if c.Elastic.SyncWindow <= 0 {
		c.Elastic.SyncWindow = 720
	}
	// 热门窗口内的帖子必须都在索引中
	if c.Elastic.SyncWindow < c.Recommend.TrendingWindow {
		c.Elastic.SyncWindow = c.Recommend.TrendingWindow
	}
	if c.KafkaNotificationConsumer.Topic == "" {
		c.KafkaNotificationConsumer.Topic = "agora.notification"
	}
	if c.KafkaNotificationConsumer.GroupID == "" {
		c.KafkaNotificationConsumer.GroupID = "agora-notification-group"
	}
}
