package config

// Config 配置主体
type Config struct {
	Server                    ServerConfig              `mapstructure:"server"`
	DB                        DBConfig                  `mapstructure:"database"`
	Redis                     RedisConfig               `mapstructure:"redis"`
	Mongo                     MongoConfig               `mapstructure:"mongo"`
	Elastic                   ElasticConfig             `mapstructure:"elastic"`
	Logstash                  LogstashConfig            `mapstructure:"logstash"`
	Kafka                     KafkaConfig               `mapstructure:"kafka"`
	KafkaNotificationConsumer KafkaNotificationConsumer `mapstructure:"kafka_notification_consumer"`
	Feed                      FeedConfig                `mapstructure:"feed"`
	Recommend                 RecommendConfig           `mapstructure:"recommend"`
	Quota                     QuotaConfig               `mapstructure:"quota"`
	JWT                       JWTConfig                 `mapstructure:"jwt"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MongoConfig Mongo配置
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// ElasticConfig 推荐候选检索配置，Address 为空时候选直接查询数据库
type ElasticConfig struct {
	Address    string `mapstructure:"address"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	PostIndex  string `mapstructure:"post_index"`
	SyncWindow int    `mapstructure:"sync_window"` // 小时，同步该时间内创建的帖子
}

// LogstashConfig 远程日志配置
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

// KafkaNotificationConsumer 通知事件的 topic 与消费组
type KafkaNotificationConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// FeedConfig 信息流配置
type FeedConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
	// InsertionRate 发现流中每隔多少条普通内容插入一条推荐
	InsertionRate int `mapstructure:"insertion_rate"`
}

// RecommendConfig 推荐配置
type RecommendConfig struct {
	DefaultLimit   int `mapstructure:"default_limit"`
	MaxLimit       int `mapstructure:"max_limit"`
	CandidatePool  int `mapstructure:"candidate_pool"`
	TrendingWindow int `mapstructure:"trending_window"` // 小时
}

// QuotaConfig 每日互动配额
type QuotaConfig struct {
	DailyLimit    int    `mapstructure:"daily_limit"`
	Timezone      string `mapstructure:"timezone"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// JWTConfig 令牌签名密钥，为空时使用内置默认值
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}
