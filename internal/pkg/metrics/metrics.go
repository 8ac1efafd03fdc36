package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	FeedFollowing = "following"
	FeedDiscover  = "discover"
	FeedRecommend = "recommend"
)

var (
	// FeedBuildDuration 信息流组装耗时
	FeedBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agora_feed_build_duration_seconds",
			Help:    "Duration of feed assembly in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"feed", "result"},
	)

	// QuotaRejections 因每日配额耗尽被拒绝的互动
	QuotaRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agora_quota_rejections_total",
			Help: "Total number of interactions rejected by the daily quota",
		},
	)

	// RecommendFallbacks 候选不足时回填近期热门的次数
	RecommendFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agora_recommend_fallback_total",
			Help: "Total number of recommendation requests backfilled from trending posts",
		},
	)

	// RecommendDegraded 推荐因存储错误降级的次数
	RecommendDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_recommend_degraded_total",
			Help: "Total number of recommendation steps skipped because of store errors",
		},
		[]string{"step"},
	)

	// NotificationsProduced 通知事件投递结果
	NotificationsProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_notifications_produced_total",
			Help: "Total number of notification events handed to the broker",
		},
		[]string{"result"},
	)

	// JobRuns 定时任务执行结果
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_job_runs_total",
			Help: "Total number of scheduled job runs",
		},
		[]string{"job", "result"},
	)
)

// ObserveFeedBuild 记录一次信息流组装
func ObserveFeedBuild(feed string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	FeedBuildDuration.WithLabelValues(feed, result).Observe(time.Since(start).Seconds())
}

// RecordJobRun 记录定时任务执行结果
func RecordJobRun(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	JobRuns.WithLabelValues(job, result).Inc()
}
