package service

import (
	"Agora/internal/model"
	"math"
)

const (
	likeWeight    = 0.5
	commentWeight = 1.5
	saveWeight    = 2.0
	decayPerHour  = 0.01
	scoreBoost    = 1.2
)

// CandidateScorer 互动量乘以时间衰减，得分只用于排序不落库
type CandidateScorer struct {
	now Clock
}

func NewCandidateScorer(now Clock) *CandidateScorer {
	if now == nil {
		now = SystemClock
	}
	return &CandidateScorer{now: now}
}

// Score 发布时间晚于当前时间按 0 小时计算
func (s *CandidateScorer) Score(post *model.Post) float64 {
	engagement := float64(post.LikesCount)*likeWeight +
		float64(post.CommentsCount)*commentWeight +
		float64(post.CollectsCount)*saveWeight

	hours := s.now().Sub(post.CreatedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return engagement * math.Exp(-hours*decayPerHour) * scoreBoost
}
