package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/repository"
	"context"
	log "log/slog"
)

// ModerationAction 审核动作
type ModerationAction int8

const (
	ModerationApprove ModerationAction = iota + 1
	ModerationReject
	ModerationEscalate
	ModerationRestore
)

var moderationActionNames = map[ModerationAction]string{
	ModerationApprove:  "approve",
	ModerationReject:   "reject",
	ModerationEscalate: "escalate",
	ModerationRestore:  "restore",
}

func (a ModerationAction) String() string {
	if name, ok := moderationActionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseModerationAction 未知动作返回 ErrParamInvalid
func ParseModerationAction(name string) (ModerationAction, error) {
	for action, n := range moderationActionNames {
		if n == name {
			return action, nil
		}
	}
	return 0, ErrParamInvalid
}

type moderationEdge struct {
	from   model.PostStatus
	action ModerationAction
}

// moderationTransitions 未列出的组合一律拒绝
var moderationTransitions = map[moderationEdge]model.PostStatus{
	{model.PostStatusPending, ModerationApprove}:  model.PostStatusPublished,
	{model.PostStatusManual, ModerationApprove}:   model.PostStatusPublished,
	{model.PostStatusPending, ModerationReject}:   model.PostStatusRejected,
	{model.PostStatusManual, ModerationReject}:    model.PostStatusRejected,
	{model.PostStatusPublished, ModerationReject}: model.PostStatusRejected,
	{model.PostStatusPending, ModerationEscalate}: model.PostStatusManual,
	{model.PostStatusRejected, ModerationRestore}: model.PostStatusPublished,
}

// NextPostStatus 按状态表计算审核后的状态
func NextPostStatus(from model.PostStatus, action ModerationAction) (model.PostStatus, error) {
	to, ok := moderationTransitions[moderationEdge{from, action}]
	if !ok {
		return from, ErrStatusTransition
	}
	return to, nil
}

type ModerationService interface {
	ApplyModeration(ctx context.Context, postID uint64, action ModerationAction) (*dto.ModerationResultDTO, error)
}

type moderationServiceImpl struct {
	postRepo repository.PostRepo
	notifier Notifier
}

func NewModerationService(postRepo repository.PostRepo, notifier Notifier) ModerationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &moderationServiceImpl{postRepo: postRepo, notifier: notifier}
}

// ApplyModeration 条件更新状态，并发审核时后到者得到 ErrStatusTransition
func (s *moderationServiceImpl) ApplyModeration(ctx context.Context, postID uint64, action ModerationAction) (*dto.ModerationResultDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	to, err := NextPostStatus(post.Status, action)
	if err != nil {
		return nil, err
	}
	updated, err := s.postRepo.UpdateStatus(ctx, postID, post.Status, to)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrStatusTransition
	}
	log.InfoContext(ctx, "post moderated", "post_id", postID, "action", action.String(), "from", post.Status, "to", to)

	notify(ctx, s.notifier, &NotificationEvent{
		ReceiverID: post.UserID,
		Type:       NotificationModeration,
		TargetID:   postID,
		Content:    moderationNotice(to),
	})
	return &dto.ModerationResultDTO{PostID: postID, Status: int8(to)}, nil
}

func moderationNotice(status model.PostStatus) string {
	switch status {
	case model.PostStatusPublished:
		return "你的帖子已通过审核"
	case model.PostStatusRejected:
		return "你的帖子未通过审核"
	default:
		return "你的帖子已转入人工审核"
	}
}
