package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/repository"
	"context"
	log "log/slog"
	"strings"

	"gorm.io/gorm"
)

const deletedCommentText = "该评论已删除"

type PostActionService interface {
	ToggleLike(ctx context.Context, userID, postID uint64) (bool, error)
	ToggleCollect(ctx context.Context, userID, postID uint64) (bool, error)
	CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error)
	DeleteComment(ctx context.Context, userID, commentID uint64) error
	GetComments(ctx context.Context, viewerID, postID uint64) ([]*dto.CommentDTO, error)
	GetPostDetail(ctx context.Context, viewerID, postID uint64) (*dto.PostDetailDTO, error)
}

type postActionServiceImpl struct {
	db         *gorm.DB
	postRepo   repository.PostRepo
	actionRepo repository.PostActionRepo
	blockRepo  repository.BlockRepo
	visibility VisibilityService
	quota      InteractionQuotaService
	notifier   Notifier
	builder    *feedItemBuilder
}

func NewPostActionService(
	db *gorm.DB,
	postRepo repository.PostRepo,
	actionRepo repository.PostActionRepo,
	blockRepo repository.BlockRepo,
	visibility VisibilityService,
	quota InteractionQuotaService,
	notifier Notifier,
) PostActionService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &postActionServiceImpl{
		db:         db,
		postRepo:   postRepo,
		actionRepo: actionRepo,
		blockRepo:  blockRepo,
		visibility: visibility,
		quota:      quota,
		notifier:   notifier,
		builder:    newFeedItemBuilder(actionRepo),
	}
}

// getInteractablePost 帖子必须已发布，且双方没有拉黑关系
func (s *postActionServiceImpl) getInteractablePost(ctx context.Context, userID, postID uint64) (*model.Post, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.Status != model.PostStatusPublished {
		return nil, ErrPostNotFound
	}
	if err = s.checkNotBlocked(ctx, userID, post.UserID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postActionServiceImpl) checkNotBlocked(ctx context.Context, userID, otherID uint64) error {
	if otherID == 0 || otherID == userID {
		return nil
	}
	blocked, err := s.blockRepo.IsBlockedEither(ctx, userID, otherID)
	if err != nil {
		return err
	}
	if blocked {
		return ErrAccessDenied
	}
	return nil
}

// ToggleLike 点赞计入配额；当日取消点赞返还配额，取消更早的点赞不返还
func (s *postActionServiceImpl) ToggleLike(ctx context.Context, userID, postID uint64) (bool, error) {
	post, err := s.getInteractablePost(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	var liked, fresh bool
	err = s.quota.WithActorLock(ctx, userID, func(tx *gorm.DB, quota InteractionQuotaService) error {
		actions, posts := repository.NewPostActionRepo(tx), repository.NewPostRepo(tx)

		existing, err := actions.GetLike(ctx, userID, postID)
		if err != nil {
			return err
		}

		if existing == nil {
			if err = quota.CheckLimit(ctx, userID); err != nil {
				return err
			}
			created, err := actions.CreateLike(ctx, &model.Like{UserID: userID, PostID: postID, CreatedAt: quota.Now()})
			if err != nil {
				return err
			}
			liked, fresh = true, created
			if !created {
				return nil
			}
			if err = posts.IncrCounter(ctx, postID, repository.CounterLikes, 1); err != nil {
				return err
			}
			return quota.RecordInteraction(ctx, userID, model.InteractionLike)
		}

		deleted, err := actions.DeleteLike(ctx, userID, postID)
		if err != nil || !deleted {
			return err
		}
		if err = posts.IncrCounter(ctx, postID, repository.CounterLikes, -1); err != nil {
			return err
		}
		if existing.CreatedAt.Before(quota.Today()) {
			return nil
		}
		return quota.RefundInteraction(ctx, userID, model.InteractionLike)
	})
	if err != nil {
		return false, err
	}

	if fresh {
		notify(ctx, s.notifier, &NotificationEvent{
			ReceiverID: post.UserID,
			SenderID:   userID,
			Type:       NotificationLike,
			TargetID:   postID,
			Content:    post.Title,
		})
	}
	return liked, nil
}

// ToggleCollect 收藏不计入配额
func (s *postActionServiceImpl) ToggleCollect(ctx context.Context, userID, postID uint64) (bool, error) {
	post, err := s.getInteractablePost(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	var saved bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actions, posts := repository.NewPostActionRepo(tx), repository.NewPostRepo(tx)
		created, err := actions.CreateCollection(ctx, &model.Collection{UserID: userID, PostID: postID, CreatedAt: s.quota.Now()})
		if err != nil {
			return err
		}
		if created {
			saved = true
			return posts.IncrCounter(ctx, postID, repository.CounterCollects, 1)
		}
		deleted, err := actions.DeleteCollection(ctx, userID, postID)
		if err != nil || !deleted {
			return err
		}
		return posts.IncrCounter(ctx, postID, repository.CounterCollects, -1)
	})
	if err != nil {
		return false, err
	}

	if saved {
		notify(ctx, s.notifier, &NotificationEvent{
			ReceiverID: post.UserID,
			SenderID:   userID,
			Type:       NotificationCollect,
			TargetID:   postID,
			Content:    post.Title,
		})
	}
	return saved, nil
}

// CreateComment 评论计入配额，回复时挂到所在楼层的根评论下
func (s *postActionServiceImpl) CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrParamInvalid
	}
	post, err := s.getInteractablePost(ctx, userID, req.PostID)
	if err != nil {
		return nil, err
	}

	comment := &model.PostComment{PostID: post.ID, UserID: userID, Content: content}
	if req.ParentID != 0 {
		parent, err := s.actionRepo.GetCommentByID(ctx, req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.PostID != post.ID {
			return nil, ErrPostCommentNotFound
		}
		if err = s.checkNotBlocked(ctx, userID, parent.UserID); err != nil {
			return nil, err
		}
		comment.ParentID = parent.ID
		comment.RootID = parent.RootID
		if comment.RootID == 0 {
			comment.RootID = parent.ID
		}
		comment.ReplyToUserID = parent.UserID
	}

	err = s.quota.WithActorLock(ctx, userID, func(tx *gorm.DB, quota InteractionQuotaService) error {
		if err := quota.CheckLimit(ctx, userID); err != nil {
			return err
		}
		comment.CreatedAt = quota.Now()
		if err := repository.NewPostActionRepo(tx).CreateComment(ctx, comment); err != nil {
			return err
		}
		if err := repository.NewPostRepo(tx).IncrCounter(ctx, post.ID, repository.CounterComments, 1); err != nil {
			return err
		}
		return quota.RecordInteraction(ctx, userID, model.InteractionComment)
	})
	if err != nil {
		return nil, err
	}

	receiver := post.UserID
	if comment.ReplyToUserID != 0 {
		receiver = comment.ReplyToUserID
	}
	notify(ctx, s.notifier, &NotificationEvent{
		ReceiverID: receiver,
		SenderID:   userID,
		Type:       NotificationComment,
		TargetID:   post.ID,
		Content:    content,
	})

	out := &dto.CommentDTO{}
	if err = copierCopy(out, comment); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteComment 作者删除自己的评论，当日删除返还配额
func (s *postActionServiceImpl) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	comment, err := s.actionRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrPostCommentNotFound
	}
	if comment.UserID != userID {
		return UnauthorizedError
	}

	return s.quota.WithActorLock(ctx, userID, func(tx *gorm.DB, quota InteractionQuotaService) error {
		deleted, err := repository.NewPostActionRepo(tx).SoftDeleteComment(ctx, commentID)
		if err != nil || !deleted {
			return err
		}
		if err = repository.NewPostRepo(tx).IncrCounter(ctx, comment.PostID, repository.CounterComments, -1); err != nil {
			return err
		}
		if comment.CreatedAt.Before(quota.Today()) {
			return nil
		}
		return quota.RefundInteraction(ctx, userID, model.InteractionComment)
	})
}

// GetComments 评论按楼层组织，二级回复挂在根评论下
func (s *postActionServiceImpl) GetComments(ctx context.Context, viewerID, postID uint64) ([]*dto.CommentDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.Status != model.PostStatusPublished {
		return nil, ErrPostNotFound
	}
	excl, err := s.visibility.Exclusion(ctx, viewerID, false)
	if err != nil {
		return nil, err
	}
	if excl.HasUser(post.UserID) || excl.HasPost(post.ID) {
		return nil, ErrPostNotFound
	}

	comments, err := s.actionRepo.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return buildCommentTree(comments, excl)
}

// buildCommentTree 以 id 为索引组装楼层，不在模型上保留指针
func buildCommentTree(comments []*model.PostComment, excl *Exclusion) ([]*dto.CommentDTO, error) {
	nodes := make(map[uint64]*dto.CommentDTO, len(comments))
	roots := make([]*dto.CommentDTO, 0)
	for _, c := range comments {
		if excl.HasUser(c.UserID) {
			continue
		}
		node := &dto.CommentDTO{}
		if err := copierCopy(node, c); err != nil {
			return nil, err
		}
		author := toAuthor(&c.User, c.UserID)
		node.Nickname, node.AvatarURL = author.Nickname, author.AvatarURL
		node.SubComments = make([]*dto.CommentDTO, 0)
		if c.IsDeleted {
			node.Content = deletedCommentText
		}
		nodes[c.ID] = node

		if c.RootID == 0 {
			roots = append(roots, node)
			continue
		}
		if root, ok := nodes[c.RootID]; ok && !c.IsDeleted {
			root.SubComments = append(root.SubComments, node)
		}
	}

	out := make([]*dto.CommentDTO, 0, len(roots))
	for _, r := range roots {
		if r.IsDeleted && len(r.SubComments) == 0 {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// GetPostDetail 帖子详情；作者本人可以查看未发布的帖子
func (s *postActionServiceImpl) GetPostDetail(ctx context.Context, viewerID, postID uint64) (*dto.PostDetailDTO, error) {
	post, err := s.postRepo.GetPostDetail(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || (post.Status != model.PostStatusPublished && post.UserID != viewerID) {
		return nil, ErrPostNotFound
	}
	excl, err := s.visibility.Exclusion(ctx, viewerID, false)
	if err != nil {
		return nil, err
	}
	if excl.HasUser(post.UserID) || excl.HasPost(post.ID) {
		return nil, ErrPostNotFound
	}

	items, err := s.builder.build(ctx, viewerID, []*model.Post{post})
	if err != nil {
		return nil, err
	}
	out := &dto.PostDetailDTO{FeedItemDTO: *items[0], Segments: make([]string, 0, len(post.Segments))}
	for _, seg := range post.Segments {
		out.Segments = append(out.Segments, seg.Content)
	}

	if err = s.postRepo.IncrCounter(ctx, postID, repository.CounterViews, 1); err != nil {
		log.WarnContext(ctx, "incr post views failed", "post_id", postID, "err", err)
	}
	return out, nil
}
