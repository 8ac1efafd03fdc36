package service

import (
	"Agora/internal/model"
	"Agora/internal/repository"
	"context"

	"gorm.io/gorm"
)

type RelationService interface {
	ToggleFollowUser(ctx context.Context, userID, targetID uint64) (bool, error)
	ToggleFollowCategory(ctx context.Context, userID, categoryID uint64) (bool, error)
	ToggleBlock(ctx context.Context, userID, targetID uint64) (bool, error)
	ToggleHidePost(ctx context.Context, userID, postID uint64, reason model.HiddenReason) (bool, error)
}

type relationServiceImpl struct {
	db           *gorm.DB
	userRepo     repository.UserRepo
	postRepo     repository.PostRepo
	categoryRepo repository.CategoryRepo
	blockRepo    repository.BlockRepo
	hiddenRepo   repository.HiddenPostRepo
	notifier     Notifier
	now          Clock
}

func NewRelationService(
	db *gorm.DB,
	userRepo repository.UserRepo,
	postRepo repository.PostRepo,
	categoryRepo repository.CategoryRepo,
	blockRepo repository.BlockRepo,
	hiddenRepo repository.HiddenPostRepo,
	notifier Notifier,
	now Clock,
) RelationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if now == nil {
		now = SystemClock
	}
	return &relationServiceImpl{
		db:           db,
		userRepo:     userRepo,
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		blockRepo:    blockRepo,
		hiddenRepo:   hiddenRepo,
		notifier:     notifier,
		now:          now,
	}
}

// ToggleFollowUser 关注或取消关注，双方计数在同一事务内调整
func (s *relationServiceImpl) ToggleFollowUser(ctx context.Context, userID, targetID uint64) (bool, error) {
	if userID == targetID {
		return false, ErrUserFollowSelf
	}
	target, err := s.userRepo.GetUserById(ctx, targetID)
	if err != nil {
		return false, err
	}
	if target == nil {
		return false, ErrUserNotFound
	}
	blocked, err := s.blockRepo.IsBlockedEither(ctx, userID, targetID)
	if err != nil {
		return false, err
	}

	var following bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		follows, users := repository.NewUserFollowRepo(tx), repository.NewUserRepo(tx)
		deleted, err := follows.DeleteUserFollow(ctx, userID, targetID)
		if err != nil {
			return err
		}
		if deleted {
			return users.IncrFollowCounters(ctx, userID, targetID, -1)
		}
		if blocked {
			return ErrAccessDenied
		}
		created, err := follows.CreateUserFollow(ctx, &model.UserFollow{FollowerID: userID, FollowingID: targetID, CreatedAt: s.now()})
		if err != nil || !created {
			return err
		}
		following = true
		return users.IncrFollowCounters(ctx, userID, targetID, 1)
	})
	if err != nil {
		return false, err
	}

	if following {
		notify(ctx, s.notifier, &NotificationEvent{
			ReceiverID: targetID,
			SenderID:   userID,
			Type:       NotificationFollow,
			TargetID:   userID,
		})
	}
	return following, nil
}

func (s *relationServiceImpl) ToggleFollowCategory(ctx context.Context, userID, categoryID uint64) (bool, error) {
	category, err := s.categoryRepo.GetCategory(ctx, categoryID)
	if err != nil {
		return false, err
	}
	if category == nil {
		return false, ErrCategoryNotFound
	}

	var following bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := repository.NewCategoryRepo(tx)
		deleted, err := categories.DeleteCategoryFollow(ctx, userID, categoryID)
		if err != nil {
			return err
		}
		if deleted {
			return categories.IncrFollowers(ctx, categoryID, -1)
		}
		created, err := categories.CreateCategoryFollow(ctx, &model.CategoryFollow{UserID: userID, CategoryID: categoryID, CreatedAt: s.now()})
		if err != nil || !created {
			return err
		}
		following = true
		return categories.IncrFollowers(ctx, categoryID, 1)
	})
	return following, err
}

// ToggleBlock 拉黑时同时解除双向关注
func (s *relationServiceImpl) ToggleBlock(ctx context.Context, userID, targetID uint64) (bool, error) {
	if userID == targetID {
		return false, ErrUserBlockSelf
	}
	target, err := s.userRepo.GetUserById(ctx, targetID)
	if err != nil {
		return false, err
	}
	if target == nil {
		return false, ErrUserNotFound
	}

	var blocking bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		blocks := repository.NewBlockRepo(tx)
		deleted, err := blocks.DeleteBlock(ctx, userID, targetID)
		if err != nil || deleted {
			return err
		}
		if _, err = blocks.CreateBlock(ctx, &model.UserBlock{BlockerID: userID, BlockedID: targetID, CreatedAt: s.now()}); err != nil {
			return err
		}
		blocking = true

		follows, users := repository.NewUserFollowRepo(tx), repository.NewUserRepo(tx)
		for _, edge := range [][2]uint64{{userID, targetID}, {targetID, userID}} {
			removed, err := follows.DeleteUserFollow(ctx, edge[0], edge[1])
			if err != nil {
				return err
			}
			if removed {
				if err = users.IncrFollowCounters(ctx, edge[0], edge[1], -1); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return blocking, err
}

// ToggleHidePost 对当前用户隐藏帖子，再次调用取消隐藏
func (s *relationServiceImpl) ToggleHidePost(ctx context.Context, userID, postID uint64, reason model.HiddenReason) (bool, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return false, err
	}
	if post == nil {
		return false, ErrPostNotFound
	}
	if reason == 0 {
		reason = model.HiddenReasonNotInterested
	}

	deleted, err := s.hiddenRepo.DeleteHiddenPost(ctx, userID, postID)
	if err != nil || deleted {
		return false, err
	}
	if _, err = s.hiddenRepo.CreateHiddenPost(ctx, &model.HiddenPost{UserID: userID, PostID: postID, Reason: reason, CreatedAt: s.now()}); err != nil {
		return false, err
	}
	return true, nil
}
