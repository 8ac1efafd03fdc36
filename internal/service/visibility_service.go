package service

import (
	"Agora/internal/pkg/util"
	"Agora/internal/repository"
	"context"

	"golang.org/x/sync/errgroup"
)

// Exclusion 对某个用户不可见的用户与帖子
// 用户与帖子 id 分开存放，两类 id 的取值空间互不相干
type Exclusion struct {
	UserIDs []uint64
	PostIDs []uint64

	users map[uint64]struct{}
	posts map[uint64]struct{}
}

func newExclusion(userIDs, postIDs []uint64) *Exclusion {
	userIDs, postIDs = util.UniqueIDs(userIDs), util.UniqueIDs(postIDs)
	return &Exclusion{
		UserIDs: userIDs,
		PostIDs: postIDs,
		users:   util.IDSet(userIDs),
		posts:   util.IDSet(postIDs),
	}
}

// SentinelUserIDs 空集合时返回只含哨兵 id 的集合
func (e *Exclusion) SentinelUserIDs() []uint64 {
	return util.SentinelIDs(e.UserIDs)
}

// SentinelPostIDs 空集合时返回只含哨兵 id 的集合
func (e *Exclusion) SentinelPostIDs() []uint64 {
	return util.SentinelIDs(e.PostIDs)
}

func (e *Exclusion) HasUser(id uint64) bool {
	_, ok := e.users[id]
	return ok
}

func (e *Exclusion) HasPost(id uint64) bool {
	_, ok := e.posts[id]
	return ok
}

type VisibilityService interface {
	// Exclusion 计算 viewerID 的屏蔽集合，includeSelf 用于推荐场景排除自己
	Exclusion(ctx context.Context, viewerID uint64, includeSelf bool) (*Exclusion, error)
}

type visibilityServiceImpl struct {
	blockRepo  repository.BlockRepo
	hiddenRepo repository.HiddenPostRepo
}

func NewVisibilityService(blockRepo repository.BlockRepo, hiddenRepo repository.HiddenPostRepo) VisibilityService {
	return &visibilityServiceImpl{
		blockRepo:  blockRepo,
		hiddenRepo: hiddenRepo,
	}
}

// Exclusion 拉黑是双向的：我拉黑的人与拉黑我的人都不可见
func (s *visibilityServiceImpl) Exclusion(ctx context.Context, viewerID uint64, includeSelf bool) (*Exclusion, error) {
	if viewerID == 0 {
		return newExclusion(nil, nil), nil
	}

	var blocked, blockers, hidden []uint64
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		blocked, err = s.blockRepo.GetBlockedIDs(gCtx, viewerID)
		return err
	})
	g.Go(func() (err error) {
		blockers, err = s.blockRepo.GetBlockerIDs(gCtx, viewerID)
		return err
	})
	g.Go(func() (err error) {
		hidden, err = s.hiddenRepo.GetHiddenPostIDs(gCtx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	users := make([]uint64, 0, len(blocked)+len(blockers)+1)
	users = append(users, blocked...)
	users = append(users, blockers...)
	if includeSelf {
		users = append(users, viewerID)
	}
	return newExclusion(users, hidden), nil
}
