package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/util"
	"Agora/internal/repository"
	"context"
	"strconv"
	"time"

	"github.com/jinzhu/copier"
	"golang.org/x/sync/errgroup"
)

var timeConverter = copier.TypeConverter{
	SrcType: time.Time{},
	DstType: copier.String,
	Fn: func(src interface{}) (interface{}, error) {
		t, _ := src.(time.Time)
		return t.UTC().Format(time.RFC3339), nil
	},
}

var copyOption = copier.Option{Converters: []copier.TypeConverter{timeConverter}}

// feedItemBuilder 将帖子转换为信息流条目并补全当前用户的点赞与收藏状态
type feedItemBuilder struct {
	actionRepo repository.PostActionRepo
}

func newFeedItemBuilder(actionRepo repository.PostActionRepo) *feedItemBuilder {
	return &feedItemBuilder{actionRepo: actionRepo}
}

// build 点赞与收藏状态各一次批量查询
func (b *feedItemBuilder) build(ctx context.Context, viewerID uint64, posts []*model.Post) ([]*dto.FeedItemDTO, error) {
	items := make([]*dto.FeedItemDTO, 0, len(posts))
	ids := make([]uint64, 0, len(posts))
	for _, p := range posts {
		item, err := toFeedItem(p)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		ids = append(ids, p.ID)
	}
	if viewerID == 0 || len(ids) == 0 {
		return items, nil
	}

	var liked, saved []uint64
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		liked, err = b.actionRepo.GetLikedPostIDs(gCtx, viewerID, ids)
		return err
	})
	g.Go(func() (err error) {
		saved, err = b.actionRepo.GetCollectedPostIDs(gCtx, viewerID, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return items, err
	}

	likedSet, savedSet := util.IDSet(liked), util.IDSet(saved)
	for _, item := range items {
		_, item.HasLiked = likedSet[item.ID]
		_, item.HasSaved = savedSet[item.ID]
	}
	return items, nil
}

func toFeedItem(post *model.Post) (*dto.FeedItemDTO, error) {
	out := &dto.FeedItemDTO{}
	if err := copierCopy(out, post); err != nil {
		return nil, err
	}
	out.CategoryName = post.Category.Name
	out.Author = toAuthor(&post.User, post.UserID)
	return out, nil
}

func toAuthor(user *model.User, userID uint64) dto.AuthorDTO {
	author := dto.AuthorDTO{UserID: userID, AvatarURL: consts.DefaultAvatarURL}
	switch {
	case user.ID == 0:
		author.Nickname = "未知用户"
	case user.UserDetail.UserID > 0:
		author.Nickname = user.UserDetail.Nickname
		if user.UserDetail.AvatarURL != "" {
			author.AvatarURL = user.UserDetail.AvatarURL
		}
	default:
		author.Nickname = "用户_" + strconv.FormatUint(user.ID, 10)
	}
	return author
}

func copierCopy(to, from interface{}) error {
	return copier.CopyWithOption(to, from, copyOption)
}
