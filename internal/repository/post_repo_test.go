package repository

import (
	"Agora/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postIDs(posts []*model.Post) []uint64 {
	ids := make([]uint64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestGetFeedPageFollowingAndExclusions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	for _, id := range []uint64{1, 2, 3, 4} {
		seedUser(t, db, id)
	}
	require.NoError(t, db.Create(&model.Category{ID: 7, Name: "go"}).Error)

	seedPost(t, db, 10, 2, 0, 1*time.Hour)
	seedPost(t, db, 11, 3, 7, 2*time.Hour) // 关注分类
	seedPost(t, db, 12, 4, 0, 3*time.Hour) // 未关注
	seedPost(t, db, 13, 2, 0, 4*time.Hour)
	rejected := seedPost(t, db, 14, 2, 0, 5*time.Hour)
	require.NoError(t, db.Model(rejected).Update("status", model.PostStatusRejected).Error)

	repo := NewPostRepo(db)
	posts, total, err := repo.GetFeedPage(ctx, &FeedQuery{
		FollowedUserIDs:     []uint64{2},
		FollowedCategoryIDs: []uint64{7},
		ExcludePostIDs:      []uint64{13},
		Limit:               10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []uint64{10, 11}, postIDs(posts))
	assert.Equal(t, "nickuser2", posts[0].User.UserDetail.Nickname)
	assert.Equal(t, "go", posts[1].Category.Name)

	posts, total, err = repo.GetFeedPage(ctx, &FeedQuery{
		FollowedUserIDs: []uint64{2},
		ExcludeUserIDs:  []uint64{2},
		Limit:           10,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, posts)
}

func TestGetFeedPageUncategorizedPostsNeedFollowedAuthor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	for _, id := range []uint64{1, 2, 3} {
		seedUser(t, db, id)
	}
	require.NoError(t, db.Create(&model.Category{ID: 7, Name: "go"}).Error)
	seedPost(t, db, 20, 2, 0, time.Hour)   // 未分类，关注作者
	seedPost(t, db, 21, 3, 0, 2*time.Hour) // 未分类，未关注作者
	seedPost(t, db, 22, 3, 7, 3*time.Hour) // 关注分类
	repo := NewPostRepo(db)

	cases := []struct {
		name       string
		users      []uint64
		categories []uint64
		want       []uint64
	}{
		{"authors only", []uint64{2}, []uint64{}, []uint64{20}},
		{"categories only", []uint64{}, []uint64{7}, []uint64{22}},
		{"authors and categories", []uint64{2}, []uint64{7}, []uint64{20, 22}},
		{"nothing followed", []uint64{}, []uint64{}, []uint64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			posts, total, err := repo.GetFeedPage(ctx, &FeedQuery{
				FollowedUserIDs:     tc.users,
				FollowedCategoryIDs: tc.categories,
				Limit:               10,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, postIDs(posts))
			assert.EqualValues(t, len(tc.want), total)
		})
	}
}

func TestGetFeedPageSentinelMatchesUnfiltered(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, 1)
	seedPost(t, db, 10, 1, 0, time.Hour)
	seedPost(t, db, 11, 1, 0, 2*time.Hour)
	repo := NewPostRepo(db)

	withEmpty, totalEmpty, err := repo.GetFeedPage(ctx, &FeedQuery{ExcludeUserIDs: []uint64{}, ExcludePostIDs: nil, Limit: 10})
	require.NoError(t, err)
	withSentinel, totalSentinel, err := repo.GetFeedPage(ctx, &FeedQuery{ExcludeUserIDs: []uint64{0}, ExcludePostIDs: []uint64{0}, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, totalEmpty, totalSentinel)
	assert.Equal(t, postIDs(withEmpty), postIDs(withSentinel))
	assert.Equal(t, []uint64{10, 11}, postIDs(withEmpty))
}

func TestGetFeedPagePagination(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, 1)
	for i := uint64(1); i <= 5; i++ {
		seedPost(t, db, i, 1, 0, time.Duration(i)*time.Minute)
	}
	repo := NewPostRepo(db)

	posts, total, err := repo.GetFeedPage(ctx, &FeedQuery{Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Equal(t, []uint64{3, 4}, postIDs(posts))
}

func TestGetTrendingOrdersByLikes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, 1)
	a := seedPost(t, db, 1, 1, 0, time.Hour)
	b := seedPost(t, db, 2, 1, 0, 2*time.Hour)
	old := seedPost(t, db, 3, 1, 0, 30*24*time.Hour)
	require.NoError(t, db.Model(b).UpdateColumn("likes_count", 9).Error)
	require.NoError(t, db.Model(old).UpdateColumn("likes_count", 99).Error)
	_ = a

	posts, err := NewPostRepo(db).GetTrending(ctx, &CandidateQuery{Since: baseTime.Add(-168 * time.Hour), Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 1}, postIDs(posts))
}

func TestIncrCounterNeverNegative(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, 1)
	seedPost(t, db, 1, 1, 0, time.Hour)
	repo := NewPostRepo(db)

	require.NoError(t, repo.IncrCounter(ctx, 1, CounterLikes, 1))
	require.NoError(t, repo.IncrCounter(ctx, 1, CounterLikes, -1))
	require.NoError(t, repo.IncrCounter(ctx, 1, CounterLikes, -1))

	post, err := repo.GetPost(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, post.LikesCount)
}

func TestGetPostByIdsKeepsOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, 1)
	for i := uint64(1); i <= 3; i++ {
		seedPost(t, db, i, 1, 0, time.Hour)
	}
	posts, err := NewPostRepo(db).GetPostByIds(ctx, []uint64{3, 1, 99, 2})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1, 2}, postIDs(posts))
}

func TestUpdateStatusIsConditional(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, 1)
	seedPost(t, db, 1, 1, 0, time.Hour)
	repo := NewPostRepo(db)

	ok, err := repo.UpdateStatus(ctx, 1, model.PostStatusPending, model.PostStatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateStatus(ctx, 1, model.PostStatusPublished, model.PostStatusManual)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListCreatedSinceWalksAllStatuses(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, 1)
	seedPost(t, db, 1, 1, 0, time.Hour)
	rejected := seedPost(t, db, 2, 1, 0, 2*time.Hour)
	require.NoError(t, db.Model(rejected).Update("status", model.PostStatusRejected).Error)
	deleted := seedPost(t, db, 3, 1, 0, 3*time.Hour)
	require.NoError(t, db.Model(deleted).Update("is_deleted", true).Error)
	seedPost(t, db, 4, 1, 0, 30*24*time.Hour)
	repo := NewPostRepo(db)
	since := baseTime.Add(-24 * time.Hour)

	posts, err := repo.ListCreatedSince(ctx, since, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, postIDs(posts))

	posts, err = repo.ListCreatedSince(ctx, since, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, postIDs(posts))
}
