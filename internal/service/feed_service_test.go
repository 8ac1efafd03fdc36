package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedIDs(items []*dto.FeedItemDTO) []uint64 {
	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestGetFeed_FollowedUsersAndCategories(t *testing.T) {
	db := setupTestDB(t)
	for id := uint64(1); id <= 4; id++ {
		seedUser(t, db, id)
	}
	seedCategory(t, db, 10, "Go")
	follow(t, db, 1, 2)
	require.NoError(t, db.Create(&model.CategoryFollow{UserID: 1, CategoryID: 10, CreatedAt: baseTime}).Error)

	seedPost(t, db, 101, 2, 0, 1*time.Hour)
	seedPost(t, db, 102, 3, 10, 2*time.Hour)
	seedPost(t, db, 103, 3, 0, 3*time.Hour)
	seedPost(t, db, 104, 2, 0, 4*time.Hour)
	seedPost(t, db, 105, 1, 0, 5*time.Hour)
	require.NoError(t, db.Create(&model.HiddenPost{UserID: 1, PostID: 104, Reason: model.HiddenReasonNotInterested}).Error)

	env := newTestEnv(t, db, 20, 0)
	page, err := env.feed.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, []uint64{101, 102}, feedIDs(page.List))
	assert.Equal(t, int64(2), page.Total)
	assert.False(t, page.HasMore)
	assert.Equal(t, "Go", page.List[1].CategoryName)
	assert.Equal(t, "nickuser2", page.List[0].Author.Nickname)
}

func TestGetFeed_BlockExcludesBothDirections(t *testing.T) {
	db := setupTestDB(t)
	for id := uint64(1); id <= 4; id++ {
		seedUser(t, db, id)
	}
	follow(t, db, 1, 2)
	follow(t, db, 1, 3)
	follow(t, db, 1, 4)
	seedPost(t, db, 201, 2, 0, time.Hour)
	seedPost(t, db, 202, 3, 0, time.Hour)
	seedPost(t, db, 203, 4, 0, time.Hour)
	block(t, db, 1, 2)
	block(t, db, 3, 1)

	env := newTestEnv(t, db, 20, 0)
	page, err := env.feed.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{203}, feedIDs(page.List))
}

func TestGetFeed_NoFollowsIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1)
	seedUser(t, db, 2)
	seedPost(t, db, 301, 2, 0, time.Hour)

	env := newTestEnv(t, db, 20, 0)
	page, err := env.feed.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.List)
	assert.Equal(t, int64(0), page.Total)
}

func TestGetFeed_CategoryFollowDoesNotLeakUncategorized(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1)
	seedUser(t, db, 2)
	seedCategory(t, db, 10, "Go")
	require.NoError(t, db.Create(&model.CategoryFollow{UserID: 1, CategoryID: 10, CreatedAt: baseTime}).Error)
	seedPost(t, db, 501, 2, 0, time.Hour)
	seedPost(t, db, 502, 2, 10, 2*time.Hour)

	env := newTestEnv(t, db, 20, 0)
	page, err := env.feed.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{502}, feedIDs(page.List))
	assert.Equal(t, int64(1), page.Total)
}

func TestGetFeed_Pagination(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1)
	seedUser(t, db, 2)
	follow(t, db, 1, 2)
	for i := uint64(1); i <= 5; i++ {
		seedPost(t, db, 400+i, 2, 0, time.Duration(i)*time.Hour)
	}

	env := newTestEnv(t, db, 20, 0)
	ctx := context.Background()

	first, err := env.feed.GetFeed(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{401, 402}, feedIDs(first.List))
	assert.True(t, first.HasMore)
	assert.Equal(t, int64(5), first.Total)

	last, err := env.feed.GetFeed(ctx, 1, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{405}, feedIDs(last.List))
	assert.False(t, last.HasMore)
}

func TestGetFeed_ViewerFlags(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1)
	seedUser(t, db, 2)
	follow(t, db, 1, 2)
	seedPost(t, db, 501, 2, 0, time.Hour)
	seedPost(t, db, 502, 2, 0, 2*time.Hour)
	require.NoError(t, db.Create(&model.Like{UserID: 1, PostID: 501, CreatedAt: baseTime}).Error)
	require.NoError(t, db.Create(&model.Collection{UserID: 1, PostID: 502, CreatedAt: baseTime}).Error)

	env := newTestEnv(t, db, 20, 0)
	page, err := env.feed.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.List, 2)
	assert.True(t, page.List[0].HasLiked)
	assert.False(t, page.List[0].HasSaved)
	assert.False(t, page.List[1].HasLiked)
	assert.True(t, page.List[1].HasSaved)
}

func TestGetFeed_InvalidInput(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, 1)
	env := newTestEnv(t, db, 20, 0)
	ctx := context.Background()

	_, err := env.feed.GetFeed(ctx, 1, 0, 10)
	assert.ErrorIs(t, err, ErrParamInvalid)
	_, err = env.feed.GetFeed(ctx, 1, 1, 0)
	assert.ErrorIs(t, err, ErrParamInvalid)
	_, err = env.feed.GetFeed(ctx, 1, 1, 51)
	assert.ErrorIs(t, err, ErrParamInvalid)
	_, err = env.feed.GetFeed(ctx, 99, 1, 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
