package repository

import (
	"Agora/internal/model"
	"Agora/internal/pkg/util"

	"gorm.io/gorm"
)

// publishedPosts 已发布且未删除
func publishedPosts(db *gorm.DB) *gorm.DB {
	return db.Where("posts.status = ? AND posts.is_deleted = ?", model.PostStatusPublished, false)
}

// excludeAuthors 排除作者，空集合使用哨兵 id
func excludeAuthors(userIDs []uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.user_id NOT IN ?", util.SentinelIDs(userIDs))
	}
}

// excludePosts 排除帖子，空集合使用哨兵 id
func excludePosts(postIDs []uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.id NOT IN ?", util.SentinelIDs(postIDs))
	}
}

// followedSources 作者或分类命中关注集合，空集合不参与条件
// 未分类帖子的 category_id 为 0，哨兵 id 不能用在这里的 IN 条件中
func followedSources(userIDs, categoryIDs []uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case len(userIDs) > 0 && len(categoryIDs) > 0:
			return db.Where("(posts.user_id IN ? OR posts.category_id IN ?)", userIDs, categoryIDs)
		case len(userIDs) > 0:
			return db.Where("posts.user_id IN ?", userIDs)
		default:
			return db.Where("posts.category_id IN ?", categoryIDs)
		}
	}
}

// newestFirst 按发布时间倒序，时间相同时按 id 倒序保证稳定
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.created_at DESC").Order("posts.id DESC")
}

// withAuthor 一次性预加载作者摘要与分类
func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("User.UserDetail").Preload("Category")
}

func paginate(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}
