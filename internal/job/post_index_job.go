package job

import (
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/es"
	"Agora/internal/pkg/logger"
	"Agora/internal/pkg/metrics"
	"Agora/internal/repository"
	"Agora/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/pkg/errors"
)

const (
	postIndexBatch = 500
	postIndexTTL   = 10 * time.Minute
)

// PostIndexJob 将同步窗口内的帖子状态与计数写入检索索引
type PostIndexJob struct {
	postRepo   repository.PostRepo
	esRepo     es.PostRepo
	syncWindow time.Duration
	now        service.Clock
}

func NewPostIndexJob(postRepo repository.PostRepo, esRepo es.PostRepo, syncWindowHours int, now service.Clock) *PostIndexJob {
	if now == nil {
		now = service.SystemClock
	}
	return &PostIndexJob{
		postRepo:   postRepo,
		esRepo:     esRepo,
		syncWindow: time.Duration(syncWindowHours) * time.Hour,
		now:        now,
	}
}

func (s *PostIndexJob) Run() {
	ctx := logger.NewJobContext(context.Background(), "job-post-index")
	_, _, err := s.Execute(ctx)
	metrics.RecordJobRun("post_index_sync", err)
}

// Execute 已发布的帖子写入索引，其余从索引中删除，返回写入与删除的数量
func (s *PostIndexJob) Execute(ctx context.Context) (int, int, error) {
	since := s.now().Add(-s.syncWindow)

	var indexed, removed int
	_, err := runExclusive(ctx, consts.PostIndexSyncLock, postIndexTTL, func() error {
		var afterID uint64
		for {
			posts, err := s.postRepo.ListCreatedSince(ctx, since, afterID, postIndexBatch)
			if err != nil {
				return err
			}
			for _, post := range posts {
				if post.Status == model.PostStatusPublished && !post.IsDeleted {
					if err = s.esRepo.IndexPost(ctx, es.NewPostES(post)); err != nil {
						return errors.Wrapf(err, "index post %d", post.ID)
					}
					indexed++
					continue
				}
				if err = s.esRepo.DeletePost(ctx, post.ID); err != nil {
					return errors.Wrapf(err, "remove post %d from index", post.ID)
				}
				removed++
			}
			if len(posts) < postIndexBatch {
				return nil
			}
			afterID = posts[len(posts)-1].ID
		}
	})
	if err != nil {
		log.ErrorContext(ctx, "post index sync error", "since", since, "indexed", indexed, "removed", removed, "err", err)
		return indexed, removed, err
	}

	log.InfoContext(ctx, "post index sync success", "since", since, "indexed", indexed, "removed", removed)
	return indexed, removed, nil
}
