package es

import (
	"Agora/internal/model"
	"Agora/internal/pkg/metrics"
	"Agora/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/goccy/go-json"
)

type PostRepo interface {
	SearchCandidates(ctx context.Context, q *repository.CandidateQuery) ([]uint64, error)
	SearchTrending(ctx context.Context, q *repository.CandidateQuery) ([]uint64, error)
	IndexPost(ctx context.Context, post *PostES) error
	DeletePost(ctx context.Context, id uint64) error
}

type PostRepoImpl struct {
	client *elasticsearch.TypedClient
	index  string
}

func NewPostRepo(client *elasticsearch.TypedClient, index string) PostRepo {
	return &PostRepoImpl{client: client, index: index}
}

// SearchCandidates 按创建时间倒序返回候选帖子 id
func (s *PostRepoImpl) SearchCandidates(ctx context.Context, q *repository.CandidateQuery) ([]uint64, error) {
	req := s.client.Search().
		Index(s.index).
		Query(&types.Query{Bool: candidateFilter(q)}).
		Sort(sortDesc("created_at"), sortDesc("id")).
		Source_(&types.SourceFilter{Includes: []string{"id"}}).
		Size(q.Limit)
	return s.searchIDs(ctx, req)
}

// SearchTrending 按点赞数倒序返回时间窗口内的帖子 id
func (s *PostRepoImpl) SearchTrending(ctx context.Context, q *repository.CandidateQuery) ([]uint64, error) {
	req := s.client.Search().
		Index(s.index).
		Query(&types.Query{Bool: candidateFilter(q)}).
		Sort(sortDesc("likes_count"), sortDesc("created_at"), sortDesc("id")).
		Source_(&types.SourceFilter{Includes: []string{"id"}}).
		Size(q.Limit)
	return s.searchIDs(ctx, req)
}

func (s *PostRepoImpl) IndexPost(ctx context.Context, post *PostES) error {
	docID := strconv.FormatUint(post.ID, 10)
	_, err := s.client.Index(s.index).
		Id(docID).
		Document(post).
		Do(ctx)
	return err
}

func (s *PostRepoImpl) DeletePost(ctx context.Context, id uint64) error {
	docID := strconv.FormatUint(id, 10)
	_, err := s.client.Delete(s.index, docID).Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) && e.Status == NotFoundCode {
			return nil
		}
		return err
	}
	return nil
}

func (s *PostRepoImpl) searchIDs(ctx context.Context, req *search.Search) ([]uint64, error) {
	res, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc struct {
			ID uint64 `json:"id"`
		}
		if err = json.Unmarshal(hit.Source_, &doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

// candidateFilter 已发布，且不属于排除的作者与帖子
func candidateFilter(q *repository.CandidateQuery) *types.BoolQuery {
	bq := &types.BoolQuery{
		Filter: []types.Query{{
			Term: map[string]types.TermQuery{
				"status": {Value: int(model.PostStatusPublished)},
			},
		}},
	}
	if !q.Since.IsZero() {
		since := q.Since.UTC().Format(time.RFC3339)
		bq.Filter = append(bq.Filter, types.Query{
			Range: map[string]types.RangeQuery{
				"created_at": types.DateRangeQuery{Gte: &since},
			},
		})
	}
	if len(q.ExcludeUserIDs) > 0 {
		bq.MustNot = append(bq.MustNot, termsQuery("user_id", q.ExcludeUserIDs))
	}
	if len(q.ExcludePostIDs) > 0 {
		bq.MustNot = append(bq.MustNot, termsQuery("id", q.ExcludePostIDs))
	}
	return bq
}

func termsQuery(field string, ids []uint64) types.Query {
	values := make([]types.FieldValue, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}
	return types.Query{
		Terms: &types.TermsQuery{
			TermsQuery: map[string]types.TermsQueryField{field: values},
		},
	}
}

func sortDesc(field string) types.SortOptions {
	return types.SortOptions{SortOptions: map[string]types.FieldSort{
		field: {Order: &sortorder.Desc},
	}}
}

// CandidateRepo 推荐候选走 Elasticsearch，其余读写仍由数据库完成
// 检索失败时回退到数据库查询
type CandidateRepo struct {
	repository.PostRepo
	search PostRepo
}

func NewCandidateRepo(db repository.PostRepo, search PostRepo) repository.PostRepo {
	return &CandidateRepo{PostRepo: db, search: search}
}

func (s *CandidateRepo) GetCandidates(ctx context.Context, q *repository.CandidateQuery) ([]*model.Post, error) {
	ids, err := s.search.SearchCandidates(ctx, q)
	if err != nil {
		s.fallback(ctx, "es_candidates", err)
		return s.PostRepo.GetCandidates(ctx, q)
	}
	return s.hydrate(ctx, ids)
}

func (s *CandidateRepo) GetTrending(ctx context.Context, q *repository.CandidateQuery) ([]*model.Post, error) {
	ids, err := s.search.SearchTrending(ctx, q)
	if err != nil {
		s.fallback(ctx, "es_trending", err)
		return s.PostRepo.GetTrending(ctx, q)
	}
	return s.hydrate(ctx, ids)
}

// hydrate 按检索顺序从数据库读取帖子，索引滞后导致已下架或删除的帖子被丢弃
func (s *CandidateRepo) hydrate(ctx context.Context, ids []uint64) ([]*model.Post, error) {
	posts, err := s.PostRepo.GetPostByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	res := make([]*model.Post, 0, len(posts))
	for _, p := range posts {
		if p.Status == model.PostStatusPublished && !p.IsDeleted {
			res = append(res, p)
		}
	}
	return res, nil
}

func (s *CandidateRepo) fallback(ctx context.Context, step string, err error) {
	metrics.RecommendDegraded.WithLabelValues(step).Inc()
	log.WarnContext(ctx, "elasticsearch search failed, falling back to database", "step", step, "err", err)
}
