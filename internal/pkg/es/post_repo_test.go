package es

import (
	"Agora/internal/api/config"
	"Agora/internal/model"
	"Agora/internal/pkg/database"
	"Agora/internal/pkg/metrics"
	"Agora/internal/repository"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testIndex = "agora_posts"

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type recordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

// fakeES 按路径返回固定响应的 Elasticsearch 替身
type fakeES struct {
	mu          sync.Mutex
	requests    []recordedRequest
	hits        []uint64
	failSearch  bool
	indexExists bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"name":"node-1","cluster_name":"agora","cluster_uuid":"u1","version":{"number":"8.19.1","build_flavor":"default","build_type":"docker","build_hash":"h","build_date":"2025-01-01T00:00:00Z","build_snapshot":false,"lucene_version":"9.12.0","minimum_wire_compatibility_version":"7.17.0","minimum_index_compatibility_version":"7.0.0"},"tagline":"You Know, for Search"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		if f.failSearch {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":{"type":"search_phase_execution_exception","reason":"all shards failed"},"status":500}`)
			return
		}
		_, _ = io.WriteString(w, searchResponse(f.hits))
	case r.Method == http.MethodHead:
		if !f.indexExists {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == "/"+testIndex:
		f.indexExists = true
		_, _ = io.WriteString(w, `{"acknowledged":true,"shards_acknowledged":true,"index":"agora_posts"}`)
	case r.Method == http.MethodPut:
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, docResponse(r.URL.Path, "created"))
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, docResponse(r.URL.Path, "not_found"))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (f *fakeES) last(suffix string) recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if strings.HasSuffix(f.requests[i].Path, suffix) {
			return f.requests[i]
		}
	}
	return recordedRequest{}
}

func searchResponse(ids []uint64) string {
	hits := make([]string, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, fmt.Sprintf(`{"_index":"agora_posts","_id":"%d","_score":null,"_source":{"id":%d}}`, id, id))
	}
	return fmt.Sprintf(`{"took":1,"timed_out":false,"_shards":{"total":1,"successful":1,"skipped":0,"failed":0},"hits":{"total":{"value":%d,"relation":"eq"},"max_score":null,"hits":[%s]}}`,
		len(ids), strings.Join(hits, ","))
}

func docResponse(path, result string) string {
	id := path[strings.LastIndex(path, "/")+1:]
	return fmt.Sprintf(`{"_index":"agora_posts","_id":"%s","_version":1,"result":"%s","_shards":{"total":1,"successful":1,"failed":0},"_seq_no":0,"_primary_term":1}`, id, result)
}

// searchBody 只解析断言需要的查询结构
type searchBody struct {
	Query struct {
		Bool struct {
			Filter  []map[string]json.RawMessage `json:"filter"`
			MustNot []struct {
				Terms map[string][]uint64 `json:"terms"`
			} `json:"must_not"`
		} `json:"bool"`
	} `json:"query"`
	Size int                                 `json:"size"`
	Sort []map[string]struct{ Order string } `json:"sort"`
}

func (b searchBody) sortFields() []string {
	fields := make([]string, 0, len(b.Sort))
	for _, s := range b.Sort {
		for field := range s {
			fields = append(fields, field)
		}
	}
	return fields
}

func decodeSearch(t *testing.T, req recordedRequest) searchBody {
	t.Helper()
	require.NotEmpty(t, req.Body, "search request not sent")
	var body searchBody
	require.NoError(t, json.Unmarshal(req.Body, &body))
	return body
}

func newTestClient(t *testing.T, fake *fakeES) *elasticsearch.TypedClient {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := database.NewGormConfig()
	cfg.Logger = logger.Discard
	cfg.PrepareStmt = false
	cfg.NowFunc = func() time.Time { return baseTime }

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedPosts(t *testing.T, db *gorm.DB, author uint64, ids ...uint64) {
	t.Helper()
	name := fmt.Sprintf("user%d", author)
	require.NoError(t, db.Create(&model.User{ID: author, Username: &name, UserDetail: model.UserDetail{UserID: author, Nickname: name}}).Error)
	for i, id := range ids {
		p := &model.Post{
			ID:        id,
			UserID:    author,
			Title:     fmt.Sprintf("post %d", id),
			Content:   "content",
			Status:    model.PostStatusPublished,
			CreatedAt: baseTime.Add(-time.Duration(i+1) * time.Hour),
		}
		require.NoError(t, db.Omit("User", "Category", "Segments").Create(p).Error)
	}
}

func postIDs(posts []*model.Post) []uint64 {
	ids := make([]uint64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestNewClientCreatesMissingIndex(t *testing.T) {
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := NewClient(context.Background(), config.ElasticConfig{Address: srv.URL, PostIndex: testIndex})
	require.NoError(t, err)
	require.NotNil(t, client)

	create := fake.last("/" + testIndex)
	assert.Equal(t, http.MethodPut, create.Method)
	assert.Contains(t, string(create.Body), `"category_id"`)
	assert.Contains(t, string(create.Body), `"likes_count"`)

	// 索引已存在时不再创建
	fake.requests = nil
	require.NoError(t, EnsurePostIndex(context.Background(), client, testIndex))
	assert.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodHead, fake.requests[0].Method)
}

func TestCandidateRepo_GetCandidatesKeepsIndexOrder(t *testing.T) {
	db := setupTestDB(t)
	seedPosts(t, db, 1, 1, 2, 3, 4)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", 3).Update("status", model.PostStatusRejected).Error)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", 1).Update("is_deleted", true).Error)

	fake := &fakeES{hits: []uint64{4, 3, 2, 1, 99}}
	repo := NewCandidateRepo(repository.NewPostRepo(db), NewPostRepo(newTestClient(t, fake), testIndex))

	posts, err := repo.GetCandidates(context.Background(), &repository.CandidateQuery{
		ExcludeUserIDs: []uint64{7, 8},
		ExcludePostIDs: []uint64{5},
		Limit:          20,
	})
	require.NoError(t, err)
	// 索引中滞后的已拒绝、已删除与不存在的帖子被丢弃
	assert.Equal(t, []uint64{4, 2}, postIDs(posts))
	assert.Equal(t, "user1", posts[0].User.UserDetail.Nickname)

	body := decodeSearch(t, fake.last("/_search"))
	assert.Equal(t, 20, body.Size)
	assert.Len(t, body.Query.Bool.Filter, 1)
	require.Len(t, body.Query.Bool.MustNot, 2)
	assert.Equal(t, []uint64{7, 8}, body.Query.Bool.MustNot[0].Terms["user_id"])
	assert.Equal(t, []uint64{5}, body.Query.Bool.MustNot[1].Terms["id"])
	assert.Equal(t, []string{"created_at", "id"}, body.sortFields())
}

func TestCandidateRepo_EmptyExclusionsSendNoMustNot(t *testing.T) {
	db := setupTestDB(t)
	fake := &fakeES{}
	repo := NewCandidateRepo(repository.NewPostRepo(db), NewPostRepo(newTestClient(t, fake), testIndex))

	posts, err := repo.GetCandidates(context.Background(), &repository.CandidateQuery{Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Empty(t, decodeSearch(t, fake.last("/_search")).Query.Bool.MustNot)
}

func TestCandidateRepo_GetTrendingFiltersWindow(t *testing.T) {
	db := setupTestDB(t)
	seedPosts(t, db, 1, 1, 2)
	fake := &fakeES{hits: []uint64{2, 1}}
	repo := NewCandidateRepo(repository.NewPostRepo(db), NewPostRepo(newTestClient(t, fake), testIndex))

	posts, err := repo.GetTrending(context.Background(), &repository.CandidateQuery{
		Since: baseTime.Add(-168 * time.Hour),
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 1}, postIDs(posts))

	body := decodeSearch(t, fake.last("/_search"))
	require.Len(t, body.Query.Bool.Filter, 2)
	assert.Contains(t, string(body.Query.Bool.Filter[1]["range"]), "2026-03-03T12:00:00Z")
	assert.Equal(t, []string{"likes_count", "created_at", "id"}, body.sortFields())
}

func TestCandidateRepo_FallsBackToDatabase(t *testing.T) {
	db := setupTestDB(t)
	seedPosts(t, db, 1, 1, 2, 3)
	fake := &fakeES{failSearch: true}
	repo := NewCandidateRepo(repository.NewPostRepo(db), NewPostRepo(newTestClient(t, fake), testIndex))
	before := testutil.ToFloat64(metrics.RecommendDegraded.WithLabelValues("es_candidates"))

	posts, err := repo.GetCandidates(context.Background(), &repository.CandidateQuery{
		ExcludePostIDs: []uint64{2},
		Limit:          10,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, postIDs(posts))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RecommendDegraded.WithLabelValues("es_candidates")))

	posts, err = repo.GetTrending(context.Background(), &repository.CandidateQuery{
		Since: baseTime.Add(-24 * time.Hour),
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestPostRepo_IndexAndDelete(t *testing.T) {
	fake := &fakeES{}
	repo := NewPostRepo(newTestClient(t, fake), testIndex)
	ctx := context.Background()

	post := &model.Post{ID: 42, UserID: 7, CategoryID: 3, Status: model.PostStatusPublished, LikesCount: 5, CreatedAt: baseTime}
	require.NoError(t, repo.IndexPost(ctx, NewPostES(post)))

	req := fake.last("/_doc/42")
	assert.Equal(t, http.MethodPut, req.Method)
	var doc PostES
	require.NoError(t, json.Unmarshal(req.Body, &doc))
	assert.Equal(t, *NewPostES(post), doc)

	// 文档不存在时删除视为成功
	require.NoError(t, repo.DeletePost(ctx, 9))
	assert.Equal(t, http.MethodDelete, fake.last("/_doc/9").Method)
}
