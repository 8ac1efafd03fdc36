package es

import (
	"Agora/internal/api/config"
	"Agora/internal/pkg/logger"
	"context"
	log "log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

const (
	NotFoundCode = 404
)

// NewClient 创建 Elasticsearch 客户端并确认帖子索引存在
func NewClient(ctx context.Context, cfg config.ElasticConfig) (*elasticsearch.TypedClient, error) {
	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses: []string{cfg.Address},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &logger.ESTransport{
			Transport: http.DefaultTransport,
		},
	})
	if err != nil {
		log.Error("Cannot Connect to Elasticsearch", "err", err)
		return nil, err
	}

	info, err := client.Info().Do(ctx)
	if err != nil {
		log.Error("Cannot Connect to Elasticsearch", "err", err)
		return nil, err
	}
	log.Info("Connected to Elasticsearch", "version", info.Version.Int)

	if err = EnsurePostIndex(ctx, client, cfg.PostIndex); err != nil {
		return nil, err
	}
	return client, nil
}

// EnsurePostIndex 索引不存在时按候选检索需要的字段创建
func EnsurePostIndex(ctx context.Context, client *elasticsearch.TypedClient, index string) error {
	exists, err := client.Indices.Exists(index).Do(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = client.Indices.Create(index).
		Mappings(&types.TypeMapping{
			Properties: map[string]types.Property{
				"id":             types.NewLongNumberProperty(),
				"user_id":        types.NewLongNumberProperty(),
				"category_id":    types.NewLongNumberProperty(),
				"status":         types.NewByteNumberProperty(),
				"likes_count":    types.NewIntegerNumberProperty(),
				"comments_count": types.NewIntegerNumberProperty(),
				"collects_count": types.NewIntegerNumberProperty(),
				"created_at":     types.NewDateProperty(),
			},
		}).
		Do(ctx)
	if err != nil {
		log.Error("Create post index failed", "index", index, "err", err)
		return err
	}
	log.Info("Created post index", "index", index)
	return nil
}
