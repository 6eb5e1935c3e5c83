package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartpromo/backend-go/internal/config"
	"github.com/smartpromo/backend-go/internal/domain"
)

const (
	analysisKeyPrefix     = "promo:analysis"
	analysisScanBatchSize = 100
)

// AnalysisCache caches full category analyses. Keys include the model
// fingerprint so retraining never serves stale results.
type AnalysisCache interface {
	Get(ctx context.Context, categoryID int64, modelFingerprint string) (*domain.CategoryAnalysis, bool, error)
	Set(ctx context.Context, categoryID int64, modelFingerprint string, analysis *domain.CategoryAnalysis) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalysisCache struct{}

func NewAnalysisCache(cfg config.CacheConfig) (AnalysisCache, error) {
	if !cfg.Enabled {
		return &noopAnalysisCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalysisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAnalysisCache() AnalysisCache {
	return &noopAnalysisCache{}
}

func (c *redisAnalysisCache) Get(ctx context.Context, categoryID int64, modelFingerprint string) (*domain.CategoryAnalysis, bool, error) {
	key := buildAnalysisKey(categoryID, modelFingerprint)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var analysis domain.CategoryAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return nil, false, fmt.Errorf("decode category analysis cache: %w", err)
	}

	return &analysis, true, nil
}

func (c *redisAnalysisCache) Set(ctx context.Context, categoryID int64, modelFingerprint string, analysis *domain.CategoryAnalysis) error {
	key := buildAnalysisKey(categoryID, modelFingerprint)
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encode category analysis cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalysisCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analysisKeyPrefix, analysisScanBatchSize)
}

func (n *noopAnalysisCache) Get(ctx context.Context, categoryID int64, modelFingerprint string) (*domain.CategoryAnalysis, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) Set(ctx context.Context, categoryID int64, modelFingerprint string, analysis *domain.CategoryAnalysis) error {
	return nil
}

func (n *noopAnalysisCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildAnalysisKey(categoryID int64, modelFingerprint string) string {
	return fmt.Sprintf("%s:%d:%s", analysisKeyPrefix, categoryID, modelFingerprint)
}
