package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"resumebot-ai/internal/metrics"
	"resumebot-ai/pkg/redis"

	"github.com/rs/zerolog/log"
)

const documentCacheKeyPrefix = "documents:"

// CachedDocuments is the snapshot served by the documents endpoint.
type CachedDocuments struct {
	OptimizedResume string `json:"optimized_resume"`
	CoverLetter     string `json:"cover_letter"`
}

// DocumentCacheRepository is a best-effort read-through cache. Failures are logged and reported
// as misses so the store stays the source of truth.
type DocumentCacheRepository interface {
	Get(ctx context.Context, conversationID string) (*CachedDocuments, bool)
	Set(ctx context.Context, conversationID string, docs *CachedDocuments)
	Invalidate(ctx context.Context, conversationID string)
}

type documentCacheRepository struct {
	redisRepo redis.IRedisRepositories
	ttl       time.Duration
}

func NewDocumentCacheRepository(redisRepo redis.IRedisRepositories, ttl time.Duration) DocumentCacheRepository {
	return &documentCacheRepository{redisRepo: redisRepo, ttl: ttl}
}

func (r *documentCacheRepository) Get(ctx context.Context, conversationID string) (*CachedDocuments, bool) {
	data, err := r.redisRepo.Get(ctx, documentCacheKeyPrefix+conversationID)
	if err != nil {
		if !errors.Is(err, redis.ErrKeyNotFound) {
			log.Warn().Err(err).Str("conversation_id", conversationID).Msg("Document cache read failed")
		}
		metrics.RecordCacheLookup(false)
		return nil, false
	}

	var docs CachedDocuments
	if err := json.Unmarshal(data, &docs); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("Discarding malformed document cache entry")
		r.Invalidate(ctx, conversationID)
		metrics.RecordCacheLookup(false)
		return nil, false
	}
	metrics.RecordCacheLookup(true)
	return &docs, true
}

func (r *documentCacheRepository) Set(ctx context.Context, conversationID string, docs *CachedDocuments) {
	data, err := json.Marshal(docs)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode document cache entry")
		return
	}
	if err := r.redisRepo.Set(ctx, documentCacheKeyPrefix+conversationID, data, r.ttl); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("Document cache write failed")
	}
}

func (r *documentCacheRepository) Invalidate(ctx context.Context, conversationID string) {
	if err := r.redisRepo.Del(ctx, documentCacheKeyPrefix+conversationID); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("Document cache invalidation failed")
	}
}

// NewNoopDocumentCacheRepository is used when no Redis host is configured.
func NewNoopDocumentCacheRepository() DocumentCacheRepository {
	return noopDocumentCache{}
}

type noopDocumentCache struct{}

func (noopDocumentCache) Get(context.Context, string) (*CachedDocuments, bool) { return nil, false }
func (noopDocumentCache) Set(context.Context, string, *CachedDocuments)        {}
func (noopDocumentCache) Invalidate(context.Context, string)                   {}
