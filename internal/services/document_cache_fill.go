package services

import (
	"context"
	"sync"

	"resumebot-ai/internal/repositories"
)

// documentCacheFills serializes read-through fills against invalidations. A fill started before
// a write to the same conversation is dropped, so a reader holding a pre-write snapshot cannot
// repopulate the cache after the writer cleared it.
type documentCacheFills struct {
	cache repositories.DocumentCacheRepository

	mu      sync.Mutex
	next    uint64
	pending map[string]map[uint64]struct{}
}

func newDocumentCacheFills(cache repositories.DocumentCacheRepository) *documentCacheFills {
	return &documentCacheFills{cache: cache, pending: map[string]map[uint64]struct{}{}}
}

// begin registers a fill for conversationID. Call it before reading from the store.
func (f *documentCacheFills) begin(conversationID string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	tokens, ok := f.pending[conversationID]
	if !ok {
		tokens = map[uint64]struct{}{}
		f.pending[conversationID] = tokens
	}
	tokens[f.next] = struct{}{}
	return f.next
}

// commit stores docs only if no invalidation happened since begin. docs may be nil to just
// release the token.
func (f *documentCacheFills) commit(ctx context.Context, conversationID string, token uint64, docs *repositories.CachedDocuments) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	tokens, ok := f.pending[conversationID]
	if !ok {
		return false
	}
	if _, ok := tokens[token]; !ok {
		return false
	}
	delete(tokens, token)
	if len(tokens) == 0 {
		delete(f.pending, conversationID)
	}
	if docs == nil {
		return false
	}
	f.cache.Set(ctx, conversationID, docs)
	return true
}

// invalidate drops the cached entry and cancels every fill in flight for conversationID.
func (f *documentCacheFills) invalidate(ctx context.Context, conversationID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, conversationID)
	f.cache.Invalidate(ctx, conversationID)
}
