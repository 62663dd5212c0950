package handlers

import (
	"context"

	"github.com/reviewlens/reviewlens-api/internal/repository"
)

// CacheHandler manages the URL-keyed review cache.
type CacheHandler struct {
	cache repository.ReviewCacheRepository
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(cache repository.ReviewCacheRepository) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// InvalidateCacheInput identifies the cache entry to drop.
type InvalidateCacheInput struct {
	URL string `query:"url" required:"true" doc:"Source URL whose cached reviews should be invalidated"`
}

// InvalidateCacheOutput confirms the invalidation.
type InvalidateCacheOutput struct {
	Body struct {
		URL string `json:"url"`
	}
}

// InvalidateCache removes the cached review set for a URL, forcing the next
// fetch to re-scrape. Removing a URL that was never cached is not an error.
func (h *CacheHandler) InvalidateCache(ctx context.Context, input *InvalidateCacheInput) (*InvalidateCacheOutput, error) {
	if err := h.cache.DeleteByURL(ctx, input.URL); err != nil {
		return nil, NewAPIError(err)
	}
	out := &InvalidateCacheOutput{}
	out.Body.URL = input.URL
	return out, nil
}
