package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/providers"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
)

// CachedRecipientAdapter wraps a RecipientRepository with a short-lived cache.
// Admin assignments change rarely while a sweep fans out to the same branches
// many times.
type CachedRecipientAdapter struct {
	adapter    repositories.RecipientRepository
	cache      providers.CacheProvider
	ttlSeconds int
}

// NewCachedRecipientAdapter creates a new cached recipient adapter
func NewCachedRecipientAdapter(adapter repositories.RecipientRepository, cache providers.CacheProvider, ttlSeconds int) repositories.RecipientRepository {
	return &CachedRecipientAdapter{
		adapter:    adapter,
		cache:      cache,
		ttlSeconds: ttlSeconds,
	}
}

const superAdminsCacheKey = "recipients:super_admins"

func branchAdminsCacheKey(branchID string) string {
	return fmt.Sprintf("recipients:branch:%s", branchID)
}

// ListSuperAdminUserIDs returns super-admin ids, from cache when possible
func (a *CachedRecipientAdapter) ListSuperAdminUserIDs(ctx context.Context) ([]string, error) {
	return a.cached(ctx, superAdminsCacheKey, a.adapter.ListSuperAdminUserIDs)
}

// ListBranchAdminUserIDs returns branch-admin ids, from cache when possible
func (a *CachedRecipientAdapter) ListBranchAdminUserIDs(ctx context.Context, branchID string) ([]string, error) {
	return a.cached(ctx, branchAdminsCacheKey(branchID), func(ctx context.Context) ([]string, error) {
		return a.adapter.ListBranchAdminUserIDs(ctx, branchID)
	})
}

func (a *CachedRecipientAdapter) cached(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	if raw, err := a.cache.Get(ctx, key); err == nil {
		var ids []string
		if err := json.Unmarshal(raw, &ids); err == nil {
			return ids, nil
		}
		log.Warn().Str("cache_key", key).Msg("discarding undecodable cached recipients")
	}

	ids, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(ids); err == nil {
		if err := a.cache.Set(ctx, key, data, a.ttlSeconds); err != nil {
			log.Warn().Err(err).Str("cache_key", key).Msg("failed to cache recipients")
		}
	}

	return ids, nil
}
