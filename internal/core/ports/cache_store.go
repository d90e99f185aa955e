package ports

import "go.trai.ch/wipt/internal/core/domain"

// CacheStore persists the merged repository cache.
//
//go:generate mockgen -source=cache_store.go -destination=mocks/mock_cache_store.go -package=mocks
type CacheStore interface {
	// Load reads the persisted cache.
	// A missing file yields an empty cache and no error. Unreadable or corrupt data yields
	// an empty cache together with an error wrapping domain.ErrCacheCorrupt.
	Load() (*domain.Cache, error)

	// Save writes the cache so that a crash never leaves a half-written file behind.
	Save(cache *domain.Cache) error
}
