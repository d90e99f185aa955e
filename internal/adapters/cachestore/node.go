package cachestore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/wipt/internal/adapters/config"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports"
)

// NodeID is the unique identifier for the cache store Graft node.
const NodeID graft.ID = "adapter.cache_store"

func init() {
	graft.Register(graft.Node[ports.CacheStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.CacheStore, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(settings.CachePath), nil
		},
	})
}
