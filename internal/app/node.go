package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/wipt/internal/adapters/cachestore" //nolint:depguard // Wired in app layer
	"go.trai.ch/wipt/internal/adapters/config"     //nolint:depguard // Wired in app layer
	"go.trai.ch/wipt/internal/adapters/engine"     //nolint:depguard // Wired in app layer
	"go.trai.ch/wipt/internal/adapters/fetch"      //nolint:depguard // Wired in app layer
	"go.trai.ch/wipt/internal/adapters/logger"     //nolint:depguard // Wired in app layer
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports"
	"go.trai.ch/wipt/internal/engine/resolver"
	"go.trai.ch/wipt/internal/engine/updater"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.SettingsNodeID,
			logger.NodeID,
			cachestore.NodeID,
			fetch.NodeID,
			updater.NodeID,
			resolver.NodeID,
			engine.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(a, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	settings, err := graft.Dep[*domain.Settings](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.CacheStore](ctx)
	if err != nil {
		return nil, err
	}

	fetcher, err := graft.Dep[ports.Fetcher](ctx)
	if err != nil {
		return nil, err
	}

	upd, err := graft.Dep[*updater.Updater](ctx)
	if err != nil {
		return nil, err
	}

	res, err := graft.Dep[*resolver.Resolver](ctx)
	if err != nil {
		return nil, err
	}

	eng, err := graft.Dep[engine.Engine](ctx)
	if err != nil {
		return nil, err
	}

	return New(settings, log, store, fetcher, upd, res, eng), nil
}
