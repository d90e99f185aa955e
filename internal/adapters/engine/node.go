package engine

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/wipt/internal/adapters/config"
	"go.trai.ch/wipt/internal/adapters/logger"
	"go.trai.ch/wipt/internal/adapters/shell"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports"
)

// NodeID is the unique identifier for the installer engine Graft node.
const NodeID graft.ID = "adapter.installer_engine"

func init() {
	graft.Register(graft.Node[Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, shell.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (Engine, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(settings, runner, log)
		},
	})
}
