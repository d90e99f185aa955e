package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/wipt/internal/adapters/engine"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{engine.NodeID},
		Run: func(ctx context.Context) (*Resolver, error) {
			e, err := graft.Dep[engine.Engine](ctx)
			if err != nil {
				return nil, err
			}
			return NewResolver(e), nil
		},
	})
}
