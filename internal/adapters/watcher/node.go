package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tempo/internal/adapters/logger"
	"go.trai.ch/tempo/internal/core/ports"
)

// NodeID is the unique identifier for the watcher factory Graft node.
const NodeID graft.ID = "adapter.watcher"

// Factory creates a file watcher on demand, so commands that never watch do
// not hold operating system watch handles.
type Factory func() (ports.Watcher, error)

func init() {
	graft.Register(graft.Node[Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return func() (ports.Watcher, error) {
				return NewWatcher(func(err error) {
					log.Warn("watcher: file system error: " + err.Error())
				})
			}, nil
		},
	})
}
