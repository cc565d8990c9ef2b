package journal

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tempo/internal/core/ports"
)

// NodeID is the unique identifier for the run journal Graft node.
const NodeID graft.ID = "adapter.run_journal"

func init() {
	graft.Register(graft.Node[ports.RunJournal]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RunJournal, error) {
			return NewStore(), nil
		},
	})
}
