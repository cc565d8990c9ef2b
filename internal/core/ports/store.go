package ports

import "go.trai.ch/tempo/internal/core/domain"

// ProjectStore loads project snapshots and persists recalculation results.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ProjectStore interface {
	// Load reads the full snapshot of the referenced project.
	Load(ref string) (*domain.Project, error)

	// Apply writes the deltas of a result back to the referenced project.
	// A result without deltas is a no-op.
	Apply(ref string, result *domain.Result) error
}

// ProjectImporter stores whole project snapshots.
type ProjectImporter interface {
	// Import inserts or replaces the project and all of its tasks and holidays.
	Import(project *domain.Project) error
}
