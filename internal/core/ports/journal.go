package ports

import "go.trai.ch/tempo/internal/core/domain"

// RunJournal remembers the last recalculation of each project reference.
//
//go:generate mockgen -source=journal.go -destination=mocks/mock_journal.go -package=mocks
type RunJournal interface {
	// Get returns the last record for ref below stateDir.
	// Returns nil, nil if the reference has never been recalculated.
	Get(stateDir, ref string) (*domain.RunRecord, error)

	// Put stores the record below stateDir, replacing any previous one.
	Put(stateDir string, record domain.RunRecord) error
}
