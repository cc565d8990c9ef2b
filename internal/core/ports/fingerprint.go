package ports

import "go.trai.ch/tempo/internal/core/domain"

// Fingerprinter computes a digest of everything a recalculation reads.
//
//go:generate mockgen -source=fingerprint.go -destination=mocks/mock_fingerprint.go -package=mocks
type Fingerprinter interface {
	// Fingerprint returns a stable hex digest of the project snapshot and the
	// extra values, typically the options the snapshot is recalculated with.
	Fingerprint(project *domain.Project, extra ...string) (string, error)
}
