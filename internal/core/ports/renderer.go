package ports

import (
	"context"
	"time"

	"go.trai.ch/tempo/internal/core/domain"
)

// Renderer is the abstraction for output rendering.
// It decouples telemetry collection from presentation, so the same span
// stream can drive terminal output or stay silent for JSON reports.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting new events and flush its output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called with the project references about to be recalculated.
	OnPlanEmit(refs []string)

	// OnTaskStart is called when a span begins.
	// parentID is empty for root spans.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called when a span emits output.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a span ends. err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)

	// OnResult is called once per project with the recalculation result.
	// skipped is true when the snapshot was unchanged since the last run.
	OnResult(ref string, result *domain.Result, skipped bool)
}
