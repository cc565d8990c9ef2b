// Package scheduler runs one recalculation of a project snapshot.
package scheduler

import (
	"context"
	"fmt"

	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/core/ports"
	"go.trai.ch/tempo/internal/engine/calendar"
	"go.trai.ch/tempo/internal/engine/rollup"
	"go.trai.ch/tempo/internal/engine/solver"
)

const (
	// SpanSchedule is the name of the span covering seeding and propagation.
	SpanSchedule = "Seed & Propagate Schedule"
	// SpanProgress is the name of the span covering the progress roll-up.
	SpanProgress = "Roll Up Progress"
)

// Options tunes a recalculation.
type Options struct {
	// IterationFactor bounds the solver passes; values below 1 use the default.
	IterationFactor int
	// CompletedStatus is the status written to parents that reach 100%.
	CompletedStatus string
}

// Scheduler computes schedule and progress deltas for project snapshots.
// It holds no per-project state and is safe for concurrent use.
type Scheduler struct {
	tracer ports.Tracer
	logger ports.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(tracer ports.Tracer, logger ports.Logger) *Scheduler {
	return &Scheduler{
		tracer: tracer,
		logger: logger,
	}
}

// Recalculate seeds and propagates the schedule of the project, then rolls
// up progress over the same snapshot. The project is not modified.
//
// Cyclic or malformed links never fail a recalculation; a run stopped by the
// iteration cap is reported through Summary.Outcome. Errors are returned only
// for a nil project or a context cancelled between phases.
func (s *Scheduler) Recalculate(ctx context.Context, project *domain.Project, opts Options) (*domain.Result, error) {
	if project == nil {
		return nil, domain.ErrNilProject
	}

	solution := s.propagate(ctx, project, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress := s.rollUp(ctx, project, opts)

	result := &domain.Result{
		ProjectID: project.ID,
		Schedule:  solution.Deltas,
		Progress:  progress,
		Summary: domain.Summary{
			ScheduleUpdateCount: len(solution.Deltas),
			ProgressUpdateCount: len(progress),
			IterationsUsed:      solution.Iterations,
			Outcome:             solution.Outcome,
		},
	}
	if result.Schedule == nil {
		result.Schedule = []domain.ScheduleDelta{}
	}
	if result.Progress == nil {
		result.Progress = []domain.ProgressDelta{}
	}
	return result, nil
}

func (s *Scheduler) propagate(ctx context.Context, project *domain.Project, opts Options) solver.Solution {
	_, span := s.tracer.Start(ctx, SpanSchedule)
	defer span.End()

	solution := solver.Solve(project.Tasks, calendar.New(project.Calendar), solver.Options{
		IterationFactor: opts.IterationFactor,
	})

	span.SetAttribute("tasks", len(project.Tasks))
	span.SetAttribute("iterations", solution.Iterations)
	span.SetAttribute("outcome", string(solution.Outcome))
	span.SetAttribute("schedule_updates", len(solution.Deltas))

	if solution.Outcome == domain.IterationLimitReached {
		s.logger.Warn(fmt.Sprintf(
			"project %s: iteration limit reached after %d passes, links may be cyclic",
			project.ID, solution.Iterations,
		))
	}
	return solution
}

func (s *Scheduler) rollUp(ctx context.Context, project *domain.Project, opts Options) []domain.ProgressDelta {
	_, span := s.tracer.Start(ctx, SpanProgress)
	defer span.End()

	progress := rollup.Aggregate(project.Tasks, opts.CompletedStatus)
	span.SetAttribute("progress_updates", len(progress))
	return progress
}
