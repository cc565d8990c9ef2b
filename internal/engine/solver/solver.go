// Package solver propagates dependency constraints through a project's tasks
// by bounded fixed-point relaxation.
package solver

import (
	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/engine/calendar"
	"go.trai.ch/tempo/internal/engine/links"
)

// DefaultIterationFactor multiplied by the task count gives the pass cap.
const DefaultIterationFactor = 3

// Options tunes a Solve call.
type Options struct {
	// IterationFactor bounds the number of passes to IterationFactor × task count.
	// Values below 1 select DefaultIterationFactor.
	IterationFactor int
}

// State is the computed schedule of one task.
type State struct {
	Start    domain.Date
	End      domain.Date
	Duration int
}

// Solution is the outcome of a Solve call.
type Solution struct {
	// States holds the final state of every task, indexed like the input.
	States []State
	// Deltas lists the tasks whose final state differs from their stored
	// planned dates or duration, in stable (code, creation time) order.
	Deltas     []domain.ScheduleDelta
	Iterations int
	Outcome    domain.Outcome
}

type edge struct {
	pred     int
	linkType domain.LinkType
	lag      int
}

// Solve seeds every task from its planned start and duration, then relaxes
// all predecessor constraints until a pass changes nothing or the iteration
// cap is reached. Tasks without predecessors never move after seeding.
// Cyclic links are not detected; the cap guarantees termination.
func Solve(tasks []domain.Task, cal *calendar.Engine, opts Options) Solution {
	factor := opts.IterationFactor
	if factor < 1 {
		factor = DefaultIterationFactor
	}

	resolver := links.NewResolver(tasks)
	order := resolver.Order()
	states := seed(tasks, cal)
	edges := resolveEdges(tasks, resolver)

	maxIterations := factor * len(tasks)
	iterations := 0
	outcome := domain.Converged
	for {
		if iterations >= maxIterations {
			outcome = domain.IterationLimitReached
			break
		}
		iterations++
		if !relax(order, edges, states, cal) {
			break
		}
	}
	if len(tasks) == 0 {
		outcome = domain.Converged
	}

	return Solution{
		States:     states,
		Deltas:     diff(tasks, order, states),
		Iterations: iterations,
		Outcome:    outcome,
	}
}

func seed(tasks []domain.Task, cal *calendar.Engine) []State {
	states := make([]State, len(tasks))
	for i := range tasks {
		start := cal.NormalizeStart(tasks[i].AnchorDate())
		duration := tasks[i].EffectiveDuration()
		states[i] = State{
			Start:    start,
			End:      cal.CalculateEndDate(start, float64(duration)),
			Duration: duration,
		}
	}
	return states
}

// resolveEdges parses and resolves every predecessor field once. The result
// does not depend on the evolving state, so it is shared by all passes.
func resolveEdges(tasks []domain.Task, resolver *links.Resolver) [][]edge {
	edges := make([][]edge, len(tasks))
	for i := range tasks {
		for _, l := range links.Parse(tasks[i].Metadata.Predecessors) {
			pred, ok := resolver.Resolve(l.Ref)
			if !ok {
				continue
			}
			edges[i] = append(edges[i], edge{pred: pred, linkType: l.Type, lag: l.Lag})
		}
	}
	return edges
}

// relax runs one pass in stable order and reports whether any start moved.
func relax(order []int, edges [][]edge, states []State, cal *calendar.Engine) bool {
	changed := false
	for _, i := range order {
		if len(edges[i]) == 0 {
			continue
		}

		var latest domain.Date
		found := false
		for _, e := range edges[i] {
			c := candidate(e, states[e.pred], states[i].Duration, cal)
			if !found || c.After(latest) {
				latest = c
				found = true
			}
		}

		if found && !latest.Equal(states[i].Start) {
			states[i].Start = latest
			states[i].End = cal.CalculateEndDate(latest, float64(states[i].Duration))
			changed = true
		}
	}
	return changed
}

// candidate computes the earliest start of a successor with the given
// duration under one link to pred.
func candidate(e edge, pred State, duration int, cal *calendar.Engine) domain.Date {
	var c domain.Date
	switch e.linkType {
	case domain.StartToStart:
		c = cal.AddWorkingDays(pred.Start, e.lag)
	case domain.FinishToFinish:
		c = cal.AddWorkingDays(cal.AddWorkingDays(pred.End, e.lag), -(duration - 1))
	case domain.StartToFinish:
		c = cal.AddWorkingDays(cal.AddWorkingDays(pred.Start, e.lag), -(duration - 1))
	default:
		c = cal.AddWorkingDays(pred.End, 1+e.lag)
	}
	return cal.NormalizeStart(c)
}

func diff(tasks []domain.Task, order []int, states []State) []domain.ScheduleDelta {
	var deltas []domain.ScheduleDelta
	for _, i := range order {
		t, s := &tasks[i], states[i]
		if t.PlannedStart != nil && t.PlannedStart.Equal(s.Start) &&
			t.PlannedEnd != nil && t.PlannedEnd.Equal(s.End) &&
			t.Duration == float64(s.Duration) {
			continue
		}
		deltas = append(deltas, domain.ScheduleDelta{
			TaskID:      t.ID,
			NewStart:    s.Start,
			NewEnd:      s.End,
			NewDuration: s.Duration,
		})
	}
	return deltas
}
