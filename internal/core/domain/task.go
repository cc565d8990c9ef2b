package domain

import (
	"math"
	"time"
)

// MaxSpanDays caps task durations and link lags, in working days.
// Larger stored values are clamped to it.
const MaxSpanDays = 3660

// ClampSpan limits n to ±MaxSpanDays.
func ClampSpan(n int) int {
	return max(-MaxSpanDays, min(n, MaxSpanDays))
}

// Task is one row of a project's work breakdown as read from the item store.
// The engine treats it as read-only input.
type Task struct {
	ID           string
	Code         string
	Name         string
	Duration     float64
	PlannedStart *Date
	PlannedEnd   *Date
	CreatedAt    time.Time
	Weight       *float64
	Metadata     Metadata
	Status       string
}

// Metadata holds the free-form fields the engine reads from a task.
type Metadata struct {
	// Progress is either a 0..1 fraction or a percentage (values above 1).
	Progress *float64
	// Predecessors is the raw predecessor text, e.g. "3FS+2;7SS-1".
	Predecessors string
}

// EffectiveDuration returns the duration in whole working days used for
// scheduling: values below one or non-finite values become 1, values above
// MaxSpanDays become MaxSpanDays, everything else is rounded up.
func (t *Task) EffectiveDuration() int {
	d := t.Duration
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 1 {
		return 1
	}
	if d > MaxSpanDays {
		return MaxSpanDays
	}
	return int(math.Ceil(d))
}

// EffectiveWeight returns the roll-up weight of the task, defaulting to 1
// when the weight is absent, non-positive or non-finite.
func (t *Task) EffectiveWeight() float64 {
	if t.Weight == nil {
		return 1
	}
	w := *t.Weight
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return 1
	}
	return w
}

// ProgressFraction returns the task's progress normalized to 0..1.
// Absent progress counts as zero.
func (t *Task) ProgressFraction() float64 {
	if t.Metadata.Progress == nil {
		return 0
	}
	return NormalizeProgress(*t.Metadata.Progress)
}

// AnchorDate returns the day the task is seeded from: its planned start,
// or its creation day when no planned start is stored.
func (t *Task) AnchorDate() Date {
	if t.PlannedStart != nil && !t.PlannedStart.IsZero() {
		return *t.PlannedStart
	}
	return DateOf(t.CreatedAt)
}
