package domain

import "time"

// Outcome tells whether the solver reached a fixed point or was stopped by
// its iteration cap.
type Outcome string

const (
	// Converged means a full relaxation pass produced no change.
	Converged Outcome = "converged"
	// IterationLimitReached means the solver stopped at its iteration cap and
	// returned its best-effort state. This is expected for cyclic links.
	IterationLimitReached Outcome = "iteration_limit_reached"
)

// ScheduleDelta is a proposed change of a task's planned dates.
type ScheduleDelta struct {
	TaskID      string `json:"task_id"`
	NewStart    Date   `json:"new_start"`
	NewEnd      Date   `json:"new_end"`
	NewDuration int    `json:"new_duration"`
}

// ProgressDelta is a proposed change of a parent task's progress and,
// when the roll-up completes it, its status.
type ProgressDelta struct {
	TaskID      string  `json:"task_id"`
	NewProgress float64 `json:"new_progress"`
	NewStatus   *string `json:"new_status,omitempty"`
}

// Summary describes a recalculation at a glance.
type Summary struct {
	ScheduleUpdateCount int     `json:"schedule_update_count"`
	ProgressUpdateCount int     `json:"progress_update_count"`
	IterationsUsed      int     `json:"iterations_used"`
	Outcome             Outcome `json:"outcome"`
}

// Result is everything a recalculation hands back to its caller.
type Result struct {
	ProjectID string          `json:"project_id"`
	Schedule  []ScheduleDelta `json:"schedule"`
	Progress  []ProgressDelta `json:"progress"`
	Summary   Summary         `json:"summary"`
}

// Empty reports whether the result carries no deltas.
func (r *Result) Empty() bool {
	return len(r.Schedule) == 0 && len(r.Progress) == 0
}

// RunRecord is what the run journal remembers about the last recalculation
// of a project reference.
type RunRecord struct {
	Ref         string    `json:"ref"`
	ProjectID   string    `json:"project_id,omitzero"`
	RunID       string    `json:"run_id,omitzero"`
	Fingerprint string    `json:"fingerprint,omitzero"`
	Summary     Summary   `json:"summary,omitzero"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}
