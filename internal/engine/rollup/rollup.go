// Package rollup aggregates child task progress into their WBS parents.
package rollup

import (
	"strings"

	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/engine/links"
)

// Aggregate computes the weighted progress of every task that has WBS
// descendants. A descendant is any other task whose code starts with the
// parent's code followed by a dot, at any depth. Parents reaching 100% get
// completedStatus; the status of other parents is left alone.
//
// Only parents whose stored progress or status would change are returned,
// in stable (code, creation time) order. All aggregates read the stored
// snapshot, so the result does not depend on evaluation order.
func Aggregate(tasks []domain.Task, completedStatus string) []domain.ProgressDelta {
	if completedStatus == "" {
		completedStatus = domain.DefaultCompletedStatus
	}

	var deltas []domain.ProgressDelta
	for _, i := range links.StableOrder(tasks) {
		parent := &tasks[i]
		if parent.Code == "" {
			continue
		}

		progress, ok := weightedProgress(tasks, i)
		if !ok {
			continue
		}

		delta := domain.ProgressDelta{TaskID: parent.ID, NewProgress: progress}
		if progress >= 1 && parent.Status != completedStatus {
			status := completedStatus
			delta.NewStatus = &status
		}

		if delta.NewStatus == nil && storedProgress(parent) == progress {
			continue
		}
		deltas = append(deltas, delta)
	}
	return deltas
}

// weightedProgress returns the weighted mean progress of the descendants of
// tasks[parent], rounded to 4 decimals. It reports false when there are none.
func weightedProgress(tasks []domain.Task, parent int) (float64, bool) {
	prefix := tasks[parent].Code + "."

	var sum, weights float64
	found := false
	for j := range tasks {
		if j == parent || !strings.HasPrefix(tasks[j].Code, prefix) {
			continue
		}
		w := tasks[j].EffectiveWeight()
		sum += w * tasks[j].ProgressFraction()
		weights += w
		found = true
	}
	if !found || weights <= 0 {
		return 0, false
	}
	return domain.RoundProgress(sum / weights), true
}

// storedProgress returns the parent's current progress as a rounded
// fraction, or -1 when none is stored so that any aggregate differs.
func storedProgress(t *domain.Task) float64 {
	if t.Metadata.Progress == nil {
		return -1
	}
	return domain.RoundProgress(domain.NormalizeProgress(*t.Metadata.Progress))
}
