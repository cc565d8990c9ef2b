package linear_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tempo/internal/adapters/linear"
	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/zerr"
)

func newRenderer() (*linear.Renderer, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return linear.NewRendererWithProfile(&stdout, &stderr, termenv.Ascii), &stdout, &stderr
}

func TestRenderer_SpanLifecycle(t *testing.T) {
	t.Parallel()

	r, stdout, stderr := newRenderer()
	require.NoError(t, r.Start(context.Background()))

	r.OnPlanEmit([]string{"plant.yaml", "sqlite:loop"})
	assert.Contains(t, stderr.String(), "2 projects to recalculate")

	start := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	r.OnTaskStart("root", "", "Recalculate plant.yaml", start)
	r.OnTaskStart("child", "root", "Seed & Propagate Schedule", start)
	assert.Contains(t, stderr.String(), "○ Recalculate plant.yaml")
	assert.NotContains(t, stderr.String(), "Seed & Propagate Schedule")

	r.OnTaskLog("child", []byte("first line\nsecond"))
	assert.Contains(t, stderr.String(), "[Seed & Propagate Schedule] first line")
	assert.NotContains(t, stderr.String(), "second")

	r.OnTaskComplete("child", start.Add(5*time.Millisecond), nil)
	assert.Contains(t, stderr.String(), "[Seed & Propagate Schedule] second")

	r.OnTaskComplete("root", start.Add(120*time.Millisecond), nil)
	assert.Contains(t, stderr.String(), "✓ Recalculate plant.yaml done in 120ms")

	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())
	assert.Empty(t, stdout.String())
}

func TestRenderer_SpanFailure(t *testing.T) {
	t.Parallel()

	r, _, stderr := newRenderer()
	start := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

	r.OnTaskStart("root", "", "Recalculate plant.yaml", start)
	r.OnTaskStart("child", "root", "Write Back", start)
	r.OnTaskComplete("child", start.Add(time.Second), zerr.New("disk full"))

	assert.Contains(t, stderr.String(), "✗ Write Back failed after 1s: disk full")
}

func TestRenderer_UnknownSpanIsIgnored(t *testing.T) {
	t.Parallel()

	r, stdout, stderr := newRenderer()
	r.OnTaskLog("ghost", []byte("hello\n"))
	r.OnTaskComplete("ghost", time.Now(), nil)

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRenderer_StopFlushesPartialLines(t *testing.T) {
	t.Parallel()

	r, _, stderr := newRenderer()
	r.OnTaskStart("root", "", "Recalculate", time.Now())
	r.OnTaskLog("root", []byte("dangling"))
	require.NoError(t, r.Stop())

	assert.Contains(t, stderr.String(), "[Recalculate] dangling")
}

func TestRenderer_OnResult(t *testing.T) {
	t.Parallel()

	completed := domain.DefaultCompletedStatus
	tests := []struct {
		name    string
		ref     string
		result  *domain.Result
		skipped bool
	}{
		{
			name: "result",
			ref:  "plant.yaml",
			result: &domain.Result{
				ProjectID: "plant",
				Schedule: []domain.ScheduleDelta{{
					TaskID:      "T2",
					NewStart:    domain.MustParseDate("2024-01-04"),
					NewEnd:      domain.MustParseDate("2024-01-05"),
					NewDuration: 2,
				}},
				Progress: []domain.ProgressDelta{
					{TaskID: "T1", NewProgress: 1, NewStatus: &completed},
					{TaskID: "T3", NewProgress: 0.3333},
				},
				Summary: domain.Summary{
					ScheduleUpdateCount: 1,
					ProgressUpdateCount: 2,
					IterationsUsed:      2,
					Outcome:             domain.Converged,
				},
			},
		},
		{
			name: "result_cyclic",
			ref:  "sqlite:loop",
			result: &domain.Result{
				ProjectID: "loop",
				Summary: domain.Summary{
					IterationsUsed: 6,
					Outcome:        domain.IterationLimitReached,
				},
			},
		},
		{
			name:    "result_skipped",
			ref:     "plant.yaml",
			skipped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, stdout, _ := newRenderer()
			r.OnResult(tt.ref, tt.result, tt.skipped)

			g := goldie.New(t)
			g.Assert(t, tt.name, stdout.Bytes())
		})
	}
}

func TestRenderer_ConcurrentSpans(t *testing.T) {
	t.Parallel()

	r, _, stderr := newRenderer()
	start := time.Now()

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.OnTaskStart(id, "", "Recalculate "+id, start)
			r.OnTaskLog(id, []byte("working\n"))
			r.OnTaskComplete(id, start.Add(time.Millisecond), nil)
		}()
	}
	wg.Wait()

	for _, id := range []string{"a", "b", "c", "d"} {
		assert.Contains(t, stderr.String(), "[Recalculate "+id+"] working")
	}
}
