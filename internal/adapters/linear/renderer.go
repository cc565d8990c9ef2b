// Package linear provides a synchronous, line-buffered renderer for terminals and CI logs.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/core/ports"
	"go.trai.ch/tempo/internal/ui/output"
	"go.trai.ch/tempo/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer. Span progress goes to stderr,
// recalculation reports go to stdout.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	out    *termenv.Output

	mu      sync.Mutex
	spans   map[string]*spanState
	buffers map[string]*bytes.Buffer
}

type spanState struct {
	name      string
	root      bool
	startTime time.Time
}

// NewRenderer creates a Renderer using the ANSI color profile.
// Nil writers select os.Stdout and os.Stderr.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	return NewRendererWithProfile(stdout, stderr, output.ColorProfileANSI())
}

// NewRendererWithProfile creates a Renderer with an explicit color profile.
func NewRendererWithProfile(stdout, stderr io.Writer, profile termenv.Profile) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		out:     termenv.NewOutput(stdout, termenv.WithProfile(profile)),
		spans:   make(map[string]*spanState),
		buffers: make(map[string]*bytes.Buffer),
	}
}

// Start is a no-op for the linear renderer.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes all pending span output.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}
	return nil
}

// Wait is a no-op for the linear renderer.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints how many projects are about to be recalculated.
func (r *Renderer) OnPlanEmit(refs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "%s %s\n",
		r.paint(style.Arrow, style.Iris),
		pluralize(len(refs), "project", "projects")+" to recalculate")
}

// OnTaskStart records the span and announces root spans.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spans[spanID] = &spanState{name: name, root: parentID == "", startTime: startTime}
	r.buffers[spanID] = new(bytes.Buffer)

	if parentID == "" {
		_, _ = fmt.Fprintf(r.stderr, "%s %s\n", r.paint(style.Circle, style.Slate), name)
	}
}

// OnTaskLog buffers span output and prints complete lines with the span name.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	span, ok := r.spans[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)
	for {
		line, err := buf.ReadBytes('\n')
		if err != nil {
			if len(line) > 0 {
				rest := new(bytes.Buffer)
				rest.Write(line)
				r.buffers[spanID] = rest
			}
			break
		}
		r.printLineLocked(span.name, line)
	}
}

// OnTaskComplete flushes pending output and prints the outcome of root
// spans and of any failed span.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	span, ok := r.spans[spanID]
	if !ok {
		return
	}
	r.flushBufferLocked(spanID)

	elapsed := endTime.Sub(span.startTime).Round(time.Millisecond)
	switch {
	case err != nil:
		_, _ = fmt.Fprintf(r.stderr, "%s %s failed after %v: %v\n",
			r.paint(style.Cross, style.Red), span.name, elapsed, err)
	case span.root:
		_, _ = fmt.Fprintf(r.stderr, "%s %s done in %v\n",
			r.paint(style.Check, style.Green), span.name, elapsed)
	}

	delete(r.spans, spanID)
	delete(r.buffers, spanID)
}

// OnResult prints the deltas and summary of one recalculation.
func (r *Renderer) OnResult(ref string, result *domain.Result, skipped bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if skipped {
		_, _ = fmt.Fprintf(r.stdout, "%s %s %s\n",
			r.paint(style.Tilde, style.Slate), ref, r.paint("unchanged since last run, skipped", style.Slate))
		return
	}
	if result == nil {
		return
	}

	heading := ref
	if result.ProjectID != "" && result.ProjectID != ref {
		heading = fmt.Sprintf("%s (%s)", result.ProjectID, ref)
	}
	_, _ = fmt.Fprintln(r.stdout, r.out.String(heading).Bold().Foreground(r.out.Color(string(style.Iris))).String())

	for _, d := range result.Schedule {
		_, _ = fmt.Fprintf(r.stdout, "  %s %-12s %s %s %s  %s\n",
			r.paint(style.Dot, style.Sky), d.TaskID,
			r.paint(d.NewStart.String(), style.Sky), style.Arrow, r.paint(d.NewEnd.String(), style.Sky),
			r.paint(pluralize(d.NewDuration, "day", "days"), style.Slate))
	}
	for _, d := range result.Progress {
		line := fmt.Sprintf("  %s %-12s %s", r.paint(style.Dot, style.Green), d.TaskID, formatPercent(d.NewProgress))
		if d.NewStatus != nil {
			line += fmt.Sprintf("  status %s %s", style.Arrow, r.paint(*d.NewStatus, style.Green))
		}
		_, _ = fmt.Fprintln(r.stdout, line)
	}

	_, _ = fmt.Fprintln(r.stdout, "  "+r.summaryLine(result.Summary))
}

func (r *Renderer) summaryLine(s domain.Summary) string {
	counts := fmt.Sprintf("%s, %s",
		pluralize(s.ScheduleUpdateCount, "schedule update", "schedule updates"),
		pluralize(s.ProgressUpdateCount, "progress update", "progress updates"))

	if s.Outcome == domain.IterationLimitReached {
		return counts + ", " + r.paint(fmt.Sprintf("%s iteration limit reached after %s, links may be cyclic",
			style.Warning, pluralize(s.IterationsUsed, "pass", "passes")), style.Yellow)
	}
	return counts + ", " + r.paint("converged after "+pluralize(s.IterationsUsed, "pass", "passes"), style.Slate)
}

// flushBufferLocked prints any partial line left for the span.
// Must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	span, ok := r.spans[spanID]
	if !ok {
		return
	}
	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(span.name, buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked prints a line prefixed with the span name.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "%s %s\n", r.paint("["+name+"]", style.Slate), line)
}

func (r *Renderer) paint(s string, color lipgloss.Color) string {
	return r.out.String(s).Foreground(r.out.Color(string(color))).String()
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func formatPercent(v float64) string {
	s := fmt.Sprintf("%.2f", v*100)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + "%"
}
