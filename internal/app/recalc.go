package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"runtime"
	"strconv"
	"sync"

	"go.trai.ch/tempo/internal/adapters/linear" //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/core/ports"
	"go.trai.ch/tempo/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	// SpanLoad is the name of the span covering the snapshot load.
	SpanLoad = "Load Snapshot"
	// SpanWriteBack is the name of the span covering the write-back.
	SpanWriteBack = "Write Back"
)

// RecalcOptions configures a recalculation run.
type RecalcOptions struct {
	// DryRun computes and prints deltas without persisting anything.
	DryRun bool
	// Force recalculates even when the snapshot is unchanged since the last run.
	Force bool
	// JSON prints the reports as JSON on stdout instead of text.
	JSON bool
	// Parallelism bounds how many projects are recalculated at once.
	// Values below 1 use the number of CPUs.
	Parallelism int
}

// Report is the outcome of one project reference.
type Report struct {
	Ref     string         `json:"ref"`
	RunID   string         `json:"run_id,omitempty"`
	Skipped bool           `json:"skipped"`
	DryRun  bool           `json:"dry_run,omitempty"`
	Result  *domain.Result `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// run bundles what the projects of one Recalculate call share.
type run struct {
	settings *ports.Settings
	stores   *stores
	sched    *scheduler.Scheduler
	tracer   ports.Tracer
	renderer ports.Renderer
	opts     RecalcOptions
}

// Recalculate recalculates every referenced project. Projects run
// concurrently; a failing project does not stop the others and all failures
// are returned joined.
func (a *App) Recalculate(ctx context.Context, refs []string, opts RecalcOptions) error {
	settings, cwd, err := a.loadSettings()
	if err != nil {
		return err
	}
	refs, err = resolveRefs(cwd, refs)
	if err != nil {
		return err
	}

	reportOut := a.stdout
	if opts.JSON {
		reportOut = io.Discard
	}
	renderer := linear.NewRenderer(reportOut, a.stderr)

	bridge := spanBridge()
	bridge.SetRenderer(renderer)
	defer bridge.SetRenderer(nil)
	if sink, ok := a.tracer.(rendererSink); ok {
		sink.WithRenderer(renderer)
		defer sink.WithRenderer(nil)
	}

	r := &run{
		settings: settings,
		stores:   &stores{files: a.files, open: a.openDatabase, dbPath: settings.Database},
		sched:    a.scheduler,
		tracer:   a.tracer,
		renderer: renderer,
		opts:     opts,
	}
	defer func() { _ = r.stores.Close() }()

	reports, err := a.recalculateAll(ctx, r, refs)

	if opts.JSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(reports); encErr != nil {
			err = errors.Join(err, zerr.Wrap(encErr, "failed to write report"))
		}
	}
	return err
}

func (a *App) recalculateAll(ctx context.Context, r *run, refs []string) ([]Report, error) {
	limit := r.opts.Parallelism
	if limit < 1 {
		limit = runtime.NumCPU()
	}

	reports := make([]Report, len(refs))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := r.renderer.Start(gctx); err != nil {
			return err
		}
		return r.renderer.Wait()
	})

	g.Go(func() error {
		defer func() { _ = r.renderer.Stop() }()

		r.tracer.EmitPlan(gctx, refs)

		var work errgroup.Group
		work.SetLimit(limit)
		for i, ref := range refs {
			work.Go(func() error {
				report, err := a.recalculateOne(ctx, r, ref)
				reports[i] = report
				if err != nil {
					reports[i].Error = err.Error()
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
				return nil
			})
		}
		return work.Wait()
	})

	if err := g.Wait(); err != nil {
		return reports, err
	}
	if len(errs) > 0 {
		return reports, errors.Join(domain.ErrRecalculationFailed, errors.Join(errs...))
	}
	return reports, nil
}

// recalculateOne runs load, fingerprint check, engine, write-back and
// journal update for one reference while holding its lock.
func (a *App) recalculateOne(ctx context.Context, r *run, ref string) (report Report, err error) {
	report = Report{Ref: ref, DryRun: r.opts.DryRun}

	ctx, span := r.tracer.Start(ctx, "Recalculate "+ref, ports.WithRoot())
	defer func() {
		if err != nil {
			err = zerr.With(err, "project", ref)
			span.RecordError(err)
		}
		span.End()
	}()

	store, err := r.stores.forRef(ref)
	if err != nil {
		return report, err
	}

	unlock, err := a.locker.Lock(ctx, r.settings.StateDir, ref)
	if err != nil {
		return report, err
	}
	defer unlock()

	project, err := a.load(ctx, r, store, ref)
	if err != nil {
		return report, err
	}

	extra := []string{r.settings.CompletedStatus, strconv.Itoa(r.settings.IterationFactor)}
	fingerprint, err := a.fingerprinter.Fingerprint(project, extra...)
	if err != nil {
		return report, err
	}

	if !r.opts.Force {
		last, err := a.journal.Get(r.settings.StateDir, ref)
		if err != nil {
			return report, err
		}
		if last != nil && last.Fingerprint == fingerprint {
			report.Skipped = true
			report.RunID = last.RunID
			r.renderer.OnResult(ref, nil, true)
			return report, nil
		}
	}

	result, err := r.sched.Recalculate(ctx, project, scheduler.Options{
		IterationFactor: r.settings.IterationFactor,
		CompletedStatus: r.settings.CompletedStatus,
	})
	if err != nil {
		return report, err
	}
	report.Result = result

	if r.opts.DryRun {
		r.renderer.OnResult(ref, result, false)
		return report, nil
	}

	if !result.Empty() {
		if fingerprint, err = a.writeBack(ctx, r, store, ref, result, extra); err != nil {
			return report, err
		}
	}

	report.RunID = a.newRunID()
	record := domain.RunRecord{
		Ref:         ref,
		ProjectID:   project.ID,
		RunID:       report.RunID,
		Fingerprint: fingerprint,
		Summary:     result.Summary,
		Timestamp:   a.now().UTC(),
	}
	if err := a.journal.Put(r.settings.StateDir, record); err != nil {
		return report, err
	}

	r.renderer.OnResult(ref, result, false)
	return report, nil
}

func (a *App) load(ctx context.Context, r *run, store ports.ProjectStore, ref string) (*domain.Project, error) {
	_, span := r.tracer.Start(ctx, SpanLoad)
	defer span.End()

	project, err := store.Load(ref)
	if err != nil {
		span.RecordError(err)
		return nil, zerr.Wrap(err, domain.ErrProjectLoadFailed.Error())
	}
	span.SetAttribute("project", project.ID)
	span.SetAttribute("tasks", len(project.Tasks))
	return project, nil
}

// writeBack applies the result and returns the fingerprint of the stored
// snapshot, so that an unchanged project is skipped on the next run.
func (a *App) writeBack(
	ctx context.Context, r *run, store ports.ProjectStore, ref string, result *domain.Result, extra []string,
) (string, error) {
	_, span := r.tracer.Start(ctx, SpanWriteBack)
	defer span.End()
	span.SetAttribute("schedule_updates", len(result.Schedule))
	span.SetAttribute("progress_updates", len(result.Progress))

	if err := store.Apply(ref, result); err != nil {
		span.RecordError(err)
		return "", err
	}

	stored, err := store.Load(ref)
	if err != nil {
		span.RecordError(err)
		return "", zerr.Wrap(err, domain.ErrProjectLoadFailed.Error())
	}
	return a.fingerprinter.Fingerprint(stored, extra...)
}
