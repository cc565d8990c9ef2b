package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.trai.ch/tempo/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/core/ports"
)

const defaultDebounce = watcher.DefaultDebounceWindow

// Watch recalculates the given project files once and then again whenever
// they change, until ctx is cancelled. SQLite references cannot be watched
// and are only recalculated once. Failed recalculations are logged and do
// not stop watching.
func (a *App) Watch(ctx context.Context, refs []string, opts RecalcOptions) error {
	_, cwd, err := a.loadSettings()
	if err != nil {
		return err
	}
	refs, err = resolveRefs(cwd, refs)
	if err != nil {
		return err
	}

	var files []string
	for _, ref := range refs {
		if isSQLiteRef(ref) {
			a.logger.Warn(fmt.Sprintf("%s: database projects are recalculated once and not watched", ref))
			continue
		}
		files = append(files, ref)
	}

	// Runs triggered by file events are serialized.
	var runMu sync.Mutex
	recalc := func(paths []string) {
		runMu.Lock()
		defer runMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if err := a.Recalculate(ctx, paths, opts); err != nil {
			a.logger.Error(err)
		}
	}

	recalc(refs)
	if len(files) == 0 || ctx.Err() != nil {
		return nil
	}

	w, err := a.newWatcher()
	if err != nil {
		return err
	}
	if err := w.Start(ctx, files); err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	a.logger.Info(fmt.Sprintf("watching %d project file(s), press Ctrl+C to stop", len(files)))

	debouncer := watcher.NewDebouncer(a.debounceWindow(), recalc)
	defer debouncer.Stop()

	for event := range w.Events() {
		if event.Operation == ports.OpRemove {
			continue
		}
		debouncer.Add(event.Path)
	}
	return nil
}

func (a *App) debounceWindow() time.Duration {
	if a.debounce <= 0 {
		return defaultDebounce
	}
	return a.debounce
}
