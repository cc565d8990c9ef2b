// Package app implements the application layer for tempo.
package app

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/tempo/internal/adapters/detector"  //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/adapters/sqlite"    //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/core/ports"
	"go.trai.ch/tempo/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Database is a project store that can also import projects.
type Database interface {
	ports.ProjectStore
	ports.ProjectImporter
	Close() error
}

// DatabaseOpener opens the SQLite database at path.
type DatabaseOpener func(path string) (Database, error)

// WatcherFactory creates a file watcher.
type WatcherFactory func() (ports.Watcher, error)

// App represents the main application logic.
type App struct {
	settings      ports.SettingsLoader
	files         ports.ProjectStore
	journal       ports.RunJournal
	fingerprinter ports.Fingerprinter
	locker        ports.Locker
	logger        ports.Logger
	tracer        ports.Tracer
	scheduler     *scheduler.Scheduler
	newWatcher    WatcherFactory
	openDatabase  DatabaseOpener

	stdout   io.Writer
	stderr   io.Writer
	workDir  string
	debounce time.Duration
	now      func() time.Time
	newRunID func() string
}

// New creates a new App instance.
func New(
	settings ports.SettingsLoader,
	files ports.ProjectStore,
	journal ports.RunJournal,
	fingerprinter ports.Fingerprinter,
	locker ports.Locker,
	log ports.Logger,
	tracer ports.Tracer,
	sched *scheduler.Scheduler,
	newWatcher WatcherFactory,
) *App {
	return &App{
		settings:      settings,
		files:         files,
		journal:       journal,
		fingerprinter: fingerprinter,
		locker:        locker,
		logger:        log,
		tracer:        tracer,
		scheduler:     sched,
		newWatcher:    newWatcher,
		openDatabase: func(path string) (Database, error) {
			db, err := sqlite.Open(path)
			if err != nil {
				return nil, err
			}
			return db, nil
		},
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		debounce: defaultDebounce,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// WithOutput sets the writers for reports and progress output.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithWorkDir sets the directory relative references and settings are
// resolved against. The process working directory is used by default.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithDatabaseOpener replaces how the SQLite database is opened.
func (a *App) WithDatabaseOpener(open DatabaseOpener) *App {
	a.openDatabase = open
	return a
}

// WithClock replaces the clock used for run record timestamps.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// WithRunIDs replaces the run id generator.
func (a *App) WithRunIDs(next func() string) *App {
	a.newRunID = next
	return a
}

// WithDebounce sets how long watch mode waits for file events to settle.
func (a *App) WithDebounce(d time.Duration) *App {
	a.debounce = d
	return a
}

func (a *App) cwd() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "failed to determine working directory")
	}
	return wd, nil
}

// loadSettings resolves the settings and applies the configured log format.
func (a *App) loadSettings() (*ports.Settings, string, error) {
	cwd, err := a.cwd()
	if err != nil {
		return nil, "", err
	}
	s, err := a.settings.Load(cwd)
	if err != nil {
		return nil, "", err
	}

	if f, ok := a.logger.(interface {
		SetFormat(format logger.Format, isTerminal bool)
	}); ok {
		f.SetFormat(logger.Format(s.LogFormat), detector.Interactive(os.Stderr))
	}
	return s, cwd, nil
}

// resolveRefs normalizes project references: file paths become absolute,
// sqlite references are kept. Without references the project file of the
// working directory is used when it exists.
func resolveRefs(cwd string, refs []string) ([]string, error) {
	if len(refs) == 0 {
		def := filepath.Join(cwd, domain.ProjectFileName)
		if _, err := os.Stat(def); err != nil {
			return nil, domain.ErrNoProjectsSpecified
		}
		return []string{def}, nil
	}

	out := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if !strings.HasPrefix(ref, domain.SQLiteRefPrefix) && !filepath.IsAbs(ref) {
			ref = filepath.Join(cwd, ref)
		}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out, nil
}

func isSQLiteRef(ref string) bool {
	return strings.HasPrefix(ref, domain.SQLiteRefPrefix)
}

// stores routes references to the file store or the lazily opened database.
type stores struct {
	files  ports.ProjectStore
	open   DatabaseOpener
	dbPath string

	mu  sync.Mutex
	db  Database
	err error
}

func (s *stores) forRef(ref string) (ports.ProjectStore, error) {
	if !isSQLiteRef(ref) {
		return s.files, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil && s.err == nil {
		s.db, s.err = s.open(s.dbPath)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.db, nil
}

func (s *stores) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// rendererSink is implemented by tracers that forward span output to a renderer.
type rendererSink interface {
	WithRenderer(r ports.Renderer) *telemetry.OTelTracer
}

var (
	otelOnce   sync.Once
	otelBridge *telemetry.Bridge
)

// spanBridge installs, once per process, a tracer provider whose spans are
// reported through the returned bridge.
func spanBridge() *telemetry.Bridge {
	otelOnce.Do(func() {
		otelBridge = telemetry.NewBridge(nil)
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(otelBridge),
		)
		otel.SetTracerProvider(tp)
	})
	return otelBridge
}
