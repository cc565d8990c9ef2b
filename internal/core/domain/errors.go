package domain

import "go.trai.ch/zerr"

var (
	// ErrNilProject is returned when a recalculation is requested without a project.
	ErrNilProject = zerr.New("project snapshot is nil")

	// ErrInvalidDate is returned when a date cannot be parsed.
	ErrInvalidDate = zerr.New("invalid date, expected YYYY-MM-DD")

	// ErrInvalidProject is returned when a project file fails validation.
	ErrInvalidProject = zerr.New("invalid project")

	// ErrDuplicateTaskID is returned when two tasks of a project share an id.
	ErrDuplicateTaskID = zerr.New("duplicate task id")

	// ErrProjectNotFound is returned when a referenced project does not exist.
	ErrProjectNotFound = zerr.New("project not found")

	// ErrProjectLoadFailed is returned when a project snapshot cannot be loaded.
	ErrProjectLoadFailed = zerr.New("failed to load project")

	// ErrProjectWriteFailed is returned when deltas cannot be written back.
	ErrProjectWriteFailed = zerr.New("failed to write project")

	// ErrConfigReadFailed is returned when a project file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read project file")

	// ErrConfigParseFailed is returned when a project file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse project file")

	// ErrSettingsLoadFailed is returned when the settings file cannot be loaded.
	ErrSettingsLoadFailed = zerr.New("failed to load settings")

	// ErrDatabaseOpenFailed is returned when the SQLite database cannot be opened.
	ErrDatabaseOpenFailed = zerr.New("failed to open database")

	// ErrDatabaseQueryFailed is returned when a SQLite statement fails.
	ErrDatabaseQueryFailed = zerr.New("database query failed")

	// ErrJournalReadFailed is returned when a run record cannot be read.
	ErrJournalReadFailed = zerr.New("failed to read run record")

	// ErrJournalWriteFailed is returned when a run record cannot be written.
	ErrJournalWriteFailed = zerr.New("failed to write run record")

	// ErrLockFailed is returned when the project lock cannot be acquired.
	ErrLockFailed = zerr.New("failed to lock project")

	// ErrNoProjectsSpecified is returned when recalc or watch is called without projects.
	ErrNoProjectsSpecified = zerr.New("no projects specified")

	// ErrRecalculationFailed is joined onto every failure of the recalculation
	// pipeline around the engine (loading, locking, persisting).
	ErrRecalculationFailed = zerr.New("recalculation failed")
)
