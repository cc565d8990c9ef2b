// Package sqlite stores projects in a SQLite database.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/core/ports"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var (
	_ ports.ProjectStore    = (*Store)(nil)
	_ ports.ProjectImporter = (*Store)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL DEFAULT '',
	calendar_mode      TEXT NOT NULL DEFAULT 'business_days',
	work_hours_per_day REAL NOT NULL DEFAULT 8
);

CREATE TABLE IF NOT EXISTS holidays (
	project_id TEXT NOT NULL,
	date       TEXT NOT NULL,
	recurring  INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS tasks (
	project_id    TEXT NOT NULL,
	id            TEXT NOT NULL,
	position      INTEGER NOT NULL,
	code          TEXT NOT NULL DEFAULT '',
	name          TEXT NOT NULL DEFAULT '',
	duration      REAL NOT NULL DEFAULT 0,
	planned_start TEXT,
	planned_end   TEXT,
	created_at    TEXT NOT NULL,
	weight        REAL,
	status        TEXT NOT NULL DEFAULT '',
	metadata      TEXT NOT NULL DEFAULT '{}',
	PRIMARY KEY (project_id, id),
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_holidays_project ON holidays(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(project_id, position);
`

// Store implements ports.ProjectStore and ports.ProjectImporter on SQLite.
// References have the form "sqlite:<project-id>".
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path. The special path
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrDatabaseOpenFailed.Error()), "path", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDatabaseOpenFailed.Error()), "path", path)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000", schema} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, zerr.With(zerr.Wrap(err, domain.ErrDatabaseOpenFailed.Error()), "path", path)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ProjectID returns the project id of a "sqlite:" reference. References
// without the prefix are taken as ids.
func ProjectID(ref string) string {
	id, _ := strings.CutPrefix(ref, domain.SQLiteRefPrefix)
	return id
}

// Load reads the snapshot of the referenced project.
func (s *Store) Load(ref string) (*domain.Project, error) {
	id := ProjectID(ref)
	project := &domain.Project{ID: id}

	var mode string
	err := s.db.QueryRow(
		`SELECT name, calendar_mode, work_hours_per_day FROM projects WHERE id = ?`, id,
	).Scan(&project.Name, &mode, &project.Calendar.WorkHoursPerDay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, zerr.With(domain.ErrProjectNotFound, "project", id)
	}
	if err != nil {
		return nil, queryFailed(err, id)
	}
	project.Calendar.Mode = domain.ParseCalendarMode(mode)
	if project.Calendar.WorkHoursPerDay <= 0 {
		project.Calendar.WorkHoursPerDay = domain.DefaultWorkHoursPerDay
	}

	if project.Calendar.Holidays, err = s.loadHolidays(id); err != nil {
		return nil, err
	}
	if project.Tasks, err = s.loadTasks(id); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Store) loadHolidays(id string) ([]domain.Holiday, error) {
	rows, err := s.db.Query(`SELECT date, recurring FROM holidays WHERE project_id = ? ORDER BY date`, id)
	if err != nil {
		return nil, queryFailed(err, id)
	}
	defer func() { _ = rows.Close() }()

	var holidays []domain.Holiday
	for rows.Next() {
		var (
			raw       string
			recurring bool
		)
		if err := rows.Scan(&raw, &recurring); err != nil {
			return nil, queryFailed(err, id)
		}
		date, err := domain.ParseDate(raw)
		if err != nil {
			continue
		}
		holidays = append(holidays, domain.Holiday{Date: date, Recurring: recurring})
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed(err, id)
	}
	return holidays, nil
}

func (s *Store) loadTasks(id string) ([]domain.Task, error) {
	rows, err := s.db.Query(`
		SELECT id, code, name, duration, planned_start, planned_end, created_at, weight, status, metadata
		FROM tasks WHERE project_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, queryFailed(err, id)
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		var (
			task               domain.Task
			start, end, weight any
			createdAt, meta    string
		)
		if err := rows.Scan(
			&task.ID, &task.Code, &task.Name, &task.Duration,
			&start, &end, &createdAt, &weight, &task.Status, &meta,
		); err != nil {
			return nil, queryFailed(err, id)
		}

		task.PlannedStart = parseOptionalDate(start)
		task.PlannedEnd = parseOptionalDate(end)
		if w, ok := weight.(float64); ok {
			task.Weight = &w
		} else if w, ok := weight.(int64); ok {
			f := float64(w)
			task.Weight = &f
		}
		// A task without creation time is seeded from its planned start.
		switch t, err := time.Parse(time.RFC3339Nano, createdAt); {
		case err == nil:
			task.CreatedAt = t
		case task.PlannedStart != nil && !task.PlannedStart.IsZero():
			task.CreatedAt = task.PlannedStart.Time()
		default:
			err = zerr.With(zerr.Wrap(err, domain.ErrInvalidProject.Error()), "project", id)
			return nil, zerr.With(err, "task_id", task.ID)
		}
		task.Metadata = decodeMetadata(meta)

		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed(err, id)
	}
	return tasks, nil
}

// Apply writes the deltas of result in a single transaction.
func (s *Store) Apply(ref string, result *domain.Result) error {
	if result == nil || result.Empty() {
		return nil
	}
	id := ProjectID(ref)

	tx, err := s.db.Begin()
	if err != nil {
		return writeFailed(err, id)
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range result.Schedule {
		res, err := tx.Exec(`
			UPDATE tasks SET planned_start = ?, planned_end = ?, duration = ?
			WHERE project_id = ? AND id = ?`,
			d.NewStart.String(), d.NewEnd.String(), float64(d.NewDuration), id, d.TaskID)
		if err := checkUpdated(res, err, id, d.TaskID); err != nil {
			return err
		}
	}

	for _, d := range result.Progress {
		res, err := tx.Exec(`
			UPDATE tasks SET metadata = json_set(COALESCE(NULLIF(metadata, ''), '{}'), '$.progress', ?),
				status = COALESCE(?, status)
			WHERE project_id = ? AND id = ?`,
			d.NewProgress, nullableString(d.NewStatus), id, d.TaskID)
		if err := checkUpdated(res, err, id, d.TaskID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return writeFailed(err, id)
	}
	return nil
}

// Import inserts or replaces the project with all of its holidays and tasks.
func (s *Store) Import(project *domain.Project) error {
	if project == nil {
		return domain.ErrNilProject
	}
	id := project.ID

	tx, err := s.db.Begin()
	if err != nil {
		return writeFailed(err, id)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO projects (id, name, calendar_mode, work_hours_per_day) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			calendar_mode = excluded.calendar_mode,
			work_hours_per_day = excluded.work_hours_per_day`,
		id, project.Name, string(project.Calendar.Mode), project.Calendar.WorkHoursPerDay,
	); err != nil {
		return writeFailed(err, id)
	}

	for _, stmt := range []string{
		`DELETE FROM holidays WHERE project_id = ?`,
		`DELETE FROM tasks WHERE project_id = ?`,
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return writeFailed(err, id)
		}
	}

	for _, h := range project.Calendar.Holidays {
		if _, err := tx.Exec(
			`INSERT INTO holidays (project_id, date, recurring) VALUES (?, ?, ?)`,
			id, h.Date.String(), h.Recurring,
		); err != nil {
			return writeFailed(err, id)
		}
	}

	for i := range project.Tasks {
		t := &project.Tasks[i]
		meta, err := encodeMetadata(t.Metadata)
		if err != nil {
			return zerr.With(writeFailed(err, id), "task_id", t.ID)
		}
		if _, err := tx.Exec(`
			INSERT INTO tasks (project_id, id, position, code, name, duration, planned_start,
				planned_end, created_at, weight, status, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, t.ID, i, t.Code, t.Name, t.Duration, optionalDate(t.PlannedStart),
			optionalDate(t.PlannedEnd), t.CreatedAt.UTC().Format(time.RFC3339Nano),
			optionalFloat(t.Weight), t.Status, meta,
		); err != nil {
			return zerr.With(writeFailed(err, id), "task_id", t.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return writeFailed(err, id)
	}
	return nil
}

func checkUpdated(res sql.Result, err error, project, taskID string) error {
	if err != nil {
		return zerr.With(writeFailed(err, project), "task_id", taskID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return zerr.With(writeFailed(err, project), "task_id", taskID)
	}
	if n == 0 {
		return zerr.With(zerr.With(domain.ErrProjectWriteFailed, "project", project), "task_id", taskID)
	}
	return nil
}

func decodeMetadata(raw string) domain.Metadata {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return domain.Metadata{}
	}

	var meta domain.Metadata
	if v, ok := domain.ParseProgress(fields["progress"]); ok {
		meta.Progress = &v
	}
	if p, ok := fields["predecessors"].(string); ok {
		meta.Predecessors = p
	}
	return meta
}

func encodeMetadata(meta domain.Metadata) (string, error) {
	fields := map[string]any{}
	if meta.Progress != nil {
		fields["progress"] = *meta.Progress
	}
	if meta.Predecessors != "" {
		fields["predecessors"] = meta.Predecessors
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func parseOptionalDate(v any) *domain.Date {
	var raw string
	switch s := v.(type) {
	case string:
		raw = s
	case []byte:
		raw = string(s)
	default:
		return nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil
	}
	return &d
}

func optionalDate(d *domain.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

func optionalFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func queryFailed(err error, project string) error {
	return zerr.With(zerr.Wrap(err, domain.ErrDatabaseQueryFailed.Error()), "project", project)
}

func writeFailed(err error, project string) error {
	return zerr.With(zerr.Wrap(err, domain.ErrProjectWriteFailed.Error()), "project", project)
}
