package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tempo/internal/adapters/sqlite"
	"go.trai.ch/tempo/internal/core/domain"
)

func ptr[T any](v T) *T { return &v }

func sampleProject() *domain.Project {
	return &domain.Project{
		ID:   "plant",
		Name: "Plant expansion",
		Calendar: domain.Calendar{
			Mode:            domain.BusinessDays,
			WorkHoursPerDay: 7.5,
			Holidays: []domain.Holiday{
				{Date: domain.MustParseDate("2024-12-25"), Recurring: true},
				{Date: domain.MustParseDate("2024-03-29")},
			},
		},
		Tasks: []domain.Task{
			{
				ID:        "t1",
				Code:      "1",
				Name:      "Site works",
				CreatedAt: time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
				Status:    "in progress",
			},
			{
				ID:           "t2",
				Code:         "1.1",
				Name:         "Survey",
				Duration:     2,
				PlannedStart: ptr(domain.MustParseDate("2024-01-01")),
				PlannedEnd:   ptr(domain.MustParseDate("2024-01-02")),
				CreatedAt:    time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
				Weight:       ptr(2.0),
				Status:       "done",
				Metadata:     domain.Metadata{Progress: ptr(100.0)},
			},
			{
				ID:           "t3",
				Code:         "1.2",
				Name:         "Foundations",
				Duration:     2,
				PlannedStart: ptr(domain.MustParseDate("2024-01-01")),
				PlannedEnd:   ptr(domain.MustParseDate("2024-01-02")),
				CreatedAt:    time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC),
				Metadata:     domain.Metadata{Progress: ptr(0.5), Predecessors: "1.1FS"},
			},
		},
	}
}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_LoadUnreadableCreatedAt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tempo.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Import(sampleProject()))

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	_, err = raw.Exec(`UPDATE tasks SET created_at = 'yesterday' WHERE id IN ('t1', 't2')`)
	require.NoError(t, err)

	_, err = store.Load(domain.SQLiteRefPrefix + "plant")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidProject.Error())

	// t2 has a planned start to fall back on.
	_, err = raw.Exec(`UPDATE tasks SET created_at = '2024-01-01T09:00:00Z' WHERE id = 't1'`)
	require.NoError(t, err)

	project, err := store.Load(domain.SQLiteRefPrefix + "plant")
	require.NoError(t, err)
	require.Len(t, project.Tasks, 3)
	assert.Equal(t, "t2", project.Tasks[1].ID)
	assert.Equal(t, domain.MustParseDate("2024-01-01").Time(), project.Tasks[1].CreatedAt)
}

func TestStore_ImportLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	want := sampleProject()
	require.NoError(t, store.Import(want))

	got, err := store.Load(domain.SQLiteRefPrefix + "plant")
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Calendar.Mode, got.Calendar.Mode)
	assert.InDelta(t, want.Calendar.WorkHoursPerDay, got.Calendar.WorkHoursPerDay, 0)
	assert.ElementsMatch(t, want.Calendar.Holidays, got.Calendar.Holidays)
	assert.Equal(t, want.Tasks, got.Tasks)
}

func TestStore_ImportReplaces(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	project := sampleProject()
	require.NoError(t, store.Import(project))

	project.Name = "Renamed"
	project.Tasks = project.Tasks[:1]
	project.Calendar.Holidays = nil
	require.NoError(t, store.Import(project))

	got, err := store.Load("plant")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Len(t, got.Tasks, 1)
	assert.Empty(t, got.Calendar.Holidays)
}

func TestStore_ImportNil(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, openStore(t).Import(nil), domain.ErrNilProject)
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()

	_, err := openStore(t).Load("sqlite:ghost")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrProjectNotFound.Error())
}

func TestStore_Apply(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	require.NoError(t, store.Import(sampleProject()))

	completed := domain.DefaultCompletedStatus
	result := &domain.Result{
		ProjectID: "plant",
		Schedule: []domain.ScheduleDelta{{
			TaskID:      "t3",
			NewStart:    domain.MustParseDate("2024-01-03"),
			NewEnd:      domain.MustParseDate("2024-01-04"),
			NewDuration: 2,
		}},
		Progress: []domain.ProgressDelta{
			{TaskID: "t1", NewProgress: 1, NewStatus: &completed},
		},
	}
	require.NoError(t, store.Apply("sqlite:plant", result))

	got, err := store.Load("sqlite:plant")
	require.NoError(t, err)

	t1, _ := got.TaskByID("t1")
	require.NotNil(t, t1.Metadata.Progress)
	assert.InDelta(t, 1.0, *t1.Metadata.Progress, 0)
	assert.Equal(t, completed, t1.Status)

	t3, _ := got.TaskByID("t3")
	assert.Equal(t, domain.MustParseDate("2024-01-03"), *t3.PlannedStart)
	assert.Equal(t, domain.MustParseDate("2024-01-04"), *t3.PlannedEnd)
	assert.Equal(t, "1.1FS", t3.Metadata.Predecessors)
	require.NotNil(t, t3.Metadata.Progress)
	assert.InDelta(t, 0.5, *t3.Metadata.Progress, 0)
}

func TestStore_ApplyIsAtomic(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	require.NoError(t, store.Import(sampleProject()))

	err := store.Apply("sqlite:plant", &domain.Result{
		Progress: []domain.ProgressDelta{
			{TaskID: "t1", NewProgress: 0.75},
			{TaskID: "ghost", NewProgress: 0.5},
		},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrProjectWriteFailed.Error())

	got, err := store.Load("sqlite:plant")
	require.NoError(t, err)
	t1, _ := got.TaskByID("t1")
	assert.Nil(t, t1.Metadata.Progress)
}

func TestStore_ApplyEmptyResult(t *testing.T) {
	t.Parallel()

	require.NoError(t, openStore(t).Apply("sqlite:absent", &domain.Result{}))
}

func TestOpen_CreatesDatabaseFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", domain.DatabaseFileName)
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Import(sampleProject()))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Load("sqlite:plant")
	require.NoError(t, err)
	assert.Len(t, got.Tasks, 3)
}

func TestProjectID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plant", sqlite.ProjectID("sqlite:plant"))
	assert.Equal(t, "plant", sqlite.ProjectID("plant"))
}
