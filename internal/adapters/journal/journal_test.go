package journal_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tempo/internal/adapters/journal"
	"go.trai.ch/tempo/internal/core/domain"
)

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	stateDir := t.TempDir()
	store := journal.NewStore()

	record := domain.RunRecord{
		Ref:         "/work/plant.yaml",
		ProjectID:   "plant",
		RunID:       "0b6d2c1e-8f0e-4d8b-9a55-3f7e0b4ad2a1",
		Fingerprint: "9f86d081884c7d65",
		Summary: domain.Summary{
			ScheduleUpdateCount: 2,
			IterationsUsed:      3,
			Outcome:             domain.Converged,
		},
		Timestamp: time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC),
	}

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, store.Put(stateDir, record))

		got, err := store.Get(stateDir, record.Ref)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, record, *got)
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		got, err := store.Get(stateDir, "sqlite:unknown")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_PutReplaces(t *testing.T) {
	stateDir := t.TempDir()
	store := journal.NewStore()

	require.NoError(t, store.Put(stateDir, domain.RunRecord{Ref: "a.yaml", Fingerprint: "1"}))
	require.NoError(t, store.Put(stateDir, domain.RunRecord{Ref: "a.yaml", Fingerprint: "2"}))

	got, err := store.Get(stateDir, "a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "2", got.Fingerprint)

	entries, err := os.ReadDir(domain.JournalPath(stateDir))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStore_GetCorrupt(t *testing.T) {
	stateDir := t.TempDir()
	store := journal.NewStore()
	require.NoError(t, store.Put(stateDir, domain.RunRecord{Ref: "b.yaml"}))

	entries, err := os.ReadDir(domain.JournalPath(stateDir))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	path := filepath.Join(domain.JournalPath(stateDir), entries[0].Name())
	require.NoError(t, os.WriteFile(path, []byte("{ invalid json"), domain.PrivateFilePerm))

	_, err = store.Get(stateDir, "b.yaml")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrJournalReadFailed.Error())
}
