// Package journal stores one run record per project reference as JSON.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.RunJournal = (*Store)(nil)

// Store implements ports.RunJournal using a file-per-reference strategy.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the last run record for ref.
func (s *Store) Get(stateDir, ref string) (*domain.RunRecord, error) {
	filename := s.filename(stateDir, ref)
	//nolint:gosec // Path is constructed from the state directory and a hashed name
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrJournalReadFailed.Error()), "ref", ref)
	}

	var record domain.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrJournalReadFailed.Error()), "path", filename)
	}
	return &record, nil
}

// Put stores the record. The file is replaced atomically so that a
// concurrent Get never sees a partial record.
func (s *Store) Put(stateDir string, record domain.RunRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrJournalWriteFailed.Error())
	}

	filename := s.filename(stateDir, record.Ref)
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrJournalWriteFailed.Error()), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, ".record-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrJournalWriteFailed.Error())
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrJournalWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrJournalWriteFailed.Error())
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrJournalWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrJournalWriteFailed.Error()), "path", filename)
	}
	return nil
}

func (s *Store) filename(stateDir, ref string) string {
	hash := sha256.Sum256([]byte(ref))
	return filepath.Join(domain.JournalPath(stateDir), hex.EncodeToString(hash[:])+".json")
}
