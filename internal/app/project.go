package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/engine/links"
	"go.trai.ch/zerr"
)

// Import loads the project file at path and stores it in the SQLite
// database. An empty dbPath uses the configured database.
func (a *App) Import(_ context.Context, path, dbPath string) error {
	settings, cwd, err := a.loadSettings()
	if err != nil {
		return err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	if dbPath == "" {
		dbPath = settings.Database
	} else if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(cwd, dbPath)
	}

	project, err := a.files.Load(path)
	if err != nil {
		return zerr.Wrap(err, domain.ErrProjectLoadFailed.Error())
	}

	db, err := a.openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Import(project); err != nil {
		return zerr.With(err, "database", dbPath)
	}

	a.logger.Info(fmt.Sprintf("imported %s (%d tasks), recalculate it with %s%s",
		project.ID, len(project.Tasks), domain.SQLiteRefPrefix, project.ID))
	return nil
}

// ParseLinks returns the links of a predecessor field.
func (a *App) ParseLinks(text string) []domain.DependencyLink {
	return links.Parse(text)
}
