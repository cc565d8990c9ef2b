package domain

import "path/filepath"

const (
	// StateDirName is the name of the working directory for tempo metadata.
	StateDirName = ".tempo"

	// JournalDirName is the name of the run journal directory.
	JournalDirName = "journal"

	// LockDirName is the name of the directory holding per-project lock files.
	LockDirName = "locks"

	// DatabaseFileName is the name of the default SQLite database.
	DatabaseFileName = "tempo.db"

	// ProjectFileName is the default project file looked up when no path is given.
	ProjectFileName = "tempo.yaml"

	// SettingsFileName is the base name of the settings file (without extension).
	SettingsFileName = "tempo.settings"

	// SQLiteRefPrefix marks a project reference that lives in the SQLite store.
	SQLiteRefPrefix = "sqlite:"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// JournalPath returns the journal directory below stateDir.
func JournalPath(stateDir string) string {
	return filepath.Join(stateDir, JournalDirName)
}

// LockPath returns the lock directory below stateDir.
func LockPath(stateDir string) string {
	return filepath.Join(stateDir, LockDirName)
}

// DefaultDatabasePath returns the default SQLite database path below stateDir.
func DefaultDatabasePath(stateDir string) string {
	return filepath.Join(stateDir, DatabaseFileName)
}
