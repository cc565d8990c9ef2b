package ports

// Settings holds the user-tunable options of a recalculation.
type Settings struct {
	// CompletedStatus is written to parents whose progress reaches 100%.
	CompletedStatus string
	// IterationFactor bounds the solver to IterationFactor × task count passes.
	IterationFactor int
	// StateDir holds the journal and lock files.
	StateDir string
	// Database is the SQLite file used for sqlite: references.
	Database string
	// LogFormat is one of pretty, json or auto.
	LogFormat string
}

// SettingsLoader reads Settings from the environment of the process.
//
//go:generate mockgen -source=settings.go -destination=mocks/mock_settings.go -package=mocks
type SettingsLoader interface {
	// Load resolves the settings for the given working directory.
	Load(cwd string) (*Settings, error)
}
