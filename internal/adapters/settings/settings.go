// Package settings loads user settings with viper.
package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/core/ports"
	"go.trai.ch/zerr"
)

// EnvPrefix prefixes every environment variable override, e.g. TEMPO_STATE_DIR.
const EnvPrefix = "TEMPO"

// Keys of the settings file.
const (
	KeyCompletedStatus = "completed_status"
	KeyIterationFactor = "iteration_factor"
	KeyStateDir        = "state_dir"
	KeyDatabase        = "database"
	KeyLogFormat       = "log_format"
)

var _ ports.SettingsLoader = (*Loader)(nil)

type fileSettings struct {
	CompletedStatus string `mapstructure:"completed_status" validate:"required"`
	IterationFactor int    `mapstructure:"iteration_factor" validate:"gte=1"`
	StateDir        string `mapstructure:"state_dir"        validate:"required"`
	Database        string `mapstructure:"database"`
	LogFormat       string `mapstructure:"log_format"       validate:"oneof=pretty json auto"`
}

// Loader reads tempo.settings.yaml from the working directory or the user
// config directory, with TEMPO_* environment variables taking precedence.
type Loader struct {
	// ConfigDir is searched after the working directory. Empty means
	// $XDG_CONFIG_HOME/tempo (or the platform equivalent).
	ConfigDir string

	validate *validator.Validate
}

// New creates a new Loader.
func New() *Loader {
	return &Loader{validate: validator.New()}
}

// Load resolves the settings for cwd. A missing settings file is not an error.
// Relative directories are resolved against cwd.
func (l *Loader) Load(cwd string) (*ports.Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyCompletedStatus, domain.DefaultCompletedStatus)
	v.SetDefault(KeyIterationFactor, 3)
	v.SetDefault(KeyStateDir, domain.StateDirName)
	v.SetDefault(KeyDatabase, "")
	v.SetDefault(KeyLogFormat, "auto")

	v.SetConfigName(domain.SettingsFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cwd)
	if dir := l.configDir(); dir != "" {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error()), "path", v.ConfigFileUsed())
		}
	}

	var fs fileSettings
	if err := v.Unmarshal(&fs); err != nil {
		return nil, zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error())
	}
	fs.LogFormat = strings.ToLower(fs.LogFormat)
	if err := l.validator().Struct(fs); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error()), "path", v.ConfigFileUsed())
	}

	stateDir := resolve(cwd, fs.StateDir)
	database := fs.Database
	if database == "" {
		database = domain.DefaultDatabasePath(stateDir)
	} else {
		database = resolve(cwd, database)
	}

	return &ports.Settings{
		CompletedStatus: fs.CompletedStatus,
		IterationFactor: fs.IterationFactor,
		StateDir:        stateDir,
		Database:        database,
		LogFormat:       fs.LogFormat,
	}, nil
}

func (l *Loader) configDir() string {
	if l.ConfigDir != "" {
		return l.ConfigDir
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tempo")
}

func (l *Loader) validator() *validator.Validate {
	if l.validate == nil {
		l.validate = validator.New()
	}
	return l.validate
}

func resolve(cwd, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}
