package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gerrors "github.com/edvald/garden-1/internal/errors"
	"github.com/spf13/viper"
)

// SettingsFileName is the optional per-project CLI settings file.
const SettingsFileName = "garden-cli.yml"

// EnvPrefix is the prefix for environment variable overrides (GARDEN_MAX_PARALLEL, ...).
const EnvPrefix = "GARDEN"

// Settings holds CLI-wide knobs that are not part of the project config.
type Settings struct {
	MaxParallel int            `mapstructure:"max-parallel"`
	TaskTimeout time.Duration  `mapstructure:"task-timeout"`
	Cache       CacheSettings  `mapstructure:"cache"`
	Google      GoogleSettings `mapstructure:"google"`
}

// CacheSettings selects the build-version store.
type CacheSettings struct {
	// RedisURL switches the version store to Redis when set.
	RedisURL string `mapstructure:"redis-url"`
}

// GoogleSettings configures the google-cloud provider.
type GoogleSettings struct {
	CredentialsFile string `mapstructure:"credentials-file"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MaxParallel: 6,
		TaskTimeout: 0,
	}
}

// NewViper returns a viper instance with defaults and environment binding
// applied. Callers may bind command-line flags to it before LoadSettings.
func NewViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("max-parallel", defaults.MaxParallel)
	v.SetDefault("task-timeout", defaults.TaskTimeout)
	v.SetDefault("cache.redis-url", defaults.Cache.RedisURL)
	v.SetDefault("google.credentials-file", defaults.Google.CredentialsFile)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings reads garden-cli.yml from projectRoot if present and decodes
// the merged settings. A missing file is not an error.
func LoadSettings(v *viper.Viper, projectRoot string) (*Settings, error) {
	if v == nil {
		v = NewViper()
	}

	path := filepath.Join(projectRoot, SettingsFileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, gerrors.NewConfigurationError(gerrors.CodeInvalidConfig,
				fmt.Sprintf("Could not read %s", path), "Load settings").
				WithOriginalError(err).
				WithTroubleshooting("Check that the file contains valid YAML")
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if s.MaxParallel < 1 {
		return nil, gerrors.NewValidationError(gerrors.CodeInvalidConfig,
			fmt.Sprintf("max-parallel must be at least 1, got %d", s.MaxParallel), "Load settings")
	}
	if s.TaskTimeout < 0 {
		return nil, gerrors.NewValidationError(gerrors.CodeInvalidConfig,
			fmt.Sprintf("task-timeout cannot be negative, got %s", s.TaskTimeout), "Load settings")
	}
	return &s, nil
}
