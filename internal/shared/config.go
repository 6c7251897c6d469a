package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values read from config.toml.
const (
	EnvDatabaseDriver = "SPARKIFY_DATABASE_DRIVER"
	EnvDatabaseDSN    = "SPARKIFY_DATABASE_DSN"
	EnvSongDir        = "SPARKIFY_SONG_DIR"
	EnvLogDir         = "SPARKIFY_LOG_DIR"
	EnvTimezone       = "SPARKIFY_TIMEZONE"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Data     DataConfig     `toml:"data"`
	ETL      ETLConfig      `toml:"etl"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// DataConfig locates the input trees.
type DataConfig struct {
	SongDir string `toml:"song_dir"`
	LogDir  string `toml:"log_dir"`
	Pattern string `toml:"pattern"`
}

// ETLConfig controls load behaviour.
type ETLConfig struct {
	Timezone        string `toml:"timezone"`
	ContinueOnError bool   `toml:"continue_on_error"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides config values with any SPARKIFY_* environment variables that are set.
func (c *Config) ApplyEnv() {
	for env, dst := range map[string]*string{
		EnvDatabaseDriver: &c.Database.Driver,
		EnvDatabaseDSN:    &c.Database.DSN,
		EnvSongDir:        &c.Data.SongDir,
		EnvLogDir:         &c.Data.LogDir,
		EnvTimezone:       &c.ETL.Timezone,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
}

// Validate checks the settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if _, err := ParseDialect(c.Database.Driver); err != nil {
		return err
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("%w: database.dsn is empty", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); c.Log.Level != "" && err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// Location resolves etl.timezone; an empty value or "Local" is the host zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.ETL.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ETL.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: etl.timezone %q: %v", ErrInvalidConfig, c.ETL.Timezone, err)
	}
	return loc, nil
}
