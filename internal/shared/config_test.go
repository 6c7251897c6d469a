package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Driver != "postgres" {
			t.Errorf("expected database driver postgres, got %s", config.Database.Driver)
		}

		if config.Database.DSN != "host=127.0.0.1 dbname=sparkifydb user=student password=student" {
			t.Errorf("unexpected default dsn %q", config.Database.DSN)
		}

		if config.Data.SongDir != "data/song_data" {
			t.Errorf("expected song dir data/song_data, got %s", config.Data.SongDir)
		}

		if config.Data.LogDir != "data/log_data" {
			t.Errorf("expected log dir data/log_data, got %s", config.Data.LogDir)
		}

		if config.Data.Pattern != "*.json" {
			t.Errorf("expected pattern *.json, got %s", config.Data.Pattern)
		}

		if config.ETL.ContinueOnError {
			t.Error("continue_on_error should default to false")
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.DSN != defaultConfig.Database.DSN {
			t.Errorf("created config database dsn doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
driver = "sqlite3"
dsn = "/custom/path.db"
max_open_conns = 2

[data]
song_dir = "/srv/songs"

[etl]
timezone = "UTC"
continue_on_error = true
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.DSN != "/custom/path.db" {
			t.Errorf("expected dsn /custom/path.db, got %s", config.Database.DSN)
		}

		if config.Data.SongDir != "/srv/songs" {
			t.Errorf("expected song dir /srv/songs, got %s", config.Data.SongDir)
		}

		if config.Data.LogDir != "data/log_data" {
			t.Errorf("missing keys should keep defaults, got log dir %s", config.Data.LogDir)
		}

		if !config.ETL.ContinueOnError {
			t.Error("expected continue_on_error to be true")
		}

		loc, err := config.Location()
		if err != nil {
			t.Fatalf("failed to resolve location: %v", err)
		}
		if loc != time.UTC {
			t.Errorf("expected UTC, got %v", loc)
		}
	})

	t.Run("LoadConfig invalid toml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvDatabaseDriver, "sqlite3")
		t.Setenv(EnvDatabaseDSN, "env.db")
		t.Setenv(EnvLogDir, "/srv/logs")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Database.Driver != "sqlite3" {
			t.Errorf("expected driver from env, got %s", config.Database.Driver)
		}
		if config.Database.DSN != "env.db" {
			t.Errorf("expected dsn from env, got %s", config.Database.DSN)
		}
		if config.Data.LogDir != "/srv/logs" {
			t.Errorf("expected log dir from env, got %s", config.Data.LogDir)
		}
		if config.Data.SongDir != "data/song_data" {
			t.Errorf("unset env should keep song dir, got %s", config.Data.SongDir)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }},
			{name: "empty dsn", mutate: func(c *Config) { c.Database.DSN = " " }},
			{name: "bad timezone", mutate: func(c *Config) { c.ETL.Timezone = "Mars/Olympus_Mons" }},
			{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); err == nil {
					t.Error("expected validation error")
				}
			})
		}
	})
}
