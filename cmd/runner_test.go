package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/sparkify/internal/shared"
	tu "github.com/desertthunder/sparkify/internal/testing"
	"github.com/urfave/cli/v3"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		shared.EnvDatabaseDriver, shared.EnvDatabaseDSN, shared.EnvSongDir, shared.EnvLogDir, shared.EnvTimezone,
	} {
		t.Setenv(env, "")
	}
}

// writeConfig writes a sqlite config into dir and returns its path.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	content := fmt.Sprintf(`[database]
driver = "sqlite3"
dsn = %q

[data]
song_dir = %q
log_dir = %q

[etl]
timezone = "UTC"
`, filepath.Join(dir, "sparkify.db"), filepath.Join(dir, "song_data"), filepath.Join(dir, "log_data"))
	return tu.WriteFile(t, dir, "config.toml", content)
}

func writeData(t *testing.T, dir string) {
	t.Helper()
	tu.WriteSongFile(t, filepath.Join(dir, "song_data"), "A/B/C/TRABCEI128F424C983.json",
		tu.Song("SOUPIRU12A6D4FA1E1", "Der Kleine Dompfaff", "ARJIE2Y1187B994AB7", "Line Renaud", 152.92036))
	tu.WriteLogFile(t, filepath.Join(dir, "log_data"), "2018/11/2018-11-01-events.json",
		tu.Play(1541105830796, "Der Kleine Dompfaff", "Line Renaud", 152.92036),
		tu.Visit(1541106106796, "Home"),
		tu.Play(1541106132796, "Unknown", "Nobody", 180),
	)
}

func run(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "sparkify", Commands: runner.register()}
	return app.Run(context.Background(), append([]string{"sparkify"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"songs": 1}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"songs": 1`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"songs": 1}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if got := output.String(); got != "{\"songs\":1}\n" {
				t.Errorf("expected compact JSON, got %q", got)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]int{}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]int{}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("%d/%d files processed.\n", 1, 2); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := output.String(); got != "1/2 files processed.\n" {
				t.Errorf("unexpected output %q", got)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("text"); err == nil {
				t.Error("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		var names []string
		for _, c := range commands {
			names = append(names, c.Name)
		}

		if strings.Join(names, ",") != "setup,etl,stats" {
			t.Errorf("unexpected commands %v", names)
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("setup, run, stats and rollback", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		configPath := writeConfig(t, dir)
		writeData(t, dir)

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})

		if err := run(t, runner, "setup", "database", "-c", configPath); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}

		output.Reset()
		reportPath := filepath.Join(dir, "report.md")
		if err := run(t, runner, "etl", "run", "-c", configPath, "--report", "markdown", "--output", reportPath); err != nil {
			t.Fatalf("etl run failed: %v", err)
		}

		progress := output.String()
		for _, want := range []string{
			"1 files found in " + filepath.Join(dir, "song_data"),
			"1 files found in " + filepath.Join(dir, "log_data"),
			"1/1 files processed.",
		} {
			if !strings.Contains(progress, want) {
				t.Errorf("progress missing %q, got: %s", want, progress)
			}
		}

		tu.AssertFileExists(t, reportPath)
		if report := tu.MustReadFile(t, reportPath); !strings.Contains(report, "| songplays | 2 |") {
			t.Errorf("report missing songplays rows, got: %s", report)
		}

		output.Reset()
		if err := run(t, runner, "stats", "-c", configPath, "--json"); err != nil {
			t.Fatalf("stats failed: %v", err)
		}

		var counts map[string]int
		if err := json.Unmarshal(output.Bytes(), &counts); err != nil {
			t.Fatalf("stats output is not JSON: %v\n%s", err, output.String())
		}
		want := map[string]int{"songs": 1, "artists": 1, "time": 2, "users": 1, "songplays": 2}
		for table, n := range want {
			if counts[table] != n {
				t.Errorf("%s = %d, want %d", table, counts[table], n)
			}
		}

		output.Reset()
		if err := run(t, runner, "stats", "-c", configPath); err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if !strings.Contains(output.String(), "Table row counts") || !strings.Contains(output.String(), "songplays") {
			t.Errorf("unexpected stats output: %s", output.String())
		}

		if err := run(t, runner, "setup", "rollback", "-c", configPath); err != nil {
			t.Fatalf("setup rollback failed: %v", err)
		}
		if err := run(t, runner, "stats", "-c", configPath); err == nil {
			t.Error("expected stats to fail once songplays is dropped")
		}
	})

	t.Run("songs and logs load separately", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		configPath := writeConfig(t, dir)
		writeData(t, dir)

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})

		for _, args := range [][]string{
			{"setup", "database", "-c", configPath},
			{"etl", "songs", "-c", configPath},
			{"etl", "logs", "-c", configPath},
		} {
			if err := run(t, runner, args...); err != nil {
				t.Fatalf("%v failed: %v", args, err)
			}
		}

		db, err := shared.NewDatabase(shared.SQLite, filepath.Join(dir, "sparkify.db"))
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		var resolved int
		if err := db.QueryRow("SELECT COUNT(*) FROM songplays WHERE song_id IS NOT NULL").Scan(&resolved); err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if resolved != 1 {
			t.Errorf("expected 1 resolved songplay, got %d", resolved)
		}
	})

	t.Run("etl run before setup fails", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		configPath := writeConfig(t, dir)
		writeData(t, dir)

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})

		err := run(t, runner, "etl", "run", "-c", configPath)
		if err == nil || !strings.Contains(err.Error(), "setup database") {
			t.Errorf("expected schema error, got %v", err)
		}
	})

	t.Run("explicit missing config fails", func(t *testing.T) {
		clearEnv(t)
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})

		err := run(t, runner, "stats", "-c", filepath.Join(t.TempDir(), "missing.toml"))
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("setup database creates config and honours env overrides", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "env.db")
		t.Setenv(shared.EnvDatabaseDriver, "sqlite3")
		t.Setenv(shared.EnvDatabaseDSN, dbPath)

		configPath := filepath.Join(dir, "config.toml")
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})

		if err := run(t, runner, "setup", "database", "-c", configPath); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}

		tu.AssertFileExists(t, configPath)
		tu.AssertFileExists(t, dbPath)
	})

	t.Run("unknown report format fails after the load", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		configPath := writeConfig(t, dir)
		writeData(t, dir)

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		if err := run(t, runner, "setup", "database", "-c", configPath); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}

		err := run(t, runner, "etl", "run", "-c", configPath, "--report", "yaml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
