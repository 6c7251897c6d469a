package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sparkify/internal/models"
	"github.com/desertthunder/sparkify/internal/repositories"
	"github.com/desertthunder/sparkify/internal/shared"
	"github.com/desertthunder/sparkify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config // Config is used when the --config file does not exist
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, etlCommand, statsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the configuration for one command.
//
// The --config file wins when it exists; a missing file is an error only when the flag was
// given explicitly. Environment overrides are applied last.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	path := cmd.String("config")

	base := *r.config
	config := &base
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
	} else if cmd.IsSet("config") {
		return nil, fmt.Errorf("%w: config file %s not found", shared.ErrInvalidArgument, path)
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	shared.SetLogLevelName(r.logger, config.Log.Level)

	return config, nil
}

// openDatabase opens the configured database and confirms the schema has been created.
func (r *Runner) openDatabase(ctx context.Context, config *shared.Config) (*sql.DB, shared.Dialect, error) {
	db, dialect, err := shared.OpenConfigured(config)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := repositories.CountRows(ctx, db, models.SongplaysTable); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("schema not found, run 'sparkify setup database' first: %w", err)
	}

	r.logger.Debug("database opened", "driver", dialect)
	return db, dialect, nil
}

func (r *Runner) newEngine(config *shared.Config, db *sql.DB, dialect shared.Dialect, continueOnError bool) (*tasks.Engine, error) {
	loc, err := config.Location()
	if err != nil {
		return nil, err
	}

	return tasks.NewEngine(tasks.EngineOpts{
		DB:              db,
		Dialect:         dialect,
		Location:        loc,
		Pattern:         config.Data.Pattern,
		ContinueOnError: continueOnError || config.ETL.ContinueOnError,
		Logger:          r.logger,
		Output:          r.output,
	}), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
