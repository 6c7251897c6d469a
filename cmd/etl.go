package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/sparkify/internal/formatter"
	"github.com/desertthunder/sparkify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ETLRun loads the song tree and then the log tree.
func (r *Runner) ETLRun(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	songDir := stringOr(cmd.String("songs"), config.Data.SongDir)
	logDir := stringOr(cmd.String("logs"), config.Data.LogDir)

	db, dialect, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := r.newEngine(config, db, dialect, cmd.Bool("continue-on-error"))
	if err != nil {
		return err
	}

	r.logger.Info("starting run", "songs", songDir, "logs", logDir)

	result, err := engine.Run(ctx, songDir, logDir)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	r.logSkipped(result.Dirs()...)
	r.logger.Info("run complete", "duration", result.Duration())

	return r.report(result, cmd.String("report"), cmd.String("output"))
}

// ETLSongs loads the song tree only.
func (r *Runner) ETLSongs(ctx context.Context, cmd *cli.Command) error {
	return r.loadDir(ctx, cmd, true)
}

// ETLLogs loads the log tree only. Plays resolve against whatever catalog is already loaded.
func (r *Runner) ETLLogs(ctx context.Context, cmd *cli.Command) error {
	return r.loadDir(ctx, cmd, false)
}

func (r *Runner) loadDir(ctx context.Context, cmd *cli.Command, songs bool) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	dir := stringOr(cmd.String("dir"), config.Data.LogDir)
	if songs {
		dir = stringOr(cmd.String("dir"), config.Data.SongDir)
	}

	db, dialect, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := r.newEngine(config, db, dialect, cmd.Bool("continue-on-error"))
	if err != nil {
		return err
	}

	var result *tasks.DirResult
	if songs {
		result, err = engine.LoadSongs(ctx, dir)
	} else {
		result, err = engine.LoadLogs(ctx, dir)
	}
	if err != nil {
		return fmt.Errorf("load of %s failed: %w", dir, err)
	}

	r.logSkipped(result)
	r.logger.Info("load complete", "dir", dir, "processed", result.Processed, "rows", result.Rows.Total())
	return nil
}

func (r *Runner) logSkipped(dirs ...*tasks.DirResult) {
	for _, dir := range dirs {
		if n := len(dir.Failed); n > 0 {
			r.logger.Warn("files skipped", "dir", dir.Root, "count", n)
		}
	}
}

// report renders result when a format or an output file was requested.
func (r *Runner) report(result *tasks.RunResult, format, output string) error {
	if format == "" && output == "" {
		return nil
	}

	if output != "" {
		if err := formatter.WriteReport(result, format, output); err != nil {
			return err
		}
		r.logger.Info("report written", "path", output)
		return nil
	}

	data, err := formatter.Export(result, format)
	if err != nil {
		return err
	}
	return r.writePlain("\n%s", data)
}

func stringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
