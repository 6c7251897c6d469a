// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// etlCommand handles loading the song and log trees
func etlCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "etl",
		Usage: "Extract, transform and load the data directories",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Load song files, then log files",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "songs",
						Usage: "Song data directory (default: data.song_dir)",
					},
					&cli.StringFlag{
						Name:  "logs",
						Usage: "Log data directory (default: data.log_dir)",
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Roll back and skip failing files instead of aborting",
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Print a run report: text, markdown or csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the run report to a file",
					},
				},
				Action: r.ETLRun,
			},
			{
				Name:  "songs",
				Usage: "Load song metadata files only",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Song data directory (default: data.song_dir)",
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Roll back and skip failing files instead of aborting",
					},
				},
				Action: r.ETLSongs,
			},
			{
				Name:  "logs",
				Usage: "Load event log files only",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Log data directory (default: data.log_dir)",
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Roll back and skip failing files instead of aborting",
					},
				},
				Action: r.ETLLogs,
			},
		},
	}
}

// setupCommand handles schema setup operations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// statsCommand reports row counts
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show the row count of every table",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Stats,
	}
}
