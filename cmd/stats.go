package main

import (
	"context"
	"strconv"

	"github.com/desertthunder/sparkify/internal/models"
	"github.com/desertthunder/sparkify/internal/repositories"
	"github.com/urfave/cli/v3"
)

// Stats prints the row count of every table in load order.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, _, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	counts := make(map[models.Table]int, len(models.Tables))
	for _, table := range models.Tables {
		n, err := repositories.CountRows(ctx, db, table)
		if err != nil {
			return err
		}
		counts[table] = n
	}

	if cmd.Bool("json") {
		return r.writeJSON(counts, cmd.Bool("pretty"))
	}

	r.writePlainHeader(styles.title.Render("Table row counts"))
	for _, table := range models.Tables {
		if err := r.writePlain("%s%s\n", styles.label.Render(string(table)), styles.count.Render(strconv.Itoa(counts[table]))); err != nil {
			return err
		}
	}
	return nil
}
