// package repositories provides the insert and lookup statements for the songplay schema.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"maps"

	"github.com/desertthunder/sparkify/internal/models"
	"github.com/desertthunder/sparkify/internal/shared"
)

// Execer is the subset of *sql.DB and *sql.Tx used by the loader.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Statements holds the SQL text the loader executes.
type Statements struct {
	Inserts    map[models.Table]string // Inserts maps each table to its parameterized insert
	SongLookup string                  // SongLookup takes (title, artist name, duration) and returns (song_id, artist_id)
}

// DefaultStatements returns the canonical statements with '?' placeholders.
func DefaultStatements() Statements {
	return Statements{
		Inserts: map[models.Table]string{
			models.SongsTable: `
				INSERT INTO songs (song_id, title, artist_id, year, duration)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (song_id) DO NOTHING`,
			models.ArtistsTable: `
				INSERT INTO artists (artist_id, name, location, latitude, longitude)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (artist_id) DO NOTHING`,
			models.TimeTable: `
				INSERT INTO time (start_time, hour, day, week, month, year, weekday)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
			models.UsersTable: `
				INSERT INTO users (user_id, first_name, last_name, gender, level)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (user_id) DO UPDATE SET level = excluded.level`,
			models.SongplaysTable: `
				INSERT INTO songplays (songplay_id, start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		},
		SongLookup: `
			SELECT songs.song_id, artists.artist_id
			FROM songs
			JOIN artists ON songs.artist_id = artists.artist_id
			WHERE songs.title = ? AND artists.name = ? AND songs.duration = ?
			LIMIT 1`,
	}
}

// For returns a copy of s with placeholders rewritten for dialect.
func (s Statements) For(dialect shared.Dialect) Statements {
	out := Statements{
		Inserts:    make(map[models.Table]string, len(s.Inserts)),
		SongLookup: dialect.Rebind(s.SongLookup),
	}
	for table, query := range s.Inserts {
		out.Inserts[table] = dialect.Rebind(query)
	}
	return out
}

// With returns a copy of s with the insert for table replaced.
func (s Statements) With(table models.Table, query string) Statements {
	out := Statements{Inserts: maps.Clone(s.Inserts), SongLookup: s.SongLookup}
	if out.Inserts == nil {
		out.Inserts = make(map[models.Table]string)
	}
	out.Inserts[table] = query
	return out
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, db Execer, table models.Table) (int, error) {
	known := false
	for _, t := range models.Tables {
		known = known || t == table
	}
	if !known {
		return 0, fmt.Errorf("%w: %s", shared.ErrUnknownTable, table)
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+string(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
