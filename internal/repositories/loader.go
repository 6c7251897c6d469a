package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/sparkify/internal/models"
	"github.com/desertthunder/sparkify/internal/shared"
)

// Loader inserts rows and resolves catalog ids against one [Execer].
type Loader struct {
	exec  Execer
	stmts Statements
}

// NewLoader creates a Loader bound to exec, usually the transaction of the file being loaded.
func NewLoader(exec Execer, stmts Statements) *Loader {
	return &Loader{exec: exec, stmts: stmts}
}

// Insert validates row and executes the insert for its table with [models.Row.Values] as positional parameters.
func (l *Loader) Insert(ctx context.Context, row models.Row) error {
	table := row.Table()

	query, ok := l.stmts.Inserts[table]
	if !ok || query == "" {
		return fmt.Errorf("%w: %s", shared.ErrUnknownTable, table)
	}

	if err := row.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrInvalidRecord, table, err)
	}

	if _, err := l.exec.ExecContext(ctx, query, row.Values()...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	return nil
}

// LookupSong finds the song and artist ids whose title, artist name and duration match exactly.
// No match is not an error; it returns an empty [models.SongMatch].
func (l *Loader) LookupSong(ctx context.Context, title, artist string, duration float64) (models.SongMatch, error) {
	var songID, artistID string

	err := l.exec.QueryRowContext(ctx, l.stmts.SongLookup, title, artist, duration).Scan(&songID, &artistID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SongMatch{}, nil
	}
	if err != nil {
		return models.SongMatch{}, fmt.Errorf("failed to look up song %q by %q: %w", title, artist, err)
	}

	return models.SongMatch{SongID: &songID, ArtistID: &artistID}, nil
}
