package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/desertthunder/sparkify/internal/models"
	"github.com/desertthunder/sparkify/internal/shared"
	th "github.com/desertthunder/sparkify/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderPostgres(t *testing.T) {
	dsn := th.RequirePostgres(t)
	ctx := context.Background()

	db, err := shared.NewDatabase(shared.Postgres, dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, shared.RunMigrations(db, shared.Postgres))
	t.Cleanup(func() {
		for range 2 {
			_ = shared.RollbackMigration(db, shared.Postgres)
		}
	})

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	l := NewLoader(tx, DefaultStatements().For(shared.Postgres))
	seedCatalog(t, l)
	seedCatalog(t, l)

	match, err := l.LookupSong(ctx, "T", "A", 210.5)
	require.NoError(t, err)
	require.True(t, match.Found())
	assert.Equal(t, "SO1", *match.SongID)
	assert.Equal(t, "AR1", *match.ArtistID)

	miss, err := l.LookupSong(ctx, "T", "A", 999)
	require.NoError(t, err)
	assert.False(t, miss.Found())

	start := time.UnixMilli(1541290555796).UTC()
	require.NoError(t, l.Insert(ctx, models.UserRecord{UserID: "39", Level: "free"}))
	require.NoError(t, l.Insert(ctx, models.UserRecord{UserID: "39", Level: "paid"}))
	require.NoError(t, l.Insert(ctx, models.TimeRecord{StartTime: start, Day: 4, Week: 44, Month: 11, Year: 2018, Weekday: "Sunday"}))
	require.NoError(t, l.Insert(ctx, models.SongplayRecord{
		SongplayID: shared.GenerateID(), StartTime: start, UserID: "39", Level: "paid",
		SongID: match.SongID, ArtistID: match.ArtistID, SessionID: 38,
	}))

	for table, want := range map[models.Table]int{
		models.SongsTable:     1,
		models.ArtistsTable:   1,
		models.UsersTable:     1,
		models.TimeTable:      1,
		models.SongplaysTable: 1,
	} {
		n, err := CountRows(ctx, tx, table)
		require.NoError(t, err)
		assert.Equal(t, want, n, "rows in %s", table)
	}
}
