package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sparkify/internal/discover"
	"github.com/desertthunder/sparkify/internal/models"
	"github.com/desertthunder/sparkify/internal/repositories"
	"github.com/desertthunder/sparkify/internal/shared"
	"github.com/desertthunder/sparkify/internal/transform"
)

// FileFunc loads one file through l, which is bound to that file's transaction.
type FileFunc func(ctx context.Context, l *repositories.Loader, path string) (Stats, error)

// EngineOpts contains configuration options for creating an Engine.
type EngineOpts struct {
	DB              *sql.DB
	Dialect         shared.Dialect
	Statements      *repositories.Statements // Statements defaults to [repositories.DefaultStatements]
	Location        *time.Location           // Location used to decompose timestamps; defaults to [time.Local]
	Pattern         string                   // Pattern selects input files; defaults to [discover.DefaultPattern]
	ContinueOnError bool                     // ContinueOnError skips failing files instead of aborting
	Logger          *log.Logger
	Output          io.Writer             // Output receives plain progress lines; defaults to [os.Stdout]
	Progress        chan<- ProgressUpdate // Progress optionally receives structured updates
}

// Engine loads input trees into the database one file and one transaction at a time.
type Engine struct {
	db              *sql.DB
	stmts           repositories.Statements
	loc             *time.Location
	pattern         string
	continueOnError bool
	logger          *log.Logger
	output          io.Writer
	progress        chan<- ProgressUpdate
}

// NewEngine creates a new Engine, filling unset options with defaults.
func NewEngine(opts EngineOpts) *Engine {
	stmts := repositories.DefaultStatements()
	if opts.Statements != nil {
		stmts = *opts.Statements
	}
	if opts.Dialect == "" {
		opts.Dialect = shared.SQLite
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Pattern == "" {
		opts.Pattern = discover.DefaultPattern
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Engine{
		db:              opts.DB,
		stmts:           stmts.For(opts.Dialect),
		loc:             opts.Location,
		pattern:         opts.Pattern,
		continueOnError: opts.ContinueOnError,
		logger:          opts.Logger,
		output:          opts.Output,
		progress:        opts.Progress,
	}
}

// Run loads songDir and then logDir. Songs go first so songplays can resolve against the catalog.
func (e *Engine) Run(ctx context.Context, songDir, logDir string) (*RunResult, error) {
	result := &RunResult{StartedAt: time.Now()}
	defer func() { result.FinishedAt = time.Now() }()

	songs, err := e.LoadSongs(ctx, songDir)
	result.Songs = songs
	if err != nil {
		return result, err
	}

	logs, err := e.LoadLogs(ctx, logDir)
	result.Logs = logs
	if err != nil {
		return result, err
	}

	return result, nil
}

// LoadSongs loads every song file under dir.
func (e *Engine) LoadSongs(ctx context.Context, dir string) (*DirResult, error) {
	return e.ProcessData(ctx, dir, e.ProcessSongFile)
}

// LoadLogs loads every event log file under dir.
func (e *Engine) LoadLogs(ctx context.Context, dir string) (*DirResult, error) {
	return e.ProcessData(ctx, dir, e.ProcessLogFile)
}

// ProcessData discovers the files under root and loads each with fn, committing once per file.
func (e *Engine) ProcessData(ctx context.Context, root string, fn FileFunc) (*DirResult, error) {
	files, err := discover.DiscoverPattern(root, e.pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	total := len(files)
	result := &DirResult{Stats: newStats(), Root: root, Found: total}

	e.printf("%d files found in %s\n", total, root)
	e.sendProgress(discoveredUpdate(total, root))

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		logger := shared.WithLogger(e.logger, "file", path)

		stats, err := e.loadFile(ctx, path, fn)
		if err != nil {
			fe := FileError{Path: path, Err: err}
			if !e.continueOnError {
				return result, fmt.Errorf("failed to load file %w", fe)
			}

			logger.Error("file rolled back, continuing", "error", err)
			result.Failed = append(result.Failed, fe)
			e.sendProgress(skippedUpdate(i+1, total, fe))
			continue
		}

		result.Processed++
		result.add(stats)
		logger.Debug("file committed", "rows", stats.Rows.Total())

		e.printf("%d/%d files processed.\n", i+1, total)
		e.sendProgress(loadedUpdate(i+1, total, path))
	}

	return result, nil
}

// loadFile runs fn inside a transaction that is committed only if fn succeeds.
func (e *Engine) loadFile(ctx context.Context, path string, fn FileFunc) (Stats, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stats, err := fn(ctx, repositories.NewLoader(tx, e.stmts), path)
	if err != nil {
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("failed to commit: %w", err)
	}

	return stats, nil
}

// ProcessSongFile inserts the song and artist rows of one song file.
func (e *Engine) ProcessSongFile(ctx context.Context, l *repositories.Loader, path string) (Stats, error) {
	stats := newStats()

	song, artist, err := transform.ParseSongFile(path)
	if err != nil {
		return stats, err
	}

	for _, row := range []models.Row{song, artist} {
		if err := l.Insert(ctx, row); err != nil {
			return stats, err
		}
		stats.Rows[row.Table()]++
	}

	return stats, nil
}

// ProcessLogFile inserts the time, users and songplays rows for every song play in one log file.
//
// Each songplay is built only after its own event's catalog lookup.
func (e *Engine) ProcessLogFile(ctx context.Context, l *repositories.Loader, path string) (Stats, error) {
	stats := newStats()

	events, err := transform.ParseLogFile(path)
	if err != nil {
		return stats, err
	}
	stats.Events = len(events)

	plays := transform.FilterSongPlays(events)
	stats.Plays = len(plays)

	for _, ev := range plays {
		if err := e.insert(ctx, l, &stats, transform.Time(ev.Ts, e.loc)); err != nil {
			return stats, err
		}

		if err := e.insert(ctx, l, &stats, transform.User(ev)); err != nil {
			return stats, err
		}

		match, err := l.LookupSong(ctx, ev.Song, ev.Artist, ev.Length)
		if err != nil {
			return stats, err
		}
		if match.Found() {
			stats.Resolved++
		}

		if err := e.insert(ctx, l, &stats, transform.Songplay(ev, match, e.loc)); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (e *Engine) insert(ctx context.Context, l *repositories.Loader, stats *Stats, row models.Row) error {
	if err := l.Insert(ctx, row); err != nil {
		return err
	}
	stats.Rows[row.Table()]++
	return nil
}

func (e *Engine) printf(format string, args ...any) {
	fmt.Fprintf(e.output, format, args...)
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(update ProgressUpdate) {
	if e.progress == nil {
		return
	}
	select {
	case e.progress <- update:
	default:
	}
}
