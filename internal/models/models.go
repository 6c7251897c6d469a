// package models defines the rows loaded into the songplay schema
package models

import (
	"errors"
	"time"
)

// Table names a target table in the schema.
type Table string

const (
	SongsTable     Table = "songs"
	ArtistsTable   Table = "artists"
	TimeTable      Table = "time"
	UsersTable     Table = "users"
	SongplaysTable Table = "songplays"
)

// Tables lists every target table in load order.
var Tables = []Table{SongsTable, ArtistsTable, TimeTable, UsersTable, SongplaysTable}

// SongPlayPage is the page value that marks a log event as a song play.
const SongPlayPage = "NextSong"

// Row defines a record that maps onto one row of a table.
type Row interface {
	Table() Table    // Table returns the target table
	Values() []any   // Values returns insert parameters in column order
	Validate() error // Validate reports missing identifying fields
}

// SongRecord is one row of the songs table.
type SongRecord struct {
	SongID   string
	Title    string
	ArtistID string
	Year     int
	Duration float64
}

func (s SongRecord) Table() Table { return SongsTable }

func (s SongRecord) Values() []any {
	return []any{s.SongID, s.Title, s.ArtistID, s.Year, s.Duration}
}

func (s SongRecord) Validate() error {
	if s.SongID == "" {
		return errors.New("song_id is required")
	}
	if s.ArtistID == "" {
		return errors.New("artist_id is required")
	}
	return nil
}

// ArtistRecord is one row of the artists table. Coordinates are nil when unknown.
type ArtistRecord struct {
	ArtistID  string
	Name      string
	Location  string
	Latitude  *float64
	Longitude *float64
}

func (a ArtistRecord) Table() Table { return ArtistsTable }

func (a ArtistRecord) Values() []any {
	return []any{a.ArtistID, a.Name, a.Location, a.Latitude, a.Longitude}
}

func (a ArtistRecord) Validate() error {
	if a.ArtistID == "" {
		return errors.New("artist_id is required")
	}
	return nil
}

// TimeRecord is one row of the time table, the calendar breakdown of a song play's start time.
type TimeRecord struct {
	StartTime time.Time
	Hour      int
	Day       int
	Week      int // ISO 8601 week number
	Month     int
	Year      int
	Weekday   string
}

func (t TimeRecord) Table() Table { return TimeTable }

func (t TimeRecord) Values() []any {
	return []any{t.StartTime, t.Hour, t.Day, t.Week, t.Month, t.Year, t.Weekday}
}

func (t TimeRecord) Validate() error {
	if t.StartTime.IsZero() {
		return errors.New("start_time is required")
	}
	return nil
}

// UserRecord is one row of the users table.
type UserRecord struct {
	UserID    string
	FirstName string
	LastName  string
	Gender    string
	Level     string
}

func (u UserRecord) Table() Table { return UsersTable }

func (u UserRecord) Values() []any {
	return []any{u.UserID, u.FirstName, u.LastName, u.Gender, u.Level}
}

func (u UserRecord) Validate() error {
	if u.UserID == "" {
		return errors.New("user_id is required")
	}
	return nil
}

// SongMatch holds the ids resolved by a natural-key catalog lookup.
// Both fields are nil when no catalog entry matched.
type SongMatch struct {
	SongID   *string
	ArtistID *string
}

// Found reports whether the lookup resolved a song.
func (m SongMatch) Found() bool { return m.SongID != nil }

// SongplayRecord is one row of the songplays table.
type SongplayRecord struct {
	SongplayID string
	StartTime  time.Time
	UserID     string
	Level      string
	SongID     *string
	ArtistID   *string
	SessionID  int64
	Location   string
	UserAgent  string
}

func (p SongplayRecord) Table() Table { return SongplaysTable }

func (p SongplayRecord) Values() []any {
	return []any{p.SongplayID, p.StartTime, p.UserID, p.Level, p.SongID, p.ArtistID, p.SessionID, p.Location, p.UserAgent}
}

func (p SongplayRecord) Validate() error {
	if p.SongplayID == "" {
		return errors.New("songplay_id is required")
	}
	if p.StartTime.IsZero() {
		return errors.New("start_time is required")
	}
	return nil
}

// LogEvent is one parsed line of an event log.
type LogEvent struct {
	Artist        string
	Auth          string
	FirstName     string
	Gender        string
	ItemInSession int
	LastName      string
	Length        float64
	Level         string
	Location      string
	Method        string
	Page          string
	Registration  float64
	SessionID     int64
	Song          string
	Status        int
	Ts            int64 // epoch milliseconds
	UserAgent     string
	UserID        string
}

// IsSongPlay reports whether the event records a song being played.
func (e LogEvent) IsSongPlay() bool { return e.Page == SongPlayPage }
