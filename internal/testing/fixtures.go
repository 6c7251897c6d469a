package testing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SongFixture is the on-disk shape of a song metadata file.
type SongFixture struct {
	NumSongs        int      `json:"num_songs"`
	ArtistID        string   `json:"artist_id"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	ArtistLocation  string   `json:"artist_location"`
	ArtistName      string   `json:"artist_name"`
	SongID          string   `json:"song_id"`
	Title           string   `json:"title"`
	Duration        float64  `json:"duration"`
	Year            int      `json:"year"`
}

// EventFixture is the on-disk shape of one event log line.
type EventFixture struct {
	Artist        *string  `json:"artist"`
	Auth          string   `json:"auth"`
	FirstName     string   `json:"firstName"`
	Gender        string   `json:"gender"`
	ItemInSession int      `json:"itemInSession"`
	LastName      string   `json:"lastName"`
	Length        *float64 `json:"length"`
	Level         string   `json:"level"`
	Location      string   `json:"location"`
	Method        string   `json:"method"`
	Page          string   `json:"page"`
	Registration  float64  `json:"registration"`
	SessionID     int64    `json:"sessionId"`
	Song          *string  `json:"song"`
	Status        int      `json:"status"`
	Ts            int64    `json:"ts"`
	UserAgent     string   `json:"userAgent"`
	UserID        string   `json:"userId"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Song returns a song fixture for the given ids, title, artist name and duration.
func Song(songID, title, artistID, artistName string, duration float64) SongFixture {
	return SongFixture{
		NumSongs:       1,
		ArtistID:       artistID,
		ArtistLocation: "Memphis, TN",
		ArtistName:     artistName,
		SongID:         songID,
		Title:          title,
		Duration:       duration,
		Year:           1999,
	}
}

// Play returns a NextSong event for user 39 at ts.
func Play(ts int64, song, artist string, length float64) EventFixture {
	return EventFixture{
		Artist:        &artist,
		Auth:          "Logged In",
		FirstName:     "Walter",
		Gender:        "M",
		ItemInSession: 1,
		LastName:      "Frye",
		Length:        &length,
		Level:         "free",
		Location:      "San Francisco-Oakland-Hayward, CA",
		Method:        "PUT",
		Page:          "NextSong",
		Registration:  1540919166796.0,
		SessionID:     38,
		Song:          &song,
		Status:        200,
		Ts:            ts,
		UserAgent:     `"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_4) AppleWebKit/537.36"`,
		UserID:        "39",
	}
}

// Visit returns a non-song event (e.g. "Home") for user 39 at ts.
func Visit(ts int64, page string) EventFixture {
	return EventFixture{
		Auth:      "Logged In",
		FirstName: "Walter",
		Gender:    "M",
		LastName:  "Frye",
		Level:     "free",
		Location:  "San Francisco-Oakland-Hayward, CA",
		Method:    "GET",
		Page:      page,
		SessionID: 38,
		Status:    200,
		Ts:        ts,
		UserID:    "39",
	}
}

// WriteSongFile writes song as a single-line JSON file at dir/rel.
func WriteSongFile(t *testing.T, dir, rel string, song SongFixture) string {
	t.Helper()
	data, err := json.Marshal(song)
	if err != nil {
		t.Fatalf("failed to marshal song fixture: %v", err)
	}
	return WriteFile(t, dir, rel, string(data)+"\n")
}

// WriteLogFile writes events as newline-delimited JSON at dir/rel.
func WriteLogFile(t *testing.T, dir, rel string, events ...EventFixture) string {
	t.Helper()
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			t.Fatalf("failed to marshal event fixture: %v", err)
		}
		lines = append(lines, string(data))
	}
	return WriteFile(t, dir, rel, strings.Join(lines, "\n")+"\n")
}

// WriteFile writes content to dir/rel, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
