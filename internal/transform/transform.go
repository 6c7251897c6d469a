package transform

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/sparkify/internal/models"
	"github.com/desertthunder/sparkify/internal/shared"
	"github.com/valyala/fastjson"
)

// maxLineSize bounds a single JSON line; user agents make log lines long.
const maxLineSize = 1 << 20

// ParseSongFile opens path and parses it with [ParseSong].
func ParseSongFile(path string) (models.SongRecord, models.ArtistRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.SongRecord{}, models.ArtistRecord{}, fmt.Errorf("failed to open song file: %w", err)
	}
	defer f.Close()

	return ParseSong(f)
}

// ParseSong parses the first JSON object in r into its song and artist rows.
func ParseSong(r io.Reader) (models.SongRecord, models.ArtistRecord, error) {
	var p fastjson.Parser
	var v *fastjson.Value

	err := eachLine(r, func(n int, line []byte) (bool, error) {
		var err error
		if v, err = parseObject(&p, line, n); err != nil {
			return false, err
		}
		return false, nil
	})
	if err != nil {
		return models.SongRecord{}, models.ArtistRecord{}, err
	}
	if v == nil {
		return models.SongRecord{}, models.ArtistRecord{}, shared.ErrEmptyFile
	}

	song := models.SongRecord{
		SongID:   stringField(v, "song_id"),
		Title:    stringField(v, "title"),
		ArtistID: stringField(v, "artist_id"),
		Year:     v.GetInt("year"),
		Duration: v.GetFloat64("duration"),
	}
	artist := models.ArtistRecord{
		ArtistID:  stringField(v, "artist_id"),
		Name:      stringField(v, "artist_name"),
		Location:  stringField(v, "artist_location"),
		Latitude:  optionalFloat(v, "artist_latitude"),
		Longitude: optionalFloat(v, "artist_longitude"),
	}
	return song, artist, nil
}

// ParseLogFile opens path and parses it with [ParseLog].
func ParseLogFile(path string) ([]models.LogEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	return ParseLog(f)
}

// ParseLog parses every non-blank line of r as one [models.LogEvent], preserving order.
func ParseLog(r io.Reader) ([]models.LogEvent, error) {
	var p fastjson.Parser
	var events []models.LogEvent

	err := eachLine(r, func(n int, line []byte) (bool, error) {
		v, err := parseObject(&p, line, n)
		if err != nil {
			return false, err
		}
		events = append(events, logEvent(v))
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

// FilterSongPlays returns the song play events of events in their original order.
func FilterSongPlays(events []models.LogEvent) []models.LogEvent {
	plays := make([]models.LogEvent, 0, len(events))
	for _, ev := range events {
		if ev.IsSongPlay() {
			plays = append(plays, ev)
		}
	}
	return plays
}

// Time converts an epoch-millisecond timestamp to wall-clock time in loc and breaks it down.
// A nil loc means [time.Local].
func Time(ts int64, loc *time.Location) models.TimeRecord {
	if loc == nil {
		loc = time.Local
	}
	t := time.UnixMilli(ts).In(loc)
	_, week := t.ISOWeek()

	return models.TimeRecord{
		StartTime: t,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   t.Weekday().String(),
	}
}

// User projects the user columns of ev.
func User(ev models.LogEvent) models.UserRecord {
	return models.UserRecord{
		UserID:    ev.UserID,
		FirstName: ev.FirstName,
		LastName:  ev.LastName,
		Gender:    ev.Gender,
		Level:     ev.Level,
	}
}

// Songplay builds the songplay row for ev using the ids its lookup resolved.
func Songplay(ev models.LogEvent, match models.SongMatch, loc *time.Location) models.SongplayRecord {
	if loc == nil {
		loc = time.Local
	}
	return models.SongplayRecord{
		SongplayID: shared.GenerateID(),
		StartTime:  time.UnixMilli(ev.Ts).In(loc),
		UserID:     ev.UserID,
		Level:      ev.Level,
		SongID:     match.SongID,
		ArtistID:   match.ArtistID,
		SessionID:  ev.SessionID,
		Location:   ev.Location,
		UserAgent:  ev.UserAgent,
	}
}

func logEvent(v *fastjson.Value) models.LogEvent {
	return models.LogEvent{
		Artist:        stringField(v, "artist"),
		Auth:          stringField(v, "auth"),
		FirstName:     stringField(v, "firstName"),
		Gender:        stringField(v, "gender"),
		ItemInSession: v.GetInt("itemInSession"),
		LastName:      stringField(v, "lastName"),
		Length:        v.GetFloat64("length"),
		Level:         stringField(v, "level"),
		Location:      stringField(v, "location"),
		Method:        stringField(v, "method"),
		Page:          stringField(v, "page"),
		Registration:  v.GetFloat64("registration"),
		SessionID:     int64Field(v, "sessionId"),
		Song:          stringField(v, "song"),
		Status:        v.GetInt("status"),
		Ts:            int64Field(v, "ts"),
		UserAgent:     stringField(v, "userAgent"),
		UserID:        stringField(v, "userId"),
	}
}

// eachLine calls fn with every non-blank line of r until fn returns false or an error.
func eachLine(r io.Reader, fn func(n int, line []byte) (bool, error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		more, err := fn(n, line)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func parseObject(p *fastjson.Parser, line []byte, n int) (*fastjson.Value, error) {
	v, err := p.ParseBytes(line)
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: %v", shared.ErrMalformedRecord, n, err)
	}
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("%w: line %d: expected object, got %s", shared.ErrMalformedRecord, n, v.Type())
	}
	return v, nil
}

// stringField reads key as a string; numeric values keep their JSON text.
func stringField(v *fastjson.Value, key string) string {
	f := v.Get(key)
	if f == nil {
		return ""
	}
	switch f.Type() {
	case fastjson.TypeString:
		return string(f.GetStringBytes())
	case fastjson.TypeNumber:
		return f.String()
	default:
		return ""
	}
}

// int64Field reads key as an integer, accepting numeric strings.
func int64Field(v *fastjson.Value, key string) int64 {
	f := v.Get(key)
	if f == nil {
		return 0
	}
	switch f.Type() {
	case fastjson.TypeNumber:
		if n, err := f.Int64(); err == nil {
			return n
		}
		if x, err := f.Float64(); err == nil {
			return int64(x)
		}
	case fastjson.TypeString:
		n, _ := strconv.ParseInt(string(f.GetStringBytes()), 10, 64)
		return n
	}
	return 0
}

// optionalFloat returns nil for a missing or null key.
func optionalFloat(v *fastjson.Value, key string) *float64 {
	f := v.Get(key)
	if f == nil || f.Type() != fastjson.TypeNumber {
		return nil
	}
	x, err := f.Float64()
	if err != nil {
		return nil
	}
	return &x
}
