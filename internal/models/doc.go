// Package models defines the typed rows produced by the ETL job.
//
// Two categories of types live here:
//
// 1. Source records parsed from input files
//   - [LogEvent] : One line of an event log; only [LogEvent.IsSongPlay] events are loaded
//
// 2. Table rows derived from source records, each implementing [Row]
//   - [SongRecord] : songs table, one per song file
//   - [ArtistRecord] : artists table, one per song file
//   - [TimeRecord] : time table, one per song play, never deduplicated
//   - [UserRecord] : users table, one per song play, upserted by the store
//   - [SongplayRecord] : songplays table, one per song play
//
// [Row.Values] returns the positional parameters in the fixed column order of the row's table.
// [Row.Validate] is a shallow presence check run by the loader at insert time.
package models
