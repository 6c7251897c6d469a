// Package transform maps parsed input files onto the typed rows in [models].
//
// # Song files
//
// [ParseSongFile] reads the single JSON object of a song file and projects it into one
// [models.SongRecord] and one [models.ArtistRecord]. Keys are read by name with fastjson;
// missing keys yield zero values and are left for the loader's validation to reject.
//
// # Log files
//
// [ParseLogFile] reads one JSON object per line, in file order. [FilterSongPlays] keeps the
// "NextSong" events. For each retained event the caller derives:
//   - [Time] : calendar breakdown of the event's epoch-millisecond timestamp
//   - [User] : the user row, passed through without deduplication
//   - [Songplay] : the songplay row, built from the event and its own catalog lookup
package transform
