// Package repositories implements the SQL load path for the songplay schema.
//
// Statement text is not global: a [Statements] value holds the parameterized insert for each
// [models.Table] plus the catalog lookup query, and is handed to [NewLoader] at construction.
// [DefaultStatements] is written with '?' placeholders; [Statements.For] rebinds it for a dialect.
//
// Key Implementations:
//   - [Loader.Insert] : one parameterized statement per [models.Row], columns in the row's order
//   - [Loader.LookupSong] : natural-key lookup of (title, artist name, duration) to song and artist ids
//   - [CountRows] : row counts for reporting
//
// A [Loader] runs against an [Execer], normally the *sql.Tx of the file being loaded, so the
// caller decides the unit of work.
//
// Conflict policy: songs and artists ignore rows whose natural key already exists, users upsert
// their level, and time and songplays accept duplicates. Loading the same log twice therefore
// duplicates its time and songplay rows.
package repositories
