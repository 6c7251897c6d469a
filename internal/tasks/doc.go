// Package tasks drives the extract-transform-load run.
//
// # Core Operations
//
// [Engine] loads two directory trees, strictly one file at a time:
//
//  1. [Engine.LoadSongs] : song metadata files
//     - One songs row and one artists row per file
//
//  2. [Engine.LoadLogs] : event log files
//     - Only "NextSong" events are kept
//     - Per event: a time row, a users row, then a catalog lookup and a songplays row
//
//  3. [Engine.Run] : songs first, then logs, so songplays can resolve against the catalog
//
// # Units of Work
//
// [Engine.ProcessData] opens one transaction per file, hands a [repositories.Loader] bound to
// it to the file function, and commits only after every row of the file was inserted. A failing
// file is rolled back, so none of its rows persist.
//
// By default the first failing file aborts the run. With [EngineOpts.ContinueOnError] the failure
// is logged, recorded in [DirResult.Failed], and the next file is processed.
//
// # Progress Reporting
//
// Plain progress lines ("N files found in DIR", "i/N files processed.") are written to
// [EngineOpts.Output]. Callers that want structured updates can also pass a channel; updates use
// select with default so a slow reader never blocks the load.
package tasks
