package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/sparkify/internal/models"
)

// RowCounts tallies inserted rows per table.
type RowCounts map[models.Table]int

// Add accumulates other into c.
func (c RowCounts) Add(other RowCounts) {
	for table, n := range other {
		c[table] += n
	}
}

// Total sums every table.
func (c RowCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Stats describes what loading one or more files produced.
type Stats struct {
	Rows     RowCounts // Rows inserted per table
	Events   int       // Log events read, song plays or not
	Plays    int       // Song play events kept
	Resolved int       // Song plays whose song and artist were found in the catalog
}

func newStats() Stats {
	return Stats{Rows: RowCounts{}}
}

func (s *Stats) add(other Stats) {
	if s.Rows == nil {
		s.Rows = RowCounts{}
	}
	s.Rows.Add(other.Rows)
	s.Events += other.Events
	s.Plays += other.Plays
	s.Resolved += other.Resolved
}

// FileError records the failure of one input file.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// DirResult summarizes the load of one directory tree.
type DirResult struct {
	Stats
	Root      string      // Directory that was walked
	Found     int         // Files discovered
	Processed int         // Files committed
	Failed    []FileError // Files rolled back and skipped
}

// RunResult contains the results of a full run.
type RunResult struct {
	Songs      *DirResult
	Logs       *DirResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration reports how long the run took.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Dirs returns the non-nil directory results in load order.
func (r *RunResult) Dirs() []*DirResult {
	var dirs []*DirResult
	for _, d := range []*DirResult{r.Songs, r.Logs} {
		if d != nil {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
