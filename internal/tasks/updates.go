package tasks

import "fmt"

// ProgressUpdate represents a progress event during a run.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current file number within phase
	Total   int    // Total files in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	DiscoverFiles Phase = iota
	LoadFile
	SkipFile
)

func (p Phase) String() string {
	switch p {
	case DiscoverFiles:
		return "discover_files"
	case LoadFile:
		return "load_file"
	case SkipFile:
		return "skip_file"
	default:
		return ""
	}
}

func discoveredUpdate(total int, root string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DiscoverFiles,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("%d files found in %s", total, root),
		Data:    root,
	}
}

func loadedUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadFile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%d/%d files processed.", step, total),
		Data:    path,
	}
}

func skippedUpdate(step, total int, fe FileError) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipFile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%d/%d skipped %s: %v", step, total, fe.Path, fe.Err),
		Data:    fe,
	}
}
