// package discover finds input files beneath a directory tree
package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/desertthunder/sparkify/internal/shared"
)

// DefaultPattern matches the JSON inputs of both the song and log trees.
const DefaultPattern = "*.json"

// Discover walks root recursively and returns the absolute path of every regular file
// whose base name matches [DefaultPattern].
func Discover(root string) ([]string, error) {
	return DiscoverPattern(root, DefaultPattern)
}

// DiscoverPattern walks root recursively and returns the absolute, deduplicated, sorted paths
// of regular files whose base name matches pattern (see [filepath.Match]).
//
// Zero matches is not an error; a missing root is.
func DiscoverPattern(root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", shared.ErrInvalidArgument, pattern, err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	seen := make(map[string]struct{})
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			seen[path] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)

	return files, nil
}
