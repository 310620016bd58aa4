// Package listing provides the newest-N file listing used by the aggregate
// directory view. Directory names come from the configured closed list, not
// from user input.
package listing

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrAbsent is returned when the directory does not exist at all, so callers
// can report "not configured on disk" separately from "configured but empty".
var ErrAbsent = errors.New("directory absent")

// Sidecar files written next to GRIB downloads; never part of a listing.
const sidecarExt = ".idx"

// FileEntry describes one regular file in a listing.
type FileEntry struct {
	Name    string    `json:"name"`
	ModTime time.Time `json:"mtime"`
	Size    int64     `json:"size"`
}

// Lister lists files in known subdirectories of a data root.
type Lister struct {
	root string
}

// New creates a Lister over root.
func New(root string) *Lister {
	return &Lister{root: root}
}

// List returns up to limit regular files in the named subdirectory, newest
// by modification time first. A missing directory yields ErrAbsent; an empty
// one yields an empty slice. limit <= 0 means no truncation.
func (l *Lister) List(dir string, limit int) ([]FileEntry, error) {
	entries, err := os.ReadDir(filepath.Join(l.root, dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAbsent, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	files := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), sidecarExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed by the ingester between readdir and stat.
			continue
		}
		files = append(files, FileEntry{
			Name:    entry.Name(),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})

	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}
