// Package backup lists the backup files of a profile and lets the user
// pick one, either interactively with single-keystroke paging or
// non-interactively by modification time.
package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry describes one candidate backup file.
type Entry struct {
	Path    string
	ModTime time.Time
	Size    int64
}

var backupExts = map[string]bool{
	".sql":    true,
	".backup": true,
	".dump":   true,
}

// IsBackupFile reports whether name carries a recognized backup
// extension (case-insensitive).
func IsBackupFile(name string) bool {
	return backupExts[strings.ToLower(filepath.Ext(name))]
}

// List returns the backup files directly under dir, newest first.
// A missing directory yields an empty listing, not an error. Files that
// cannot be stat'ed are skipped. The sort is stable, so equal
// timestamps keep a consistent order within one listing.
func List(dir string) []Entry {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []Entry
	for _, de := range dirents {
		if de.IsDir() || !IsBackupFile(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, Entry{
			Path:    filepath.Join(dir, de.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files
}

// Latest returns the newest backup file in dir without prompting, or
// the empty string when there is none.
func Latest(dir string) string {
	files := List(dir)
	if len(files) == 0 {
		return ""
	}
	return files[0].Path
}
