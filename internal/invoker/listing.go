// SPDX-License-Identifier: MPL-2.0

package invoker

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// ListEntry describes one entry of the scratch directory listing.
type ListEntry struct {
	// Name is the base name of the entry.
	Name string
	// Size is the file size in bytes (zero for directories).
	Size int64
	// IsDir reports whether the entry is a directory.
	IsDir bool
	// ModTime is the entry's modification time.
	ModTime time.Time
}

// ListDir reads the entries of dir, sorted by name.
func ListDir(dir string) ([]ListEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot list directory '%s': %w", dir, err)
	}

	entries := make([]ListEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entry := ListEntry{Name: de.Name(), IsDir: de.IsDir()}
		if info, err := de.Info(); err == nil {
			entry.ModTime = info.ModTime()
			if !de.IsDir() {
				entry.Size = info.Size()
			}
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// WriteListing renders the listing in a fixed-width format, one entry per
// line, with a header naming the directory.
func WriteListing(w io.Writer, dir string, entries []ListEntry) {
	fmt.Fprintf(w, "Contents of %s:\n", dir)
	if len(entries) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for _, e := range entries {
		kind := "-"
		size := fmt.Sprintf("%d", e.Size)
		if e.IsDir {
			kind = "d"
			size = ""
		}
		fmt.Fprintf(w, "  %s %10s  %s  %s\n",
			kind, size, e.ModTime.Format("2006-01-02 15:04:05"), e.Name)
	}
}
