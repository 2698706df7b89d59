// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DirSource serves snapshot files from a local directory instead of the
// remote listing. Useful for reprocessing previously downloaded data.
type DirSource struct {
	Dir string
}

// List scans the directory for date-named snapshot files, most recent first.
func (d DirSource) List() ([]File, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot directory %s: %w", d.Dir, err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		date, ok := ParseName(e.Name())
		if !ok {
			continue
		}
		files = append(files, File{Name: e.Name(), Date: date})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Date.After(files[j].Date)
	})
	return files, nil
}

// Content reads one snapshot file from disk.
func (d DirSource) Content(_ context.Context, f File) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.Dir, f.Name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}
