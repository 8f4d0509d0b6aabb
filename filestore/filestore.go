// filestore/filestore.go
package filestore

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	filePrefix = "tec_data_"
	fileSuffix = ".csv"
	dateLayout = "20060102"
)

// Store is the directory-as-worklist shared by the pipeline stages. Each
// snapshot lives in one file keyed by gas day and cycle; stages communicate
// only through these files, so any stage can be re-run against what is
// already on disk. The afero filesystem lets tests swap in an in-memory
// store.
type Store struct {
	fs  afero.Fs
	dir string
}

// New creates the store, ensuring the data directory exists.
func New(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Store{fs: fs, dir: dir}, nil
}

// Filename returns the snapshot file name for a (gas day, cycle) key.
func Filename(gasDay time.Time, cycle int) string {
	return fmt.Sprintf("%s%s_cycle_%d%s", filePrefix, gasDay.Format(dateLayout), cycle, fileSuffix)
}

// Save writes a snapshot for the given key, overwriting any existing file.
// The write goes to a temporary path and is renamed into place so an
// interrupted process never leaves a partial snapshot behind.
func (s *Store) Save(gasDay time.Time, cycle int, data []byte) (string, error) {
	name := Filename(gasDay, cycle)
	finalPath := filepath.Join(s.dir, name)
	tmpPath := finalPath + ".tmp"

	if err := afero.WriteFile(s.fs, tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot %s: %w", tmpPath, err)
	}
	if err := s.fs.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("failed to move snapshot into place at %s: %w", finalPath, err)
	}
	return finalPath, nil
}

// ListPending returns every snapshot currently in the data directory,
// sorted by name, i.e. by (gas day, cycle). Non-snapshot files are ignored.
func (s *Store) ListPending() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory %s: %w", s.dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// Open opens a snapshot for reading.
func (s *Store) Open(path string) (io.ReadCloser, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	return f, nil
}

// ParseSnapshotKey recovers the (gas day, cycle) key from a snapshot path,
// e.g. "data/tec_data_20250101_cycle_5.csv" -> (2025-01-01, 5).
func ParseSnapshotKey(path string) (time.Time, int, error) {
	name := filepath.Base(path)
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, 0, fmt.Errorf("not a snapshot file name: %s", name)
	}
	core := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)

	parts := strings.Split(core, "_")
	if len(parts) != 3 || parts[1] != "cycle" {
		return time.Time{}, 0, fmt.Errorf("unexpected snapshot file name layout: %s", name)
	}
	gasDay, err := time.Parse(dateLayout, parts[0])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("failed to parse gas day from %s: %w", name, err)
	}
	cycle, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("failed to parse cycle from %s: %w", name, err)
	}
	return gasDay, cycle, nil
}
