// filestore/filestore_test.go
package filestore

import (
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := New(fs, "data")
	require.NoError(t, err)
	return store, fs
}

func TestSaveAndOpen(t *testing.T) {
	store, fs := newTestStore(t)
	gasDay := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	path, err := store.Save(gasDay, 5, []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "data/tec_data_20250102_cycle_5.csv", path)

	f, err := store.Open(path)
	require.NoError(t, err)
	defer f.Close()
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))

	// No temporary file may survive the rename.
	exists, err := afero.Exists(fs, path+".tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveOverwritesExistingSnapshot(t *testing.T) {
	store, _ := newTestStore(t)
	gasDay := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := store.Save(gasDay, 0, []byte("first"))
	require.NoError(t, err)
	path, err := store.Save(gasDay, 0, []byte("second"))
	require.NoError(t, err)

	f, err := store.Open(path)
	require.NoError(t, err)
	defer f.Close()
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	paths, err := store.ListPending()
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestListPendingFiltersAndSorts(t *testing.T) {
	store, fs := newTestStore(t)

	day1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err := store.Save(day2, 3, []byte("b"))
	require.NoError(t, err)
	_, err = store.Save(day1, 0, []byte("a"))
	require.NoError(t, err)

	// Stray files in the data directory are not part of the worklist.
	require.NoError(t, afero.WriteFile(fs, "data/notes.txt", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "data/other_data_20250101_cycle_0.csv", []byte("x"), 0o644))

	paths, err := store.ListPending()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"data/tec_data_20250101_cycle_0.csv",
		"data/tec_data_20250102_cycle_3.csv",
	}, paths)
}

func TestParseSnapshotKey(t *testing.T) {
	gasDay, cycle, err := ParseSnapshotKey("data/tec_data_20250102_cycle_7.csv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), gasDay)
	assert.Equal(t, 7, cycle)

	_, _, err = ParseSnapshotKey("data/notes.txt")
	assert.Error(t, err)
	_, _, err = ParseSnapshotKey("data/tec_data_20250102.csv")
	assert.Error(t, err)
	_, _, err = ParseSnapshotKey("data/tec_data_2025XX02_cycle_7.csv")
	assert.Error(t, err)
}

func TestFilenameRoundTrip(t *testing.T) {
	gasDay := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	name := Filename(gasDay, 1)
	assert.Equal(t, "tec_data_20241231_cycle_1.csv", name)

	parsedDay, parsedCycle, err := ParseSnapshotKey(name)
	require.NoError(t, err)
	assert.Equal(t, gasDay, parsedDay)
	assert.Equal(t, 1, parsedCycle)
}
