// scraper/csv_downloader_test.go
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecenergy/tecingest/filestore"
)

const sampleCSV = `"Loc","Loc Zn","Loc Name","Loc Purp Desc","Loc/QTI","Flow Ind","DC","OPC","TSQ","OAC","IT","Auth Overrun Ind","Nom Cap Exceed Ind","All Qty Avail","Qty Reason"
"100001","SOUTH","ALAMO NORTH","M2","DPQ","D","0","464000","0","464000","N","N","N","Y",""
`

var testNow = time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)

func newTestDownloader(t *testing.T, handler http.Handler) (*Downloader, *filestore.Store, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := filestore.New(afero.NewMemMapFs(), "data")
	require.NoError(t, err)

	d := NewDownloader(server.URL, 5*time.Second, store, zap.NewNop())
	d.now = func() time.Time { return testNow }
	return d, store, server
}

func TestFetchWindowEnumeratesAllPairs(t *testing.T) {
	var requests int64
	d, _, _ := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		http.NotFound(w, r)
	}))

	saved, err := d.FetchWindow(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, saved)
	// (days_back+1) dates x 6 cycles, one attempt each.
	assert.Equal(t, int64(12), atomic.LoadInt64(&requests))
}

func TestFetchWindowSavesAcceptedSnapshot(t *testing.T) {
	d, store, _ := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("gasDay") == "01/02/2025" && q.Get("cycle") == "0" {
			fmt.Fprint(w, sampleCSV)
			return
		}
		http.NotFound(w, r)
	}))

	saved, err := d.FetchWindow(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "data/tec_data_20250102_cycle_0.csv", saved[0])

	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Equal(t, saved, pending)
}

func TestFetchWindowTreatsNonCSVBodyAsNoData(t *testing.T) {
	d, store, _ := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>No results found</body></html>")
	}))

	saved, err := d.FetchWindow(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, saved)

	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestFetchWindowFailureDoesNotAbortSweep(t *testing.T) {
	d, _, _ := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("cycle") {
		case "0", "1":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "5":
			fmt.Fprint(w, sampleCSV)
		default:
			http.NotFound(w, r)
		}
	}))

	saved, err := d.FetchWindow(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "data/tec_data_20250102_cycle_5.csv", saved[0])
}

func TestFetchWindowRedownloadOverwrites(t *testing.T) {
	d, store, _ := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cycle") == "0" {
			fmt.Fprint(w, sampleCSV)
			return
		}
		http.NotFound(w, r)
	}))

	first, err := d.FetchWindow(context.Background(), 0)
	require.NoError(t, err)
	second, err := d.FetchWindow(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestBuildURL(t *testing.T) {
	store, err := filestore.New(afero.NewMemMapFs(), "data")
	require.NoError(t, err)
	d := NewDownloader("https://example.com/capacity", time.Second, store, zap.NewNop())

	raw := d.buildURL(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), 3)
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "csv", q.Get("f"))
	assert.Equal(t, "csv", q.Get("extension"))
	assert.Equal(t, "TW", q.Get("asset"))
	assert.Equal(t, "01/02/2025", q.Get("gasDay"))
	assert.Equal(t, "3", q.Get("cycle"))
	assert.Equal(t, "NOM", q.Get("searchType"))
	assert.Equal(t, "ALL", q.Get("locType"))
	assert.Equal(t, "ALL", q.Get("locZone"))

	// The gas day must travel URL-encoded (MM%2FDD%2FYYYY).
	assert.Contains(t, raw, "gasDay=01%2F02%2F2025")
}
