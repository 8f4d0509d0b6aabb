// scraper/csv_downloader.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tecenergy/tecingest/filestore"
	"github.com/tecenergy/tecingest/models"
	"github.com/tecenergy/tecingest/utils"
)

// csvBodyPrefix is how the source distinguishes a real CSV payload from the
// HTML error page it serves when a cycle has not been published: actual data
// always starts with the quoted Loc header.
const csvBodyPrefix = `"Loc"`

// Downloader fetches capacity snapshots from the source endpoint across a
// trailing (gas day, cycle) window and persists accepted payloads to the
// file store.
type Downloader struct {
	client  *http.Client
	baseURL string
	store   *filestore.Store
	log     *zap.Logger

	now func() time.Time // injectable clock for tests
}

// NewDownloader creates a Downloader with a bounded-timeout HTTP client.
func NewDownloader(baseURL string, timeout time.Duration, store *filestore.Store, log *zap.Logger) *Downloader {
	return &Downloader{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		store:   store,
		log:     log,
		now:     time.Now,
	}
}

// FetchWindow attempts one download for every (gas day, cycle) pair in
// [today-daysBack, today] x the fixed cycle set, newest day first, and
// returns the paths actually written. A failure on one pair never aborts the
// remaining enumeration; an empty result is a valid outcome (no new cycles
// published yet).
func (d *Downloader) FetchWindow(ctx context.Context, daysBack int) ([]string, error) {
	var saved []string

	for i := 0; i <= daysBack; i++ {
		gasDay := d.now().AddDate(0, 0, -i)
		day := zap.String("gas_day", gasDay.Format("2006-01-02"))

		for _, cycle := range models.CycleIDs {
			fields := []zap.Field{day, zap.Int("cycle", cycle), zap.String("cycle_name", utils.CycleName(cycle))}

			body, err := d.fetch(ctx, gasDay, cycle)
			if err != nil {
				d.log.Warn("snapshot fetch failed", append(fields, zap.Error(err))...)
				continue
			}
			if body == nil {
				d.log.Debug("no data published for cycle", fields...)
				continue
			}

			path, err := d.store.Save(gasDay, cycle, body)
			if err != nil {
				d.log.Error("failed to persist snapshot", append(fields, zap.Error(err))...)
				continue
			}
			d.log.Info("downloaded snapshot", append(fields, zap.String("file", path))...)
			saved = append(saved, path)
		}
	}

	d.log.Info("download sweep complete", zap.Int("days_back", daysBack), zap.Int("downloaded", len(saved)))
	return saved, nil
}

// fetch performs one GET for a (gas day, cycle) pair and classifies the
// response: (body, nil) on an accepted CSV payload, (nil, nil) when the
// source has no data for the cycle, (nil, err) on a transient failure.
func (d *Downloader) fetch(ctx context.Context, gasDay time.Time, cycle int) ([]byte, error) {
	reqURL := d.buildURL(gasDay, cycle)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", reqURL, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, reqURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", reqURL, err)
	}

	// Empty or non-CSV body means the cycle is not published yet, not an error.
	if !strings.HasPrefix(string(body), csvBodyPrefix) {
		return nil, nil
	}
	return body, nil
}

// buildURL constructs the source request for a (gas day, cycle) pair. The
// endpoint expects the gas day as MM/DD/YYYY (URL-encoded).
func (d *Downloader) buildURL(gasDay time.Time, cycle int) string {
	params := url.Values{
		"f":            {"csv"},
		"extension":    {"csv"},
		"asset":        {"TW"},
		"gasDay":       {gasDay.Format("01/02/2006")},
		"cycle":        {strconv.Itoa(cycle)},
		"searchType":   {"NOM"},
		"searchString": {""},
		"locType":      {"ALL"},
		"locZone":      {"ALL"},
	}
	return d.baseURL + "?" + params.Encode()
}
