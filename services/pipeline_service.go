// services/pipeline_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecenergy/tecingest/filestore"
	"github.com/tecenergy/tecingest/models"
	"github.com/tecenergy/tecingest/scraper"
	"github.com/tecenergy/tecingest/validator"
)

// Downloader fetches snapshots for a trailing window of gas days.
type Downloader interface {
	FetchWindow(ctx context.Context, daysBack int) ([]string, error)
}

// RecordStore is the narrow storage interface the pipeline needs.
type RecordStore interface {
	Ping(ctx context.Context) error
	EnsureTable(ctx context.Context) error
	AppendRecords(ctx context.Context, records []models.CapacityRecord, cycle int) (int64, error)
}

// Options selects which stages a run executes.
type Options struct {
	SkipDownload bool
	SkipUpload   bool
	DaysBack     int
}

// Summary aggregates the counts of one pipeline run.
type Summary struct {
	RunID         string
	Downloaded    int
	Valid         int
	Invalid       int
	NoData        int
	UploadedFiles int
	RowsAppended  int64
}

// Pipeline sequences download -> validate -> upload over the shared data
// directory. Validation always covers everything currently in the directory,
// not only freshly downloaded snapshots, so existing files can be
// re-processed by skipping the download stage.
type Pipeline struct {
	downloader Downloader
	validator  *validator.Validator
	files      *filestore.Store
	store      RecordStore
	log        *zap.Logger

	runCount int
}

func NewPipeline(downloader Downloader, v *validator.Validator, files *filestore.Store, store RecordStore, log *zap.Logger) *Pipeline {
	return &Pipeline{
		downloader: downloader,
		validator:  v,
		files:      files,
		store:      store,
		log:        log,
	}
}

// ProbeDB is the standalone connectivity check; it does not run the pipeline.
func (p *Pipeline) ProbeDB(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("no record store configured")
	}
	return p.store.Ping(ctx)
}

// RunOnce executes one full pipeline pass and returns its summary. An error
// means a stage could not run at all; per-snapshot problems are logged,
// counted, and skipped.
func (p *Pipeline) RunOnce(ctx context.Context, opts Options) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	log := p.log.With(zap.String("run_id", summary.RunID))

	if !opts.SkipDownload {
		downloaded, err := p.downloader.FetchWindow(ctx, opts.DaysBack)
		if err != nil {
			return summary, fmt.Errorf("download stage failed: %w", err)
		}
		summary.Downloaded = len(downloaded)
	} else {
		log.Info("download stage skipped")
	}

	pending, err := p.files.ListPending()
	if err != nil {
		return summary, fmt.Errorf("failed to list pending snapshots: %w", err)
	}

	var uploadable []string
	for _, path := range pending {
		report := p.validator.Validate(path)
		switch {
		case !report.Valid:
			summary.Invalid++
			log.Warn("snapshot failed validation",
				zap.String("file", path), zap.Strings("reasons", report.Reasons))
		case report.NoData:
			summary.Valid++
			summary.NoData++
			log.Info("snapshot valid but empty", zap.String("file", path))
		default:
			summary.Valid++
			uploadable = append(uploadable, path)
		}
	}

	if opts.SkipUpload {
		log.Info("upload stage skipped")
	} else if len(uploadable) > 0 {
		if p.store == nil {
			return summary, fmt.Errorf("upload stage failed: no record store configured")
		}
		if err := p.store.EnsureTable(ctx); err != nil {
			return summary, fmt.Errorf("upload stage failed: %w", err)
		}
		for _, path := range uploadable {
			rows, err := p.uploadSnapshot(ctx, path)
			if err != nil {
				// Skip this file, keep the run going; earlier uploads stay committed.
				log.Error("snapshot upload failed", zap.String("file", path), zap.Error(err))
				continue
			}
			summary.UploadedFiles++
			summary.RowsAppended += rows
		}
	}

	log.Info("pipeline run complete",
		zap.Int("downloaded", summary.Downloaded),
		zap.Int("valid", summary.Valid),
		zap.Int("invalid", summary.Invalid),
		zap.Int("no_data", summary.NoData),
		zap.Int("uploaded_files", summary.UploadedFiles),
		zap.Int64("rows_appended", summary.RowsAppended),
	)
	return summary, nil
}

// uploadSnapshot decodes one validated snapshot and appends its rows, tagged
// with the cycle recovered from the file name.
func (p *Pipeline) uploadSnapshot(ctx context.Context, path string) (int64, error) {
	_, cycle, err := filestore.ParseSnapshotKey(path)
	if err != nil {
		return 0, err
	}

	f, err := p.files.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	records, err := scraper.ParseSnapshot(f)
	if err != nil {
		return 0, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return p.store.AppendRecords(ctx, records, cycle)
}

// RunForever runs the pipeline immediately, then repeats on a fixed interval
// until the context is cancelled. The timer restarts after each run
// completes; iteration failures are logged and never stop the loop.
func (p *Pipeline) RunForever(ctx context.Context, interval time.Duration, opts Options) {
	p.log.Info("starting continuous scheduler", zap.Duration("interval", interval))

	timer := time.NewTimer(0) // fire the first run immediately
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("scheduler stopped", zap.Int("runs", p.runCount))
			return
		case <-timer.C:
		}

		p.runCount++
		p.log.Info("starting scheduled run", zap.Int("run", p.runCount))
		if _, err := p.RunOnce(ctx, opts); err != nil {
			p.log.Error("scheduled run failed", zap.Int("run", p.runCount), zap.Error(err))
		}

		p.log.Info("waiting until next run", zap.Duration("interval", interval))
		timer.Reset(interval)
	}
}
