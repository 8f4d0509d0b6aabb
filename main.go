// main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/tecenergy/tecingest/config"
	"github.com/tecenergy/tecingest/database"
	"github.com/tecenergy/tecingest/filestore"
	"github.com/tecenergy/tecingest/scraper"
	"github.com/tecenergy/tecingest/services"
	"github.com/tecenergy/tecingest/validator"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Path to optional config.yaml")
		skipDownload = flag.Bool("skip-download", false, "Skip the download stage and process existing files")
		skipUpload   = flag.Bool("skip-upload", false, "Skip the upload stage")
		continuous   = flag.Bool("continuous", false, "Keep running on a fixed interval")
		intervalHrs  = flag.Int("interval", 6, "Hours between runs in continuous mode")
		daysBack     = flag.Int("days-back", 2, "How many days before today to include in the download window")
		testDB       = flag.Bool("test-db", false, "Test database connectivity and exit")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	// Local deployments keep DB credentials in a .env file; absence is fine.
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded environment from .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := filestore.New(afero.NewOsFs(), cfg.DataDir)
	if err != nil {
		logger.Error("failed to initialize file store", zap.Error(err))
		os.Exit(1)
	}

	// The database is only touched by the probe and the upload stage.
	var store services.RecordStore
	if *testDB || !*skipUpload {
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", zap.Error(err))
			os.Exit(1)
		}
		defer db.Close()
		store = database.NewCapacityStore(db, logger)
	}

	downloader := scraper.NewDownloader(cfg.SourceBaseURL, cfg.HTTPTimeout, files, logger)
	pipeline := services.NewPipeline(downloader, validator.New(files, logger), files, store, logger)

	if *testDB {
		if err := pipeline.ProbeDB(ctx); err != nil {
			logger.Error("database connectivity test failed", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("database connectivity test passed")
		return
	}

	opts := services.Options{
		SkipDownload: *skipDownload,
		SkipUpload:   *skipUpload,
		DaysBack:     *daysBack,
	}

	if *continuous {
		pipeline.RunForever(ctx, time.Duration(*intervalHrs)*time.Hour, opts)
		return
	}

	if _, err := pipeline.RunOnce(ctx, opts); err != nil {
		logger.Error("pipeline run failed", zap.Error(err))
		os.Exit(1)
	}
}
