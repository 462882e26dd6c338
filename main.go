package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-scraper/config"
	"booking-scraper/models"
	"booking-scraper/scraper/booking"
	"booking-scraper/services"
	"booking-scraper/storage"
	"booking-scraper/utils"
)

func main() {
	getData := flag.Bool("get-data", false, "crawl fresh data instead of loading the latest snapshot")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := utils.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Booking Scraping System starting ===")

	var result models.CrawlResult
	if *getData {
		result, err = crawl(ctx, cfg, logger)
		var crawlErr *booking.CrawlError
		switch {
		case errors.As(err, &crawlErr):
			logger.Error("Crawl stopped early: %v", crawlErr)
			if crawlErr.Checkpoint != "" {
				logger.Error("Resume with RESUME_FROM=%s", crawlErr.Checkpoint)
			}
			if len(result) == 0 {
				os.Exit(1)
			}
			logger.Warn("Continuing with %d completed pages", len(result))
		case err != nil:
			logger.Error("Crawl failed: %v", err)
			os.Exit(1)
		}
	} else {
		result, err = loadSnapshot(cfg, logger)
		if err != nil {
			logger.Error("Failed to load snapshot: %v", err)
			os.Exit(1)
		}
	}

	if result.Listings() == 0 {
		logger.Warn("No listings to report on")
	}

	reporter, err := services.NewReporter(cfg.ChartsDir, logger)
	if err != nil {
		logger.Error("Failed to prepare charts dir: %v", err)
		os.Exit(1)
	}
	writeReports(reporter, cfg, logger, result)

	if cfg.StoreEnabled() {
		if err := syncStore(ctx, reporter, cfg, logger, result); err != nil {
			logger.Error("Store step failed: %v", err)
		}
	}

	if cfg.CSVOutputPath != "" {
		if err := exportCSV(cfg.CSVOutputPath, result); err != nil {
			logger.Error("CSV export failed: %v", err)
		} else {
			logger.Info("Listings saved to %s", cfg.CSVOutputPath)
		}
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(result))

	fmt.Printf("  Done. Charts → %s\n\n", cfg.ChartsDir)
}

func crawl(ctx context.Context, cfg *config.Config, logger *utils.Logger) (models.CrawlResult, error) {
	snapshots, err := storage.NewSnapshotWriter(cfg.SnapshotDir)
	if err != nil {
		return nil, err
	}

	crawler := booking.NewCrawler(
		sessionFactory(cfg, logger),
		snapshots,
		&utils.RetryConfig{MaxAttempts: cfg.RetryAttempts(), BaseDelay: cfg.RetryBaseDelay(), Logger: logger},
		booking.Pagination{
			Rounding:  booking.ParseRounding(cfg.PageRounding),
			FirstPage: booking.ParseFirstPage(cfg.FirstPage),
		},
		logger,
	)

	today := time.Now()
	q := models.SearchQuery{
		Destination: cfg.Destination,
		CheckIn:     today,
		CheckOut:    today.AddDate(0, 0, cfg.StayNights),
		PartySize:   cfg.PartySize,
	}
	logger.Info("Config: destination: %s | stay: %d nights | party: %d | fetch: %s",
		q.Destination, cfg.StayNights, q.PartySize, cfg.FetchMode)

	if cfg.ResumeFrom == "" {
		return crawler.Crawl(ctx, q)
	}

	prior, err := storage.LoadSnapshot(cfg.ResumeFrom)
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}
	logger.Info("Resuming after %d pages from %s", len(prior), cfg.ResumeFrom)
	return crawler.Resume(ctx, q, prior)
}

func sessionFactory(cfg *config.Config, logger *utils.Logger) booking.SessionFactory {
	if cfg.FetchMode == "browser" {
		return func() (booking.Fetcher, error) {
			s, err := booking.NewBrowserSession(cfg.UserAgent, cfg.ChromeBin, cfg.RequestTimeout())
			if err != nil {
				return nil, err
			}
			return s, nil
		}
	}
	return func() (booking.Fetcher, error) {
		return booking.NewHTTPSession(cfg.UserAgent, cfg.RequestTimeout()), nil
	}
}

func loadSnapshot(cfg *config.Config, logger *utils.Logger) (models.CrawlResult, error) {
	path := cfg.SnapshotFile
	if path == "" {
		latest, err := storage.LatestSnapshot(cfg.SnapshotDir)
		if err != nil {
			return nil, err
		}
		path = latest
	}
	logger.Info("Loading snapshot %s", path)
	return storage.LoadSnapshot(path)
}

// writeReports renders every chart and the map from the crawl result.
func writeReports(reporter *services.Reporter, cfg *config.Config, logger *utils.Logger, result models.CrawlResult) {
	ratings := services.RatingsFromResult(result)

	if _, err := reporter.RatingHistogram(services.RatingHistogram(ratings)); err != nil {
		logger.Error("Rating histogram: %v", err)
	}
	if _, err := reporter.ScorePie(services.ScoreGroups(ratings)); err != nil {
		logger.Error("Score pie: %v", err)
	}
	if _, err := reporter.OpeningYears(services.OpeningYears(services.OpenDatesFromResult(result))); err != nil {
		logger.Error("Opening years chart: %v", err)
	}
	if _, err := reporter.Facilities(services.FacilityFrequency(services.FacilityRowsFromResult(result)), services.FacilityChartLimit); err != nil {
		logger.Error("Facilities chart: %v", err)
	}

	// syncStore redraws all of these from the whole store when one is configured
	summaries, err := services.CityPricesByStars(services.ApartmentRowsFromResult(result))
	if err != nil {
		logger.Warn("City prices skipped: %v", err)
	} else if _, err := reporter.PricesByStars(reportCity(cfg), summaries); err != nil {
		logger.Error("Prices chart: %v", err)
	}

	markers, skipped := services.MapMarkers(services.CoordinatesFromResult(result))
	if skipped > 0 {
		logger.Debug("%d hotels without usable coordinates", skipped)
	}
	if _, err := reporter.Map(cfg.MapName, markers); err != nil {
		logger.Error("Map: %v", err)
	}
}

// syncStore ingests the result, removes duplicates and redraws the reports
// from the whole store.
func syncStore(ctx context.Context, reporter *services.Reporter, cfg *config.Config, logger *utils.Logger, result models.CrawlResult) error {
	store, err := storage.OpenHotelStore(ctx, cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if _, err := store.Ingest(ctx, result, cfg.Destination); err != nil {
		return err
	}
	if _, err := store.RemoveDuplicates(ctx); err != nil {
		return err
	}
	return reporter.StoreReport(ctx, store, reportCity(cfg), cfg.MapName)
}

func exportCSV(path string, result models.CrawlResult) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	return writeResult(w, result)
}

// writeResult writes result and closes w.
func writeResult(w storage.ResultWriter, result models.CrawlResult) error {
	if err := w.WriteResult(result); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func reportCity(cfg *config.Config) string {
	if cfg.ReportCity != "" {
		return cfg.ReportCity
	}
	return cfg.Destination
}
