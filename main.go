package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"restaurant-inspections/config"
	"restaurant-inspections/document"
	"restaurant-inspections/extract"
	"restaurant-inspections/geocode"
	"restaurant-inspections/models"
	"restaurant-inspections/scraper/kingcounty"
	"restaurant-inspections/services"
	"restaurant-inspections/storage"
	"restaurant-inspections/utils"
)

type options struct {
	test      bool
	zip       string
	count     int
	sortKey   string
	reverse   bool
	noGeocode bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "inspections",
		Short:         "Scrape King County restaurant inspection results",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := utils.NewLoggerWithLevel(cfg.LogLevel)
			defer func() { _ = logger.Sync() }()

			if err := run(cmd.Context(), cfg, logger, opts); err != nil {
				logger.Error("%v", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.test, "test", false, "load the cached results page instead of fetching")
	cmd.Flags().StringVar(&opts.zip, "zip", "98109", "zip code to search")
	cmd.Flags().IntVar(&opts.count, "count", 10, "number of listings to extract (0 = all)")
	cmd.Flags().StringVar(&opts.sortKey, "sort", string(services.SortHighScore), "display order: highscore, average or most")
	cmd.Flags().BoolVar(&opts.reverse, "reverse", false, "show lowest values first")
	cmd.Flags().BoolVar(&opts.noGeocode, "no-geocode", false, "skip geocoding and GeoJSON output")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger, opts *options) error {
	sortKey, err := services.ParseSortKey(opts.sortKey)
	if err != nil {
		return err
	}

	logger.Info("=== Restaurant inspection scraper starting ===")

	scraper := kingcounty.New(cfg, logger)
	var page *kingcounty.Page
	if opts.test {
		page, err = scraper.Load()
	} else {
		page, err = scraper.Fetch(ctx, map[string]string{"Zip_Code": opts.zip})
	}
	if err != nil {
		return err
	}

	doc, err := document.Parse(page.Content, page.Encoding)
	if err != nil {
		return err
	}

	records, err := extract.NewExtractor(logger, cfg.ExtractWorkers).Extract(doc, extract.First(opts.count))
	if err != nil {
		var listingErr *extract.ListingError
		if !errors.As(err, &listingErr) {
			return err
		}
		logger.Warn("[extract] Some listings were skipped: %v", err)
	}
	logger.Info("[extract] Extracted %d restaurant records", len(records))

	writeRecords(cfg, logger, records)

	if !opts.noGeocode {
		geocodeRecords(ctx, cfg, logger, records)
	}

	reporter := services.NewReportService(logger)
	sorted := reporter.Sort(records, sortKey, opts.reverse)
	reporter.Print(os.Stdout, sorted, reporter.Generate(records))
	return nil
}

func writeRecords(cfg *config.Config, logger *utils.Logger, records []*models.RestaurantRecord) {
	var writers []storage.RecordWriter

	if cfg.CSVOutputPath != "" {
		w, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
		} else {
			writers = append(writers, w)
		}
	}
	if cfg.SQLitePath != "" {
		w, err := storage.NewSQLiteWriter(cfg.SQLitePath)
		if err != nil {
			logger.Error("Failed to open SQLite database: %v", err)
		} else {
			writers = append(writers, w)
		}
	}
	if cfg.StorePostgres {
		w, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
		} else {
			writers = append(writers, w)
		}
	}

	for _, w := range writers {
		if err := w.Write(records); err != nil {
			logger.Error("[storage] %T write failed: %v", w, err)
		}
		if err := w.Close(); err != nil {
			logger.Warn("[storage] %T close failed: %v", w, err)
		}
	}
}

func geocodeRecords(ctx context.Context, cfg *config.Config, logger *utils.Logger, records []*models.RestaurantRecord) {
	if cfg.GeocodeAPIKey == "" {
		logger.Warn("[geocode] GEOCODE_API_KEY not set, skipping geocoding")
		return
	}

	client := geocode.NewGoogleClient(cfg.GeocodeURL, cfg.GeocodeAPIKey,
		time.Duration(cfg.RequestTimeoutSec)*time.Second)
	annotator := geocode.NewAnnotator(geocode.NewCachingGeocoder(client), logger,
		cfg.GeocodeConcurrency, cfg.GeocodeRateLimitMs)
	features := annotator.AnnotateAll(ctx, records)

	w, err := storage.NewGeoJSONWriter(cfg.GeoJSONOutputPath)
	if err != nil {
		logger.Error("Failed to create GeoJSON writer: %v", err)
		return
	}
	defer w.Close()

	if err := w.WriteFeatures(features); err != nil {
		logger.Error("[geojson] write failed: %v", err)
		return
	}
	logger.Info("[geojson] %d features written to %s", len(features), cfg.GeoJSONOutputPath)
}
