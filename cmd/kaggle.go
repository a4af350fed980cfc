package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/uni-enrich/internal/enrich"
	"github.com/sells-group/uni-enrich/internal/ingest"
	"github.com/sells-group/uni-enrich/internal/store"
)

var (
	kaggleCSV            string
	kaggleCountries      []string
	kaggleOutput         string
	kaggleFilteredOutput string
	kaggleStore          string
	kaggleLimit          int
	kaggleBatchSize      int
	kaggleConcurrency    int
	kaggleDelay          time.Duration
	kaggleDryRun         bool
	kaggleResume         bool
	kaggleOffline        bool
)

var kaggleCmd = &cobra.Command{
	Use:   "kaggle",
	Short: "Filter the world-universities CSV and enrich it in batches",
	Long: `Reads the Kaggle world-universities CSV (country_code,name,website),
keeps the target countries, saves the filtered list, then enriches it in
batches, saving after each batch.

Examples:
  # Filter only
  uni-enrich kaggle --dry-run

  # Mexico and Argentina, offline
  uni-enrich kaggle --countries MX,Argentina --offline

  # Continue an interrupted run
  uni-enrich kaggle --resume`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		countries := ingest.DefaultCountries()
		selectors := kaggleCountries
		if len(selectors) == 0 {
			selectors = cfg.Input.Countries
		}
		if len(selectors) > 0 {
			c, err := countries.Only(selectors)
			if err != nil {
				return eris.Wrap(err, "kaggle: countries")
			}
			countries = c
		}

		csvPath := kaggleCSV
		if csvPath == "" {
			csvPath = cfg.Input.CSVPath
		}
		unis, err := ingest.ReadCSV(csvPath, countries)
		if err != nil {
			return eris.Wrap(err, "kaggle: read csv")
		}

		filtered := kaggleFilteredOutput
		if filtered == "" {
			filtered = outputPath("filtered_universities.json")
		}
		if err := store.NewJSONFile(filtered).Save(ctx, unis); err != nil {
			return eris.Wrap(err, "kaggle: save filtered")
		}
		zap.L().Info("kaggle: filtered universities saved",
			zap.String("path", filtered),
			zap.Int("count", len(unis)),
		)

		if kaggleDryRun {
			return nil
		}
		unis = limitUniversities(unis, kaggleLimit)

		out := kaggleOutput
		if out == "" {
			out = outputPath("enriched_universities_kaggle.json")
		}

		env, err := initEnrich(ctx, kaggleOffline, kaggleStore, out)
		if err != nil {
			return err
		}
		defer env.Close()

		todo, carry, err := prepareResume(ctx, env.Store, unis, kaggleResume)
		if err != nil {
			return err
		}
		if len(todo) == 0 {
			zap.L().Info("kaggle: nothing to enrich")
			return nil
		}

		opts := enrich.BatchOptions{
			Size:        cfg.Batch.Size,
			Concurrency: cfg.Batch.Concurrency,
			Delay:       cfg.Batch.Delay(),
			Saver:       env.Store,
			Carry:       carry,
		}
		if kaggleBatchSize > 0 {
			opts.Size = kaggleBatchSize
		}
		if kaggleConcurrency > 0 {
			opts.Concurrency = kaggleConcurrency
		}
		if cmd.Flags().Changed("delay") {
			opts.Delay = kaggleDelay
		}

		done, err := env.Coordinator.RunBatches(ctx, todo, opts)
		if err != nil {
			zap.L().Warn("kaggle: stopped early, partial results saved",
				zap.String("output", out),
				zap.Int("enriched", len(done)),
			)
			return eris.Wrap(err, "kaggle")
		}

		zap.L().Info("kaggle: results saved",
			zap.String("output", out),
			zap.Int("enriched", len(done)),
			zap.Int("carried", len(carry)),
		)
		return nil
	},
}

func init() {
	kaggleCmd.Flags().StringVar(&kaggleCSV, "csv", "", "path to world-universities CSV (default: input.csv_path)")
	kaggleCmd.Flags().StringSliceVar(&kaggleCountries, "countries", nil, "country codes or names to keep (default: all target countries)")
	kaggleCmd.Flags().StringVar(&kaggleOutput, "output", "", "output JSON file (default: <output.dir>/enriched_universities_kaggle.json)")
	kaggleCmd.Flags().StringVar(&kaggleFilteredOutput, "filtered-output", "", "filtered list JSON file (default: <output.dir>/filtered_universities.json)")
	kaggleCmd.Flags().StringVar(&kaggleStore, "store", "", "store driver: json, sqlite, or postgres (default: store.driver)")
	kaggleCmd.Flags().IntVar(&kaggleLimit, "limit", 0, "max universities to enrich (0 = all)")
	kaggleCmd.Flags().IntVar(&kaggleBatchSize, "batch-size", 0, "universities per batch (default: batch.size)")
	kaggleCmd.Flags().IntVar(&kaggleConcurrency, "concurrency", 0, "universities in flight per batch (default: batch.concurrency)")
	kaggleCmd.Flags().DurationVar(&kaggleDelay, "delay", 0, "pause between batches (default: batch.delay_secs)")
	kaggleCmd.Flags().BoolVar(&kaggleDryRun, "dry-run", false, "filter and save the CSV, skip enrichment")
	kaggleCmd.Flags().BoolVar(&kaggleResume, "resume", false, "skip universities already enriched in the output")
	kaggleCmd.Flags().BoolVar(&kaggleOffline, "offline", false, "use the stub backend (no API keys needed)")
	rootCmd.AddCommand(kaggleCmd)
}
