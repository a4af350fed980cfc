package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/uni-enrich/internal/enrich"
	"github.com/sells-group/uni-enrich/internal/ingest"
	"github.com/sells-group/uni-enrich/internal/model"
)

var (
	enrichInput       string
	enrichOutput      string
	enrichStore       string
	enrichLimit       int
	enrichConcurrency int
	enrichDryRun      bool
	enrichResume      bool
	enrichOffline     bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich the seed universities or a JSON/YAML list",
	Long: `Runs the four lookups for each university and saves the merged records.

Without --input the built-in seed list is used.

Examples:
  # Seed list, real backend
  uni-enrich enrich

  # Offline run over a file, first five entries
  uni-enrich enrich --input universities.yaml --offline --limit 5

  # Skip universities already enriched in the output
  uni-enrich enrich --input universities.json --resume`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		unis, err := loadInput(enrichInput)
		if err != nil {
			return err
		}
		unis = limitUniversities(unis, enrichLimit)
		zap.L().Info("enrich: loaded universities", zap.Int("count", len(unis)))

		if enrichDryRun {
			return printJSON(cmd.OutOrStdout(), unis)
		}

		out := enrichOutput
		if out == "" {
			out = outputPath("enriched_universities.json")
		}

		env, err := initEnrich(ctx, enrichOffline, enrichStore, out)
		if err != nil {
			return err
		}
		defer env.Close()

		todo, carry, err := prepareResume(ctx, env.Store, unis, enrichResume)
		if err != nil {
			return err
		}
		if len(todo) == 0 {
			zap.L().Info("enrich: nothing to enrich")
			return nil
		}

		concurrency := enrichConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.SeedConcurrency
		}

		done, err := env.Coordinator.RunBatches(ctx, todo, enrich.BatchOptions{
			Size:        len(todo),
			Concurrency: concurrency,
			Saver:       env.Store,
			Carry:       carry,
		})
		if err != nil {
			return eris.Wrap(err, "enrich")
		}

		zap.L().Info("enrich: results saved",
			zap.String("output", out),
			zap.Int("enriched", len(done)),
			zap.Int("carried", len(carry)),
		)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichInput, "input", "", "JSON or YAML list of universities (default: built-in seeds)")
	enrichCmd.Flags().StringVar(&enrichOutput, "output", "", "output JSON file (default: <output.dir>/enriched_universities.json)")
	enrichCmd.Flags().StringVar(&enrichStore, "store", "", "store driver: json, sqlite, or postgres (default: store.driver)")
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "max universities to process (0 = all)")
	enrichCmd.Flags().IntVar(&enrichConcurrency, "concurrency", 0, "max universities in flight (default: batch.seed_concurrency)")
	enrichCmd.Flags().BoolVar(&enrichDryRun, "dry-run", false, "print the input list and exit")
	enrichCmd.Flags().BoolVar(&enrichResume, "resume", false, "skip universities already enriched in the output")
	enrichCmd.Flags().BoolVar(&enrichOffline, "offline", false, "use the stub backend (no API keys needed)")
	rootCmd.AddCommand(enrichCmd)
}

// loadInput reads the university list from path, or returns the seeds.
func loadInput(path string) ([]model.University, error) {
	if path == "" {
		return ingest.Seeds(), nil
	}
	unis, err := ingest.ReadUniversities(path)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: read input")
	}
	return unis, nil
}
