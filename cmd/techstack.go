package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/uni-enrich/internal/config"
	"github.com/sells-group/uni-enrich/internal/model"
	"github.com/sells-group/uni-enrich/pkg/throxy"
)

var (
	techstackFile        string
	techstackStore       string
	techstackLimit       int
	techstackConcurrency int
	techstackRefresh     bool
)

var techstackCmd = &cobra.Command{
	Use:   "techstack",
	Short: "Fill tech_stack for saved universities via BuiltWith",
	Long: `Loads saved universities, asks Throxy's BuiltWith tool which technologies
each website uses, and saves the records back with tech_stack set.

Examples:
  uni-enrich techstack
  uni-enrich techstack --file output/enriched_universities_kaggle.json --limit 20`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := validateKeys(config.ModeThroxy); err != nil {
			return err
		}

		file := techstackFile
		if file == "" {
			file = outputPath("enriched_universities.json")
		}
		st, err := openStore(ctx, techstackStore, file)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		unis, err := st.Load(ctx)
		if err != nil {
			return eris.Wrap(err, "techstack: load")
		}

		updated, filled, failed := fillTechStack(ctx, newThroxyClient(), unis, techstackLimit, techstackConcurrency, techstackRefresh)
		if err := st.Save(ctx, updated); err != nil {
			return eris.Wrap(err, "techstack: save")
		}

		zap.L().Info("techstack: complete",
			zap.Int("universities", len(unis)),
			zap.Int("filled", filled),
			zap.Int("failed", failed),
		)
		return nil
	},
}

func init() {
	techstackCmd.Flags().StringVar(&techstackFile, "file", "", "saved universities JSON file (default: <output.dir>/enriched_universities.json)")
	techstackCmd.Flags().StringVar(&techstackStore, "store", "", "store driver: json, sqlite, or postgres (default: store.driver)")
	techstackCmd.Flags().IntVar(&techstackLimit, "limit", 0, "max universities to look up (0 = all)")
	techstackCmd.Flags().IntVar(&techstackConcurrency, "concurrency", 3, "max lookups in flight")
	techstackCmd.Flags().BoolVar(&techstackRefresh, "refresh", false, "look up universities that already have a tech stack")
	rootCmd.AddCommand(techstackCmd)
}

// fillTechStack looks up the tech stack of each university lacking one (or
// every university when refresh is set), up to limit lookups. Failed lookups
// leave the record unchanged. Output order matches input order.
func fillTechStack(ctx context.Context, client throxy.Client, unis []model.University, limit, concurrency int, refresh bool) (out []model.University, filled, failed int) {
	if concurrency <= 0 {
		concurrency = 1
	}
	out = make([]model.University, len(unis))
	for i, u := range unis {
		out[i] = u.Clone()
	}

	var nFilled, nFailed atomic.Int64
	var g errgroup.Group
	g.SetLimit(concurrency)

	queued := 0
	for i := range out {
		if out[i].Domain == "" || (!refresh && len(out[i].TechStack) > 0) {
			continue
		}
		if limit > 0 && queued >= limit {
			break
		}
		queued++

		g.Go(func() error {
			u := &out[i]
			techs, err := client.BuiltWith(ctx, "https://"+u.Domain)
			if err != nil {
				nFailed.Add(1)
				zap.L().Warn("techstack: lookup failed",
					zap.String("university", u.Name),
					zap.String("domain", u.Domain),
					zap.Error(err),
				)
				return nil
			}
			u.TechStack = techs
			nFilled.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return out, int(nFilled.Load()), int(nFailed.Load())
}
