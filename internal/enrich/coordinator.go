package enrich

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/uni-enrich/internal/model"
)

// DefaultConcurrency is the number of universities enriched at once when the
// caller does not choose.
const DefaultConcurrency = 3

// UniversityEnricher enriches a single university.
type UniversityEnricher interface {
	EnrichDetailed(ctx context.Context, u model.University) (model.University, Stats)
}

// Coordinator enriches lists of universities with bounded concurrency.
type Coordinator struct {
	enricher UniversityEnricher
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(e UniversityEnricher) *Coordinator {
	return &Coordinator{enricher: e}
}

// EnrichAll enriches unis with at most limit universities in flight and
// returns the results in input order. A university whose enrichment panics is
// returned unchanged. limit <= 0 uses DefaultConcurrency.
func (c *Coordinator) EnrichAll(ctx context.Context, unis []model.University, limit int) []model.University {
	out, _ := c.enrichAll(ctx, unis, limit)
	return out
}

func (c *Coordinator) enrichAll(ctx context.Context, unis []model.University, limit int) ([]model.University, Stats) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]model.University, len(unis))
	var (
		g     errgroup.Group
		mu    sync.Mutex
		stats Stats
	)
	g.SetLimit(limit)

	for i, u := range unis {
		g.Go(func() error {
			enriched, s := c.enrichOne(ctx, u)
			results[i] = enriched

			mu.Lock()
			stats = stats.Add(s)
			mu.Unlock()
			return nil // one university never aborts the rest
		})
	}
	_ = g.Wait()

	return results, stats
}

// enrichOne substitutes the original university if enrichment panics.
func (c *Coordinator) enrichOne(ctx context.Context, u model.University) (out model.University, stats Stats) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("enrich: university failed",
				zap.String("university", u.Name),
				zap.String("domain", u.Domain),
				zap.String("reason", fmt.Sprint(r)),
			)
			out = u.Clone()
			stats = Stats{Entities: 1, Failed: 4}
		}
	}()
	return c.enricher.EnrichDetailed(ctx, u)
}
