package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/uni-enrich/internal/model"
)

// Batch defaults.
const (
	DefaultBatchSize        = 20
	DefaultBatchConcurrency = 5
	DefaultBatchDelay       = 30 * time.Second
)

// Saver persists the results accumulated so far.
type Saver interface {
	Save(ctx context.Context, unis []model.University) error
}

// BatchOptions configures RunBatches.
type BatchOptions struct {
	// Size is the number of universities per chunk. Zero uses DefaultBatchSize.
	Size int
	// Concurrency bounds universities in flight within a chunk. Zero uses
	// DefaultBatchConcurrency.
	Concurrency int
	// Delay is the pause between chunks. Zero means no pause.
	Delay time.Duration
	// Saver receives Carry plus every result so far after each chunk. Optional.
	Saver Saver
	// Carry holds previously enriched universities written ahead of new results.
	Carry []model.University
	// OnProgress is called before each chunk with a 1-based index.
	OnProgress func(batch, total int)
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.Size <= 0 {
		o.Size = DefaultBatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultBatchConcurrency
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	return o
}

// RunBatches enriches unis chunk by chunk, saving after each chunk and
// pausing between chunks. If ctx is cancelled it stops before the next chunk
// and returns what was enriched so far together with the context error.
func (c *Coordinator) RunBatches(ctx context.Context, unis []model.University, opts BatchOptions) ([]model.University, error) {
	opts = opts.withDefaults()

	total := (len(unis) + opts.Size - 1) / opts.Size
	done := make([]model.University, 0, len(unis))
	var stats Stats

	for batch := 0; batch < total; batch++ {
		if err := ctx.Err(); err != nil {
			return done, eris.Wrap(err, "enrich: batches interrupted")
		}

		start := batch * opts.Size
		end := min(start+opts.Size, len(unis))

		zap.L().Info("enrich: processing batch",
			zap.Int("batch", batch+1),
			zap.Int("of", total),
			zap.Int("universities", end-start),
		)
		if opts.OnProgress != nil {
			opts.OnProgress(batch+1, total)
		}

		results, s := c.enrichAll(ctx, unis[start:end], opts.Concurrency)
		done = append(done, results...)
		stats = stats.Add(s)

		if opts.Saver != nil {
			saved := make([]model.University, 0, len(opts.Carry)+len(done))
			saved = append(saved, opts.Carry...)
			saved = append(saved, done...)
			if err := opts.Saver.Save(ctx, saved); err != nil {
				return done, eris.Wrapf(err, "enrich: save after batch %d", batch+1)
			}
		}

		if batch < total-1 && opts.Delay > 0 {
			zap.L().Info("enrich: waiting before next batch", zap.Duration("delay", opts.Delay))
			if err := sleep(ctx, opts.Delay); err != nil {
				return done, eris.Wrap(err, "enrich: batches interrupted")
			}
		}
	}

	zap.L().Info("enrich: batches complete",
		zap.Int("universities", stats.Entities),
		zap.Int("lookups_found", stats.Found),
		zap.Int("lookups_unknown", stats.Unknown),
		zap.Int("lookups_failed", stats.Failed),
	)
	return done, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
