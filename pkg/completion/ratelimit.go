package completion

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// rateLimited throttles calls to an inner Backend.
type rateLimited struct {
	inner   Backend
	limiter *rate.Limiter
}

// WithRateLimit wraps b so that at most rps calls per second start. A
// non-positive rps returns b unchanged.
func WithRateLimit(b Backend, rps float64) Backend {
	if rps <= 0 {
		return b
	}
	return &rateLimited{
		inner:   b,
		limiter: rate.NewLimiter(rate.Limit(rps), max(int(rps), 1)),
	}
}

func (r *rateLimited) Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "completion: rate limit")
	}
	return r.inner.Complete(ctx, systemPrompt, userPrompt, opts)
}
