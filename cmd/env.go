package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/uni-enrich/internal/config"
	"github.com/sells-group/uni-enrich/internal/enrich"
	"github.com/sells-group/uni-enrich/internal/lookup"
	"github.com/sells-group/uni-enrich/internal/model"
	"github.com/sells-group/uni-enrich/internal/resilience"
	"github.com/sells-group/uni-enrich/internal/store"
	anthropicpkg "github.com/sells-group/uni-enrich/pkg/anthropic"
	"github.com/sells-group/uni-enrich/pkg/completion"
	"github.com/sells-group/uni-enrich/pkg/throxy"
)

// enrichEnv holds what the enrich and kaggle commands need.
type enrichEnv struct {
	Store       store.Store
	Coordinator *enrich.Coordinator
}

// Close releases resources held by the environment.
func (e *enrichEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// validateKeys fails fast, listing every missing secret for the mode.
func validateKeys(mode string) error {
	if missing := cfg.MissingKeys(mode); len(missing) > 0 {
		return eris.Errorf("missing required API keys:\n  %s\n\nSet these env vars or use --offline for stub mode",
			strings.Join(missing, "\n  "))
	}
	return cfg.Validate(mode)
}

// initEnrich validates configuration, then builds the backend chain and the
// store. jsonPath is the output file for the json store driver.
func initEnrich(ctx context.Context, offline bool, storeDriver, jsonPath string) (*enrichEnv, error) {
	mode := config.ModeEnrich
	if offline {
		mode = config.ModeOffline
	}
	if err := validateKeys(mode); err != nil {
		return nil, err
	}

	st, err := openStore(ctx, storeDriver, jsonPath)
	if err != nil {
		return nil, err
	}

	return &enrichEnv{
		Store:       st,
		Coordinator: newCoordinator(newBackend(cfg, offline), cfg.Completion.Timeout()),
	}, nil
}

// newBackend selects the completion backend named by the configuration.
func newBackend(c *config.Config, offline bool) completion.Backend {
	if offline {
		zap.L().Info("using offline stub backend")
		return &completion.StubBackend{}
	}

	var b completion.Backend
	switch c.Completion.Provider {
	case config.ProviderAnthropic:
		b = completion.NewAnthropic(anthropicpkg.NewClient(c.Anthropic.Key), c.Anthropic.Model)
	default:
		b = completion.NewOpenAI(completion.OpenAIConfig{
			APIKey:  c.OpenAI.Key,
			BaseURL: c.OpenAI.BaseURL,
			Model:   c.OpenAI.Model,
			Timeout: c.Completion.Timeout(),
		})
	}
	return completion.WithRateLimit(b, c.Completion.RequestsPerSecond)
}

// newCoordinator wires executor, lookup tasks, and enricher over a backend.
func newCoordinator(b completion.Backend, timeout time.Duration) *enrich.Coordinator {
	exec := lookup.NewExecutor(b, lookup.WithTimeout(timeout))
	return enrich.NewCoordinator(enrich.NewEnricher(lookup.NewTasks(exec)))
}

// openStore opens the configured store, with driver overriding the config
// when set.
func openStore(ctx context.Context, driver, jsonPath string) (store.Store, error) {
	opts := store.Options{
		Driver:      cfg.Store.Driver,
		Path:        cfg.Store.Path,
		DatabaseURL: cfg.Store.DatabaseURL,
	}
	if driver != "" {
		opts.Driver = driver
	}
	if cfg.Store.MaxConns > 0 || cfg.Store.MinConns > 0 {
		opts.Pool = &store.PoolConfig{MaxConns: cfg.Store.MaxConns, MinConns: cfg.Store.MinConns}
	}

	st, err := store.Open(ctx, opts, jsonPath)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	zap.L().Debug("store opened", zap.String("driver", opts.Driver))
	return st, nil
}

// newThroxyClient builds the Throxy client from configuration.
func newThroxyClient() throxy.Client {
	r := cfg.Throxy.Retry
	policy := resilience.PolicyFrom(r.MaxAttempts,
		time.Duration(r.InitialBackoffMs)*time.Millisecond,
		time.Duration(r.MaxBackoffMs)*time.Millisecond,
	)

	opts := []throxy.Option{
		throxy.WithRateLimit(cfg.Throxy.RequestsPerSecond),
		throxy.WithRetryPolicy(policy),
	}
	if cfg.Throxy.BaseURL != "" {
		opts = append(opts, throxy.WithBaseURL(cfg.Throxy.BaseURL))
	}
	return throxy.NewClient(cfg.Throxy.Key, opts...)
}

// outputPath joins name onto the configured output directory.
func outputPath(name string) string {
	return filepath.Join(cfg.Output.Dir, name)
}

// prepareResume loads the previous output from st when resume is set and
// splits unis into what still needs enriching and what is carried over.
func prepareResume(ctx context.Context, st store.Loader, unis []model.University, resume bool) (todo, carry []model.University, err error) {
	if !resume {
		return unis, nil, nil
	}
	previous, err := st.Load(ctx)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load previous results")
	}
	todo, carry = splitResume(unis, previous)
	return todo, carry, nil
}

// splitResume divides the work of a resumed run. todo holds the input
// universities not yet fully enriched, each starting from its saved record
// so values found earlier survive a failed lookup. carry holds every other
// saved record, enriched or not, and is written ahead of new results.
func splitResume(input, previous []model.University) (todo, carry []model.University) {
	saved := make(map[string]model.University, len(previous))
	for _, u := range previous {
		if _, ok := saved[u.Key()]; !ok {
			saved[u.Key()] = u
		}
	}

	pending := make(map[string]bool, len(input))
	for _, u := range input {
		prev, ok := saved[u.Key()]
		switch {
		case pending[u.Key()]:
			continue
		case !ok:
			todo = append(todo, u)
		case prev.Enriched():
			// carried as saved
		default:
			todo = append(todo, resumeFrom(prev, u))
		}
		pending[u.Key()] = true
	}

	done := make(map[string]bool, len(previous))
	for _, u := range previous {
		k := u.Key()
		if done[k] || (pending[k] && !saved[k].Enriched()) {
			continue
		}
		done[k] = true
		carry = append(carry, u)
	}

	zap.L().Info("resuming previous run",
		zap.Int("carried", len(carry)),
		zap.Int("remaining", len(todo)),
	)
	return todo, carry
}

// resumeFrom starts from the saved record and fills identity fields the
// saved record lacks from the current input.
func resumeFrom(prev, in model.University) model.University {
	out := prev.Clone()
	if out.Name == "" {
		out.Name = in.Name
	}
	if out.City == "" {
		out.City = in.City
	}
	if out.Country == "" {
		out.Country = in.Country
	}
	if out.CountryCode == "" {
		out.CountryCode = in.CountryCode
	}
	return out
}

// limitUniversities keeps at most n universities; n <= 0 keeps all.
func limitUniversities(unis []model.University, n int) []model.University {
	if n > 0 && n < len(unis) {
		return unis[:n]
	}
	return unis
}
