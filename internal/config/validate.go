package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validation modes.
const (
	// ModeEnrich needs a completion key and a Throxy key.
	ModeEnrich = "enrich"
	// ModeThroxy needs only a Throxy key.
	ModeThroxy = "throxy"
	// ModeOffline needs no keys.
	ModeOffline = "offline"
)

// MissingKeys lists the environment variables of every secret the mode needs
// but is not set.
func (c *Config) MissingKeys(mode string) []string {
	var missing []string
	if mode == ModeEnrich {
		switch c.Completion.Provider {
		case ProviderAnthropic:
			if c.Anthropic.Key == "" {
				missing = append(missing, "ANTHROPIC_API_KEY")
			}
		default:
			if c.OpenAI.Key == "" {
				missing = append(missing, "OPENAI_API_KEY")
			}
		}
	}
	if (mode == ModeEnrich || mode == ModeThroxy) && c.Throxy.Key == "" {
		missing = append(missing, "THROXY_API_KEY")
	}
	return missing
}

// Validate checks the configuration for the given mode and reports every
// problem in one error.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case ModeEnrich, ModeThroxy, ModeOffline:
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if missing := c.MissingKeys(mode); len(missing) > 0 {
		errs = append(errs, "missing required environment variables: "+strings.Join(missing, ", "))
	}

	switch c.Completion.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Sprintf("completion.provider must be %q or %q", ProviderOpenAI, ProviderAnthropic))
	}
	if c.Completion.TimeoutSecs < 0 {
		errs = append(errs, "completion.timeout_secs must be >= 0")
	}
	if c.Completion.RequestsPerSecond < 0 {
		errs = append(errs, "completion.requests_per_second must be >= 0")
	}
	if c.Batch.Size < 1 {
		errs = append(errs, "batch.size must be >= 1")
	}
	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 50 {
		errs = append(errs, "batch.concurrency must be between 1 and 50")
	}
	if c.Batch.SeedConcurrency < 1 || c.Batch.SeedConcurrency > 50 {
		errs = append(errs, "batch.seed_concurrency must be between 1 and 50")
	}
	if c.Batch.DelaySecs < 0 {
		errs = append(errs, "batch.delay_secs must be >= 0")
	}

	switch strings.ToLower(c.Store.Driver) {
	case "", "json":
	case "sqlite":
		if c.Store.Path == "" {
			errs = append(errs, "store.path is required for sqlite")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for postgres")
		}
	default:
		errs = append(errs, "store.driver must be json, sqlite, or postgres")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
