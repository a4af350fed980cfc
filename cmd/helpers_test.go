package main

import (
	"testing"

	"github.com/sells-group/uni-enrich/internal/config"
	"github.com/sells-group/uni-enrich/internal/model"
)

// testConfig installs a minimal configuration writing into a temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.Completion.Provider = config.ProviderOpenAI
	c.Batch = config.BatchConfig{Size: 20, Concurrency: 5, SeedConcurrency: 3}
	c.Output.Dir = t.TempDir()
	c.Store.Driver = "json"
	c.Throxy.Retry.MaxAttempts = 1
	c.Log = config.LogConfig{Level: "info", Format: "json"}

	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
	return c
}

func ptr[T any](v T) *T { return &v }

func enrichedUniversity(name, domain string, population int) model.University {
	return model.University{
		Name:              name,
		Domain:            domain,
		LinkedInURL:       ptr("https://www.linkedin.com/school/" + domain + "/"),
		StudentPopulation: ptr(population),
		Type:              ptr(model.UniversityTypePublic),
		LanguageCentre:    ptr(true),
	}
}
