package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// validDefaults returns a Config with defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Completion.Provider = ProviderOpenAI
	cfg.Completion.TimeoutSecs = 60
	cfg.Batch.Size = 20
	cfg.Batch.Concurrency = 5
	cfg.Batch.SeedConcurrency = 3
	cfg.Batch.DelaySecs = 30
	cfg.Store.Driver = "json"
	return cfg
}

func TestValidateEnrich_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.OpenAI.Key = "sk-openai"
	cfg.Throxy.Key = "thx"

	assert.NoError(t, cfg.Validate(ModeEnrich))
}

func TestValidateEnrich_ListsEveryMissingKey(t *testing.T) {
	cfg := validDefaults()

	assert.Equal(t, []string{"OPENAI_API_KEY", "THROXY_API_KEY"}, cfg.MissingKeys(ModeEnrich))

	err := cfg.Validate(ModeEnrich)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY, THROXY_API_KEY")
}

func TestValidateEnrich_AnthropicProvider(t *testing.T) {
	cfg := validDefaults()
	cfg.Completion.Provider = ProviderAnthropic
	cfg.OpenAI.Key = "ignored"
	cfg.Throxy.Key = "thx"

	assert.Equal(t, []string{"ANTHROPIC_API_KEY"}, cfg.MissingKeys(ModeEnrich))

	cfg.Anthropic.Key = "sk-ant"
	assert.NoError(t, cfg.Validate(ModeEnrich))
}

func TestValidateThroxyOnly(t *testing.T) {
	cfg := validDefaults()

	assert.Equal(t, []string{"THROXY_API_KEY"}, cfg.MissingKeys(ModeThroxy))

	cfg.Throxy.Key = "thx"
	assert.NoError(t, cfg.Validate(ModeThroxy))
}

func TestValidateOfflineNeedsNoKeys(t *testing.T) {
	cfg := validDefaults()

	assert.Empty(t, cfg.MissingKeys(ModeOffline))
	assert.NoError(t, cfg.Validate(ModeOffline))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateUnknownProvider(t *testing.T) {
	cfg := validDefaults()
	cfg.Completion.Provider = "gemini"

	err := cfg.Validate(ModeOffline)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "completion.provider")
}

func TestValidateBatchBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.Concurrency = 0
	err := cfg.Validate(ModeOffline)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "batch.concurrency must be between 1 and 50")

	cfg.Batch.Concurrency = 51
	err = cfg.Validate(ModeOffline)
	assert.Error(t, err)

	cfg.Batch.Concurrency = 50
	cfg.Batch.Size = 0
	err = cfg.Validate(ModeOffline)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "batch.size must be >= 1")

	cfg.Batch.Size = 1
	cfg.Batch.DelaySecs = -1
	err = cfg.Validate(ModeOffline)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "batch.delay_secs")

	cfg.Batch.DelaySecs = 0
	assert.NoError(t, cfg.Validate(ModeOffline))
}

func TestValidateStoreDriver(t *testing.T) {
	cfg := validDefaults()

	cfg.Store.Driver = "postgres"
	err := cfg.Validate(ModeOffline)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/uni"
	assert.NoError(t, cfg.Validate(ModeOffline))

	cfg.Store.Driver = "sqlite"
	err = cfg.Validate(ModeOffline)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.path is required")

	cfg.Store.Driver = "mongo"
	err = cfg.Validate(ModeOffline)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validDefaults()
	cfg.Batch.Size = 0
	cfg.Completion.TimeoutSecs = -1

	err := cfg.Validate(ModeEnrich)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Contains(t, err.Error(), "batch.size")
	assert.Contains(t, err.Error(), "completion.timeout_secs")
}
