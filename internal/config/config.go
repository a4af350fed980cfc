// Package config loads uni-enrich settings from config.yaml, .env, and the
// environment, and sets up the global logger.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Completion CompletionConfig `yaml:"completion" mapstructure:"completion"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Throxy     ThroxyConfig     `yaml:"throxy" mapstructure:"throxy"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Input      InputConfig      `yaml:"input" mapstructure:"input"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// Completion providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// CompletionConfig selects and tunes the LLM backend used for lookups.
type CompletionConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// Timeout returns the per-lookup timeout.
func (c CompletionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ThroxyConfig holds Throxy web-scraping API settings.
type ThroxyConfig struct {
	Key               string      `yaml:"key" mapstructure:"key"`
	BaseURL           string      `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSecond float64     `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Retry             RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig tunes retries for helper API calls.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// BatchConfig configures bulk enrichment.
type BatchConfig struct {
	Size            int `yaml:"size" mapstructure:"size"`
	Concurrency     int `yaml:"concurrency" mapstructure:"concurrency"`
	DelaySecs       int `yaml:"delay_secs" mapstructure:"delay_secs"`
	SeedConcurrency int `yaml:"seed_concurrency" mapstructure:"seed_concurrency"`
}

// Delay returns the pause between batches.
func (c BatchConfig) Delay() time.Duration {
	return time.Duration(c.DelaySecs) * time.Second
}

// InputConfig locates the university dataset.
type InputConfig struct {
	CSVPath   string   `yaml:"csv_path" mapstructure:"csv_path"`
	Countries []string `yaml:"countries" mapstructure:"countries"`
}

// OutputConfig locates result files.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// envAliases binds the bare variable names used by existing deployments
// alongside the prefixed ones. Earlier names win.
var envAliases = map[string][]string{
	"openai.key":    {"UNIENRICH_OPENAI_KEY", "OPENAI_API_KEY"},
	"anthropic.key": {"UNIENRICH_ANTHROPIC_KEY", "ANTHROPIC_API_KEY"},
	"throxy.key":    {"UNIENRICH_THROXY_KEY", "THROXY_API_KEY"},
	"store.database_url": {
		"UNIENRICH_STORE_DATABASE_URL", "DATABASE_URL",
	},
}

// Load reads .env, then configuration from file and environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("UNIENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("completion.provider", ProviderOpenAI)
	v.SetDefault("completion.timeout_secs", 60)
	v.SetDefault("completion.requests_per_second", 0)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("throxy.base_url", "https://app.throxy.ai/api/tools/web-scraping")
	v.SetDefault("throxy.requests_per_second", 2)
	v.SetDefault("throxy.retry.max_attempts", 3)
	v.SetDefault("throxy.retry.initial_backoff_ms", 500)
	v.SetDefault("throxy.retry.max_backoff_ms", 30000)
	v.SetDefault("batch.size", 20)
	v.SetDefault("batch.concurrency", 5)
	v.SetDefault("batch.delay_secs", 30)
	v.SetDefault("batch.seed_concurrency", 3)
	v.SetDefault("input.csv_path", "data/world-universities.csv")
	v.SetDefault("output.dir", "output")
	v.SetDefault("store.driver", "json")
	v.SetDefault("store.path", "output/universities.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
