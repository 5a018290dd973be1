package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Catalog      CatalogConfig      `yaml:"catalog" mapstructure:"catalog"`
	Acquire      AcquireConfig      `yaml:"acquire" mapstructure:"acquire"`
	Dedup        DedupConfig        `yaml:"dedup" mapstructure:"dedup"`
	Enrich       EnrichConfig       `yaml:"enrich" mapstructure:"enrich"`
	Fetcher      FetcherConfig      `yaml:"fetcher" mapstructure:"fetcher"`
	MediaInsight MediaInsightConfig `yaml:"mediainsight" mapstructure:"mediainsight"`
	Anthropic    AnthropicConfig    `yaml:"anthropic" mapstructure:"anthropic"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CatalogConfig configures source catalog loading.
type CatalogConfig struct {
	// OverlayPath optionally points at a YAML file whose entries replace
	// or extend the embedded catalog.
	OverlayPath string `yaml:"overlay_path" mapstructure:"overlay_path"`
}

// AcquireConfig configures the fetch fan-out.
type AcquireConfig struct {
	MaxConcurrentFetches int `yaml:"max_concurrent_fetches" mapstructure:"max_concurrent_fetches"`
	TimeoutSecs          int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// DedupConfig configures near-duplicate detection.
type DedupConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	FingerprintWorkers  int     `yaml:"fingerprint_workers" mapstructure:"fingerprint_workers"`
}

// EnrichConfig configures the tagging and quality-assessment stage.
type EnrichConfig struct {
	Concurrency         int     `yaml:"concurrency" mapstructure:"concurrency"`
	MaxTags             int     `yaml:"max_tags" mapstructure:"max_tags"`
	TagThreshold        float64 `yaml:"tag_threshold" mapstructure:"tag_threshold"`
	NeutralQualityScore float64 `yaml:"neutral_quality_score" mapstructure:"neutral_quality_score"`
	DisableTagging      bool    `yaml:"disable_tagging" mapstructure:"disable_tagging"`
	DisableQuality      bool    `yaml:"disable_quality" mapstructure:"disable_quality"`
	DisableEmbeddings   bool    `yaml:"disable_embeddings" mapstructure:"disable_embeddings"`
}

// FetcherConfig configures the shared HTTP fetcher.
type FetcherConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// MediaInsightConfig holds the tagging/quality service settings.
type MediaInsightConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds settings for the metadata-based tagger.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ServerConfig configures the status API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ACQUIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "acquire.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("acquire.max_concurrent_fetches", 8)
	v.SetDefault("acquire.timeout_secs", 300)
	v.SetDefault("dedup.similarity_threshold", 0.9)
	v.SetDefault("dedup.fingerprint_workers", 4)
	v.SetDefault("enrich.concurrency", 5)
	v.SetDefault("enrich.max_tags", 10)
	v.SetDefault("enrich.tag_threshold", 0.3)
	v.SetDefault("enrich.neutral_quality_score", 0.85)
	v.SetDefault("enrich.disable_tagging", false)
	v.SetDefault("enrich.disable_quality", false)
	v.SetDefault("enrich.disable_embeddings", false)
	v.SetDefault("fetcher.user_agent", "acquire-cli/1.0")
	v.SetDefault("fetcher.timeout_secs", 30)
	v.SetDefault("fetcher.max_retries", 3)
	v.SetDefault("mediainsight.key", "")
	v.SetDefault("mediainsight.base_url", "https://api.mediainsight.dev/v1")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("catalog.overlay_path", "")

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
