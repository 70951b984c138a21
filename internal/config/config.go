package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Apify      ApifyConfig      `yaml:"apify" mapstructure:"apify"`
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Crawl      CrawlConfig      `yaml:"crawl" mapstructure:"crawl"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds primary LLM provider settings. The primary
// provider is serialized to one in-flight call process-wide; PacingMS is
// the fixed delay enforced before each call.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	PacingMS  int    `yaml:"pacing_ms" mapstructure:"pacing_ms"`
}

// PacingInterval returns the configured inter-call delay.
func (c AnthropicConfig) PacingInterval() time.Duration {
	return time.Duration(c.PacingMS) * time.Millisecond
}

// PerplexityConfig holds the secondary (fallback) LLM provider settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// ApifyConfig holds actor-platform credentials and actor IDs for the
// batch search, website crawl, and network-profile scrape capabilities.
type ApifyConfig struct {
	Token           string `yaml:"token" mapstructure:"token"`
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	SearchActor     string `yaml:"search_actor" mapstructure:"search_actor"`
	CrawlActor      string `yaml:"crawl_actor" mapstructure:"crawl_actor"`
	ProfileActor    string `yaml:"profile_actor" mapstructure:"profile_actor"`
	PollIntervalSec int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
}

// DiscoveryConfig configures the candidate discovery stage.
type DiscoveryConfig struct {
	Limit int `yaml:"limit" mapstructure:"limit"`
}

// CrawlConfig bounds the per-company website crawl.
type CrawlConfig struct {
	MaxPages       int `yaml:"max_pages" mapstructure:"max_pages"`
	MaxDepth       int `yaml:"max_depth" mapstructure:"max_depth"`
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// PipelineConfig configures orchestration behavior.
type PipelineConfig struct {
	MaxConcurrentAnalyses int `yaml:"max_concurrent_analyses" mapstructure:"max_concurrent_analyses"`
}

// CacheConfig configures the completed-run result cache.
type CacheConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`
	TTLMinutes int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// TTL returns the cache time-to-live.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// ServerConfig configures the research stream server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and the environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RESEARCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.pacing_ms", 500)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("apify.base_url", "https://api.apify.com/v2")
	v.SetDefault("apify.search_actor", "apify~google-search-scraper")
	v.SetDefault("apify.crawl_actor", "apify~website-content-crawler")
	v.SetDefault("apify.profile_actor", "dev_fusion~linkedin-company-scraper")
	v.SetDefault("apify.poll_interval_secs", 2)
	v.SetDefault("discovery.limit", 10)
	v.SetDefault("crawl.max_pages", 5)
	v.SetDefault("crawl.max_depth", 1)
	v.SetDefault("crawl.max_concurrency", 5)
	v.SetDefault("pipeline.max_concurrent_analyses", 4)
	v.SetDefault("cache.path", "researcher.db")
	v.SetDefault("cache.ttl_minutes", 30)

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
