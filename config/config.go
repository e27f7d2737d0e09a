package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Collector CollectorConfig
	Fetcher   FetcherConfig
	Cache     CacheConfig
	Detector  DetectorConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CollectorConfig holds banner collection endpoint configuration
type CollectorConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// FetcherConfig holds policy page fetcher configuration
type FetcherConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// DetectorConfig holds banner detection tuning
type DetectorConfig struct {
	KnownSelectorThreshold   float64       `mapstructure:"known_selector_threshold"`
	PositionContentThreshold float64       `mapstructure:"position_content_threshold"`
	DedupTextDelta           int           `mapstructure:"dedup_text_delta"`
	SubmitTimeout            time.Duration `mapstructure:"submit_timeout"`
	MaxPendingSubmissions    int           `mapstructure:"max_pending_submissions"`
	RetryInterval            time.Duration `mapstructure:"retry_interval"`
	Debug                    bool          `mapstructure:"debug"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/cookielens/")

	v.SetEnvPrefix("COOKIELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	// Collector defaults
	v.SetDefault("collector.endpoint", "http://localhost:3001/api/banners")
	v.SetDefault("collector.api_key", "")
	v.SetDefault("collector.timeout", "10s")

	// Fetcher defaults
	v.SetDefault("fetcher.user_agent", "CookieLens/1.0")
	v.SetDefault("fetcher.timeout", "30s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Detector defaults
	v.SetDefault("detector.known_selector_threshold", 2.0)
	v.SetDefault("detector.position_content_threshold", 5.0)
	v.SetDefault("detector.dedup_text_delta", 100)
	v.SetDefault("detector.submit_timeout", "10s")
	v.SetDefault("detector.max_pending_submissions", 20)
	v.SetDefault("detector.retry_interval", "5m")
	v.SetDefault("detector.debug", false)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Collector.Endpoint == "" {
		return fmt.Errorf("collector endpoint is required (set COOKIELENS_COLLECTOR_ENDPOINT)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Detector.KnownSelectorThreshold <= 0 || config.Detector.PositionContentThreshold <= 0 {
		return fmt.Errorf("detector thresholds must be positive")
	}

	return nil
}
