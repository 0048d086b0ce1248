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
	Places   PlacesConfig   `yaml:"places" mapstructure:"places"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// PlacesConfig holds places-provider credentials and endpoint.
type PlacesConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SearchConfig configures venue search and radius expansion.
type SearchConfig struct {
	RadiusSteps       []int    `yaml:"radius_steps" mapstructure:"radius_steps"`
	CategoryQueries   []string `yaml:"category_queries" mapstructure:"category_queries"`
	RateLimit         float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	MinNightlifeScore int      `yaml:"min_nightlife_score" mapstructure:"min_nightlife_score"`
}

// CacheConfig configures the classification metadata cache.
type CacheConfig struct {
	TTLDays            int `yaml:"ttl_days" mapstructure:"ttl_days"`
	BatchSize          int `yaml:"batch_size" mapstructure:"batch_size"`
	BatchPauseMS       int `yaml:"batch_pause_ms" mapstructure:"batch_pause_ms"`
	MaxDetailsAttempts int `yaml:"max_details_attempts" mapstructure:"max_details_attempts"`
	BlockFlagThreshold int `yaml:"block_flag_threshold" mapstructure:"block_flag_threshold"`
}

// TTL returns the cache time-to-live as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// BatchPause returns the inter-batch pause as a duration.
func (c CacheConfig) BatchPause() time.Duration {
	return time.Duration(c.BatchPauseMS) * time.Millisecond
}

// RegistryConfig points at the verified-venue fixture. Empty path uses the
// built-in overrides.
type RegistryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// ServerConfig configures the HTTP server.
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
	v.SetEnvPrefix("VENUES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("places.api_key", "")
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("registry.path", "")
	v.SetDefault("search.radius_steps", []int{2000, 5000, 10000, 20000})
	v.SetDefault("search.category_queries", []string{"bar", "balada", "restaurante"})
	v.SetDefault("search.rate_limit", 10)
	v.SetDefault("search.min_nightlife_score", 40)
	v.SetDefault("cache.ttl_days", 7)
	v.SetDefault("cache.batch_size", 5)
	v.SetDefault("cache.batch_pause_ms", 100)
	v.SetDefault("cache.max_details_attempts", 3)
	v.SetDefault("cache.block_flag_threshold", 5)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "venues.db")
	v.SetDefault("server.port", 8080)
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
