// Package config loads the application configuration once at startup.
// Everything downstream receives an explicit Config value; business logic
// never reads the environment directly.
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
	OpenStates OpenStatesConfig `yaml:"openstates" mapstructure:"openstates"`
	Geocode    GeocodeConfig    `yaml:"geocode" mapstructure:"geocode"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// OpenStatesConfig holds civic-data provider settings.
type OpenStatesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	PerPage int    `yaml:"per_page" mapstructure:"per_page"`
	Sort    string `yaml:"sort" mapstructure:"sort"`
}

// GeocodeConfig holds geocoding provider settings.
type GeocodeConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CacheConfig holds per-source TTLs and the optional durable cache path.
type CacheConfig struct {
	GeocodeTTLMins     int    `yaml:"geocode_ttl_mins" mapstructure:"geocode_ttl_mins"`
	BillsTTLMins       int    `yaml:"bills_ttl_mins" mapstructure:"bills_ttl_mins"`
	LegislatorsTTLMins int    `yaml:"legislators_ttl_mins" mapstructure:"legislators_ttl_mins"`
	Path               string `yaml:"path" mapstructure:"path"`
}

// GeocodeTTL returns the geocode TTL as a duration.
func (c CacheConfig) GeocodeTTL() time.Duration {
	return time.Duration(c.GeocodeTTLMins) * time.Minute
}

// BillsTTL returns the bills TTL as a duration.
func (c CacheConfig) BillsTTL() time.Duration {
	return time.Duration(c.BillsTTLMins) * time.Minute
}

// LegislatorsTTL returns the legislators TTL as a duration.
func (c CacheConfig) LegislatorsTTL() time.Duration {
	return time.Duration(c.LegislatorsTTLMins) * time.Minute
}

// FetchConfig controls the resilient HTTP client.
type FetchConfig struct {
	MaxRetries    int `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs   int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BackoffBaseMS int `yaml:"backoff_base_ms" mapstructure:"backoff_base_ms"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
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
	v.SetEnvPrefix("CIVIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key gets one so env-only overrides survive Unmarshal.
	v.SetDefault("openstates.key", "")
	v.SetDefault("openstates.base_url", "https://v3.openstates.org")
	v.SetDefault("openstates.per_page", 10)
	v.SetDefault("openstates.sort", "updated_desc")
	v.SetDefault("geocode.base_url", "https://api.zippopotam.us")
	v.SetDefault("cache.geocode_ttl_mins", 60)
	v.SetDefault("cache.bills_ttl_mins", 10)
	v.SetDefault("cache.legislators_ttl_mins", 10)
	v.SetDefault("cache.path", "")
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.backoff_base_ms", 1000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
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
