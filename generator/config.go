package generator

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/alovak/cardflow-bingen/internal/binlookup"
)

// Config is a configuration for the generator application
type Config struct {
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LookupBaseURL is the BIN lookup endpoint; requests go to <LookupBaseURL>/<bin>/.
	LookupBaseURL string `mapstructure:"BIN_LOOKUP_URL"`
	// LookupTimeout bounds a single lookup; on expiry the fallback record is used.
	LookupTimeout time.Duration `mapstructure:"BIN_LOOKUP_TIMEOUT"`
	// LookupConcurrency caps in-flight lookups per batch. 1 keeps them sequential.
	LookupConcurrency int `mapstructure:"BIN_LOOKUP_CONCURRENCY"`
	// ExpiryTZ is an IANA timezone name used to decide the current expiry year.
	ExpiryTZ string `mapstructure:"EXPIRY_TZ"`
	// RandomSeed makes batches reproducible when non-zero; 0 uses crypto/rand.
	RandomSeed     int64    `mapstructure:"RANDOM_SEED"`
	AllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:          "localhost:9090",
		LogLevel:          "info",
		LookupBaseURL:     binlookup.DefaultBaseURL,
		LookupTimeout:     10 * time.Second,
		LookupConcurrency: 1,
		ExpiryTZ:          "UTC",
		AllowedOrigins:    []string{"*"},
	}
}

// LoadConfig reads an optional .env file from path, then lets environment
// variables override it. Unset keys keep DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_ADDR", def.HTTPAddr)
	v.SetDefault("LOG_LEVEL", def.LogLevel)
	v.SetDefault("BIN_LOOKUP_URL", def.LookupBaseURL)
	v.SetDefault("BIN_LOOKUP_TIMEOUT", def.LookupTimeout)
	v.SetDefault("BIN_LOOKUP_CONCURRENCY", def.LookupConcurrency)
	v.SetDefault("EXPIRY_TZ", def.ExpiryTZ)
	v.SetDefault("RANDOM_SEED", 0)
	v.SetDefault("CORS_ALLOWED_ORIGINS", def.AllowedOrigins)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if cfg.LookupConcurrency < 1 {
		cfg.LookupConcurrency = 1
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = def.LookupTimeout
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = def.AllowedOrigins
	}
	if _, err := time.LoadLocation(cfg.ExpiryTZ); err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_TZ %q: %w", cfg.ExpiryTZ, err)
	}
	return cfg, nil
}
