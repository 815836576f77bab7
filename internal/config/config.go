// This file defines the configuration structure for the application.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "console" or "json"
	} `mapstructure:"log"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
	TMDB struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"tmdb"`
	IMDB struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"imdb"`
	Trakt struct {
		ClientID string `mapstructure:"client_id"`
		BaseURL  string `mapstructure:"base_url"`
	} `mapstructure:"trakt"`
	Providers struct {
		TimeoutSeconds int `mapstructure:"timeout_seconds"`
	} `mapstructure:"providers"`
	Cache struct {
		TTLMinutes int `mapstructure:"ttl_minutes"`
	} `mapstructure:"cache"`
	Export struct {
		Concurrency int `mapstructure:"concurrency"`
	} `mapstructure:"export"`
	Enrichment struct {
		BatchSize     int `mapstructure:"batch_size"`
		ItemDelayMS   int `mapstructure:"item_delay_ms"`
		SweepInterval int `mapstructure:"sweep_interval"` // minutes, 0 disables
	} `mapstructure:"enrichment"`
}

// ProviderTimeout is the deadline applied to every external provider call.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Providers.TimeoutSeconds) * time.Second
}

// ItemDelay is the pause between two items of an enrichment run.
func (c *Config) ItemDelay() time.Duration {
	return time.Duration(c.Enrichment.ItemDelayMS) * time.Millisecond
}

// CacheTTL is how long provider responses are kept.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// Default returns a Config populated only with default values.
func Default() *Config {
	v := newViper()
	var config Config
	// Defaults always decode.
	_ = v.Unmarshal(&config)
	return &config
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")
	v.AddConfigPath(".")

	// REEL_DATABASE_PATH overrides `database.path`, and so on.
	v.SetEnvPrefix("REEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("database.path", "./reel.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("imdb.base_url", "https://api.imdbapi.dev")
	v.SetDefault("trakt.client_id", "")
	v.SetDefault("trakt.base_url", "https://api.trakt.tv")
	v.SetDefault("providers.timeout_seconds", 8)
	v.SetDefault("cache.ttl_minutes", 360)
	v.SetDefault("export.concurrency", 8)
	v.SetDefault("enrichment.batch_size", 5)
	v.SetDefault("enrichment.item_delay_ms", 2000)
	v.SetDefault("enrichment.sweep_interval", 60)
	return v
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct. A .env file,
// when present, is loaded into the environment first.
func Load() (*Config, error) {
	// Missing .env is the common case.
	_ = godotenv.Load()

	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
