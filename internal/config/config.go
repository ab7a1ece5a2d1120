// Package config loads and validates the extraction core's runtime
// configuration, a viper-env-plus-defaults shape generalized from one
// flat Config struct to the handful of ambient/domain sections this
// module's components need.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:",squash"`
	Database   DatabaseConfig   `mapstructure:",squash"`
	Redis      RedisConfig      `mapstructure:",squash"`
	Vision     VisionConfig     `mapstructure:",squash"`
	Validators ValidatorsConfig `mapstructure:",squash"`
	Processing ProcessingConfig `mapstructure:",squash"`
}

type ServerConfig struct {
	Port        string `mapstructure:"PORT" validate:"required"`
	Environment string `mapstructure:"APP_ENV" validate:"required,oneof=development production"`
}

type DatabaseConfig struct {
	URI      string `mapstructure:"MONGODB_URI" validate:"required"`
	Database string `mapstructure:"MONGODB_DATABASE" validate:"required"`
	Timeout  int    `mapstructure:"MONGODB_TIMEOUT_SECONDS" validate:"gte=1"`
}

type RedisConfig struct {
	URI      string        `mapstructure:"REDIS_URI"`
	Enabled  bool          `mapstructure:"REDIS_ENABLED"`
	CacheTTL time.Duration `mapstructure:"REDIS_CACHE_TTL"`
}

type VisionConfig struct {
	BaseURL       string        `mapstructure:"VISION_BASE_URL" validate:"required"`
	APIKey        string        `mapstructure:"VISION_API_KEY"`
	Model         string        `mapstructure:"VISION_MODEL" validate:"required"`
	Timeout       time.Duration `mapstructure:"VISION_TIMEOUT"`
	RatePerSecond float64       `mapstructure:"VISION_RATE_PER_SECOND" validate:"gt=0"`
	Burst         int           `mapstructure:"VISION_BURST" validate:"gte=1"`
}

type ValidatorsConfig struct {
	MusicBrainzBaseURL string `mapstructure:"MUSICBRAINZ_BASE_URL"`
	TMDBBaseURL        string `mapstructure:"TMDB_BASE_URL"`
	TMDBAPIKey         string `mapstructure:"TMDB_API_KEY"`
	DiscogsBaseURL     string `mapstructure:"DISCOGS_BASE_URL"`
	DiscogsToken       string `mapstructure:"DISCOGS_TOKEN"`
}

type ProcessingConfig struct {
	ConfidenceThreshold   float64       `mapstructure:"CONFIDENCE_THRESHOLD" validate:"gte=0,lte=1"`
	RefinementEnabled     bool          `mapstructure:"REFINEMENT_ENABLED"`
	KnowledgeBaseEnabled  bool          `mapstructure:"KNOWLEDGE_BASE_ENABLED"`
	EntityServiceEnabled  bool          `mapstructure:"ENTITY_SERVICE_ENABLED"`
	PhaseTimeout          time.Duration `mapstructure:"PHASE_TIMEOUT" validate:"gt=0"`
	BatchItemPause        time.Duration `mapstructure:"BATCH_ITEM_PAUSE"`
}

// Load reads configuration from config.yaml in ./config or the working
// directory (or env vars of the same name) over a set of sane defaults,
// then validates the result before returning it.
func Load() (*Config, error) {
	viper.SetDefault("PORT", "8090")
	viper.SetDefault("APP_ENV", "development")

	viper.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGODB_DATABASE", "extraction_core")
	viper.SetDefault("MONGODB_TIMEOUT_SECONDS", 10)

	viper.SetDefault("REDIS_URI", "redis://localhost:6379/0")
	viper.SetDefault("REDIS_ENABLED", true)
	viper.SetDefault("REDIS_CACHE_TTL", "10m")

	viper.SetDefault("VISION_BASE_URL", "http://localhost:11434/v1")
	viper.SetDefault("VISION_API_KEY", "")
	viper.SetDefault("VISION_MODEL", "llava")
	viper.SetDefault("VISION_TIMEOUT", "30s")
	viper.SetDefault("VISION_RATE_PER_SECOND", 2.0)
	viper.SetDefault("VISION_BURST", 4)

	viper.SetDefault("MUSICBRAINZ_BASE_URL", "https://musicbrainz.org/ws/2")
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("TMDB_API_KEY", "")
	viper.SetDefault("DISCOGS_BASE_URL", "https://api.discogs.com")
	viper.SetDefault("DISCOGS_TOKEN", "")

	viper.SetDefault("CONFIDENCE_THRESHOLD", 0.7)
	viper.SetDefault("REFINEMENT_ENABLED", true)
	viper.SetDefault("KNOWLEDGE_BASE_ENABLED", true)
	viper.SetDefault("ENTITY_SERVICE_ENABLED", true)
	viper.SetDefault("PHASE_TIMEOUT", "45s")
	viper.SetDefault("BATCH_ITEM_PAUSE", "500ms")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not required - env vars and defaults cover it.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
