package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
		wantErr  bool
	}{
		{
			name: "default configuration",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8090", cfg.Server.Port)
				assert.Equal(t, "development", cfg.Server.Environment)
				assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
				assert.Equal(t, "extraction_core", cfg.Database.Database)
				assert.Equal(t, 10, cfg.Database.Timeout)
				assert.True(t, cfg.Redis.Enabled)
				assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
				assert.Equal(t, "llava", cfg.Vision.Model)
				assert.Equal(t, 30*time.Second, cfg.Vision.Timeout)
				assert.Equal(t, 2.0, cfg.Vision.RatePerSecond)
				assert.Equal(t, 4, cfg.Vision.Burst)
				assert.Equal(t, 0.7, cfg.Processing.ConfidenceThreshold)
				assert.True(t, cfg.Processing.RefinementEnabled)
				assert.True(t, cfg.Processing.KnowledgeBaseEnabled)
				assert.True(t, cfg.Processing.EntityServiceEnabled)
				assert.Equal(t, 45*time.Second, cfg.Processing.PhaseTimeout)
				assert.Equal(t, 500*time.Millisecond, cfg.Processing.BatchItemPause)
			},
		},
		{
			name: "environment variables override",
			envVars: map[string]string{
				"PORT":                 "9000",
				"APP_ENV":              "production",
				"MONGODB_URI":          "mongodb://prod:27017",
				"MONGODB_DATABASE":     "prod_extraction",
				"REDIS_ENABLED":        "false",
				"VISION_MODEL":         "gpt-4-vision",
				"VISION_API_KEY":       "secret-key",
				"CONFIDENCE_THRESHOLD": "0.85",
				"PHASE_TIMEOUT":        "1m",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "9000", cfg.Server.Port)
				assert.Equal(t, "production", cfg.Server.Environment)
				assert.Equal(t, "mongodb://prod:27017", cfg.Database.URI)
				assert.Equal(t, "prod_extraction", cfg.Database.Database)
				assert.False(t, cfg.Redis.Enabled)
				assert.Equal(t, "gpt-4-vision", cfg.Vision.Model)
				assert.Equal(t, "secret-key", cfg.Vision.APIKey)
				assert.Equal(t, 0.85, cfg.Processing.ConfidenceThreshold)
				assert.Equal(t, 1*time.Minute, cfg.Processing.PhaseTimeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}
			defer func() {
				for key := range tt.envVars {
					os.Unsetenv(key)
				}
			}()

			cfg, err := Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestConfigIsDevelopment(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Environment = "development"
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestConfigIsProduction(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Environment = "production"
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

func TestConfigStaging(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Environment = "staging"
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}
