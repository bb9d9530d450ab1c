package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default configuration",
			envVars: map[string]string{
				"ENVIRONMENT": "development",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "development", cfg.Environment)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8029, cfg.Server.Port)
				assert.Equal(t, 20*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, ResourceSourceFile, cfg.Resources.Source)
				assert.Equal(t, 3, cfg.Pipeline.NumSample)
				assert.Equal(t, 0.08, cfg.Pipeline.SoftmaxTemperature)
				assert.Equal(t, 10, cfg.Pipeline.TopK)
				assert.Equal(t, 4, cfg.Pipeline.Workers)
				assert.Nil(t, cfg.Pipeline.SamplerSeed)
				assert.Equal(t, []string{"news", "movies", "books", "weather", "games"}, cfg.Pipeline.RestrictedTopics)
				assert.Equal(t, 0.8, cfg.Pipeline.DeratingFactor)
				assert.Len(t, cfg.Pipeline.UnanswerablePhrases, 3)
				assert.Equal(t, 32, cfg.Encoder.BatchSize)
				assert.Equal(t, 10*time.Minute, cfg.Encoder.CacheTTL)
			},
		},
		{
			name: "pipeline overrides",
			envVars: map[string]string{
				"NUM_SAMPLE":            "5",
				"SOFTMAX_TEMPERATURE":   "0.5",
				"RANKING_TOP_K":         "20",
				"PIPELINE_WORKERS":      "8",
				"SAMPLER_SEED":          "31415",
				"RESTRICTED_TOPICS":     "news | sports",
				"TOPIC_DERATING_FACTOR": "0.5",
				"UNANSWERABLE_PHRASES":  "tell me more, please|go on",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 5, cfg.Pipeline.NumSample)
				assert.Equal(t, 0.5, cfg.Pipeline.SoftmaxTemperature)
				assert.Equal(t, 20, cfg.Pipeline.TopK)
				assert.Equal(t, 8, cfg.Pipeline.Workers)
				require.NotNil(t, cfg.Pipeline.SamplerSeed)
				assert.Equal(t, uint64(31415), *cfg.Pipeline.SamplerSeed)
				assert.Equal(t, []string{"news", "sports"}, cfg.Pipeline.RestrictedTopics)
				assert.Equal(t, 0.5, cfg.Pipeline.DeratingFactor)
				assert.Equal(t, []string{"tell me more, please", "go on"}, cfg.Pipeline.UnanswerablePhrases)
			},
		},
		{
			name: "postgres resource source",
			envVars: map[string]string{
				"RESOURCE_SOURCE": "postgres",
				"DATABASE_URL":    "postgres://u:p@db.internal:6543/index?sslmode=disable",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ResourceSourcePostgres, cfg.Resources.Source)
				assert.Equal(t, "host=db.internal port=6543 database=index", cfg.Database.LogString())
			},
		},
		{
			name: "observability configuration",
			envVars: map[string]string{
				"LOG_LEVEL":           "debug",
				"LOG_FORMAT":          "console",
				"LOG_FILE":            "/var/log/convert.log",
				"TRACING_ENABLED":     "true",
				"TRACING_ENDPOINT":    "jaeger:4318",
				"TRACING_SAMPLE_RATE": "0.5",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Observability.LogLevel)
				assert.Equal(t, "console", cfg.Observability.LogFormat)
				assert.Equal(t, "/var/log/convert.log", cfg.Observability.LogFile)
				assert.True(t, cfg.Observability.TracingEnabled)
				assert.Equal(t, "jaeger:4318", cfg.Observability.TracingEndpoint)
				assert.Equal(t, 0.5, cfg.Observability.TracingSampleRate)
			},
		},
		{
			name: "PORT env var takes precedence over SERVER_PORT",
			envVars: map[string]string{
				"PORT":        "9443",
				"SERVER_PORT": "9000",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9443, cfg.Server.Port)
			},
		},
		{
			name:    "malformed sampler seed",
			envVars: map[string]string{"SAMPLER_SEED": "pi"},
			wantErr: true,
		},
		{
			name:    "unknown resource source",
			envVars: map[string]string{"RESOURCE_SOURCE": "s3"},
			wantErr: true,
		},
		{
			name:    "non-positive sample size",
			envVars: map[string]string{"NUM_SAMPLE": "0"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := New(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Environment: "development",
		Resources: ResourcesConfig{
			Source:         ResourceSourceFile,
			IndexPath:      "index.json",
			ConfidencePath: "confidences.json",
			BannedDir:      "banned",
		},
		Pipeline: PipelineConfig{
			NumSample:          3,
			SoftmaxTemperature: 0.08,
			TopK:               10,
			Workers:            4,
			DeratingFactor:     0.8,
		},
		Encoder: EncoderConfig{
			URL:       "http://encoder:8080/encode",
			BatchSize: 32,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "valid file config", mutate: func(*Config) {}},
		{
			name:   "missing index path",
			mutate: func(c *Config) { c.Resources.IndexPath = "" },
			errMsg: "DATABASE_PATH is required",
		},
		{
			name:   "postgres without database",
			mutate: func(c *Config) { c.Resources.Source = ResourceSourcePostgres },
			errMsg: "database configuration required",
		},
		{
			name: "postgres with host",
			mutate: func(c *Config) {
				c.Resources.Source = ResourceSourcePostgres
				c.Database.Host = "localhost"
			},
		},
		{
			name:   "missing banned dir",
			mutate: func(c *Config) { c.Resources.BannedDir = "" },
			errMsg: "BANNED_DIR is required",
		},
		{
			name:   "zero temperature",
			mutate: func(c *Config) { c.Pipeline.SoftmaxTemperature = 0 },
			errMsg: "SOFTMAX_TEMPERATURE",
		},
		{
			name:   "zero top k",
			mutate: func(c *Config) { c.Pipeline.TopK = 0 },
			errMsg: "RANKING_TOP_K",
		},
		{
			name:   "zero workers",
			mutate: func(c *Config) { c.Pipeline.Workers = 0 },
			errMsg: "PIPELINE_WORKERS",
		},
		{
			name:   "derating above one",
			mutate: func(c *Config) { c.Pipeline.DeratingFactor = 1.2 },
			errMsg: "TOPIC_DERATING_FACTOR",
		},
		{
			name:   "missing encoder url",
			mutate: func(c *Config) { c.Encoder.URL = "" },
			errMsg: "ENCODER_URL is required",
		},
		{
			name:   "zero batch size",
			mutate: func(c *Config) { c.Encoder.BatchSize = 0 },
			errMsg: "ENCODER_BATCH_SIZE",
		},
		{
			name:   "missing log level",
			mutate: func(c *Config) { c.Observability.LogLevel = "" },
			errMsg: "log level is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		want        bool
	}{
		{"production", "production", true},
		{"prod", "prod", true},
		{"development", "development", false},
		{"staging", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.environment}
			assert.Equal(t, tt.want, cfg.IsProduction())
			assert.Equal(t, tt.environment == "development", cfg.IsDevelopment())
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		Database: "testdb",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, cfg.DSN())
	assert.Equal(t, "host=localhost port=5432 database=testdb", cfg.LogString())

	withURL := DatabaseConfig{ConnectionString: "postgres://u:p@h/db"}
	assert.Equal(t, "postgres://u:p@h/db", withURL.DSN())
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "0.0.0.0", Port: 8029}
	assert.Equal(t, "0.0.0.0:8029", cfg.Address())
}

func TestGetEnvAsList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"single", "news", []string{"news"}},
		{"pipe separated", "news|books", []string{"news", "books"}},
		{"trims and skips blanks", " news || books ", []string{"news", "books"}},
		{"empty uses default", "", []string{"default"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				os.Setenv("TEST_LIST", tt.value)
			}
			assert.Equal(t, tt.want, getEnvAsList("TEST_LIST", []string{"default"}))
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue int
		want         int
	}{
		{"valid int", "42", 10, 42},
		{"empty value", "", 10, 10},
		{"invalid int", "not-a-number", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				os.Setenv("TEST_INT", tt.value)
			}
			assert.Equal(t, tt.want, getEnvAsInt("TEST_INT", tt.defaultValue))
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, getEnvAsDuration("TEST_DURATION", time.Second))

	os.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_DURATION", time.Second))
}
