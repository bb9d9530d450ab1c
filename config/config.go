package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Resource sources
const (
	ResourceSourceFile     = "file"
	ResourceSourcePostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Resources     ResourcesConfig
	Pipeline      PipelineConfig
	Encoder       EncoderConfig
	Observability ObservabilityConfig
	Environment   string
	Version       string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds PostgreSQL configuration for the postgres resource source.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// ResourcesConfig locates the response index, the confidence sample and the denylists
type ResourcesConfig struct {
	Source         string // file or postgres
	IndexPath      string // JSON {"texts": [...], "vectors": [[...]]}
	ConfidencePath string // JSON array of raw scores
	BannedDir      string // directory of banned_*.json lists
}

// PipelineConfig holds the retrieval pipeline settings
type PipelineConfig struct {
	NumSample           int
	SoftmaxTemperature  float64
	TopK                int
	Workers             int
	SamplerSeed         *uint64 // nil means nondeterministic
	RestrictedTopics    []string
	DeratingFactor      float64
	UnanswerablePhrases []string
	GuardThreshold      float64
}

// EncoderConfig holds the context encoder client configuration
type EncoderConfig struct {
	URL       string
	Timeout   time.Duration
	BatchSize int
	CacheTTL  time.Duration // zero disables the cache
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel          string
	LogFormat         string // json or console
	LogFile           string
	TracingEnabled    bool
	TracingEndpoint   string
	TracingSampleRate float64
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	seed, err := getEnvAsUint64Ptr("SAMPLER_SEED")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Version:     getEnv("SERVICE_VERSION", "dev"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 20*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*", "https://*"}),
		},
		Database: LoadDatabaseConfig(),
		Resources: ResourcesConfig{
			Source:         getEnv("RESOURCE_SOURCE", ResourceSourceFile),
			IndexPath:      getEnv("DATABASE_PATH", "data/response_index.json"),
			ConfidencePath: getEnv("CONFIDENCE_PATH", "data/confidences.json"),
			BannedDir:      getEnv("BANNED_DIR", "data/banned"),
		},
		Pipeline: PipelineConfig{
			NumSample:           getEnvAsInt("NUM_SAMPLE", 3),
			SoftmaxTemperature:  getEnvAsFloat("SOFTMAX_TEMPERATURE", 0.08),
			TopK:                getEnvAsInt("RANKING_TOP_K", 10),
			Workers:             getEnvAsInt("PIPELINE_WORKERS", 4),
			SamplerSeed:         seed,
			RestrictedTopics:    getEnvAsList("RESTRICTED_TOPICS", []string{"news", "movies", "books", "weather", "games"}),
			DeratingFactor:      getEnvAsFloat("TOPIC_DERATING_FACTOR", 0.8),
			UnanswerablePhrases: getEnvAsList("UNANSWERABLE_PHRASES", []string{"let's talk about", "what else can you do?", "let's talk about books"}),
			GuardThreshold:      getEnvAsFloat("GUARD_THRESHOLD", 0.9),
		},
		Encoder: EncoderConfig{
			URL:       getEnv("ENCODER_URL", "http://localhost:8128/encode"),
			Timeout:   getEnvAsDuration("ENCODER_TIMEOUT", 10*time.Second),
			BatchSize: getEnvAsInt("ENCODER_BATCH_SIZE", 32),
			CacheTTL:  getEnvAsDuration("ENCODER_CACHE_TTL", 10*time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			LogFormat:         getEnv("LOG_FORMAT", "json"),
			LogFile:           getEnv("LOG_FILE", ""),
			TracingEnabled:    getEnvAsBool("TRACING_ENABLED", false),
			TracingEndpoint:   getEnv("TRACING_ENDPOINT", ""),
			TracingSampleRate: getEnvAsFloat("TRACING_SAMPLE_RATE", 0.1),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	switch c.Resources.Source {
	case ResourceSourceFile:
		if c.Resources.IndexPath == "" {
			return fmt.Errorf("DATABASE_PATH is required for the file resource source")
		}
		if c.Resources.ConfidencePath == "" {
			return fmt.Errorf("CONFIDENCE_PATH is required for the file resource source")
		}
	case ResourceSourcePostgres:
		if c.Database.ConnectionString == "" && c.Database.Host == "" {
			return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
		}
	default:
		return fmt.Errorf("unknown resource source %q", c.Resources.Source)
	}
	if c.Resources.BannedDir == "" {
		return fmt.Errorf("BANNED_DIR is required")
	}

	p := c.Pipeline
	if p.NumSample <= 0 {
		return fmt.Errorf("NUM_SAMPLE must be positive")
	}
	if p.SoftmaxTemperature <= 0 {
		return fmt.Errorf("SOFTMAX_TEMPERATURE must be positive")
	}
	if p.TopK <= 0 {
		return fmt.Errorf("RANKING_TOP_K must be positive")
	}
	if p.Workers <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be positive")
	}
	if p.DeratingFactor <= 0 || p.DeratingFactor > 1 {
		return fmt.Errorf("TOPIC_DERATING_FACTOR must be in (0, 1]")
	}

	if c.Encoder.URL == "" {
		return fmt.Errorf("ENCODER_URL is required")
	}
	if c.Encoder.BatchSize <= 0 {
		return fmt.Errorf("ENCODER_BATCH_SIZE must be positive")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password).
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, strings.TrimPrefix(u.Path, "/"))
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadDatabaseConfig reads DATABASE_URL, or the DB_* variables when it is unset.
func LoadDatabaseConfig() DatabaseConfig {
	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		return DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "dream"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "convert_reddit"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8029)
func getPort() int {
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if value := os.Getenv(key); value != "" {
			if p, err := strconv.Atoi(value); err == nil {
				return p
			}
		}
	}
	return 8029
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a '|'-separated value, so entries may contain commas.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, "|") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// getEnvAsUint64Ptr returns nil when the variable is unset.
func getEnvAsUint64Ptr(key string) (*uint64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil, nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, valueStr, err)
	}
	return &value, nil
}
