package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ruthenian8/dream/config"
	"github.com/ruthenian8/dream/internal/encoder"
	"github.com/ruthenian8/dream/internal/observability"
	"github.com/ruthenian8/dream/internal/safety"
	"github.com/ruthenian8/dream/internal/sampling"
	"github.com/ruthenian8/dream/models"
	"github.com/ruthenian8/dream/repositories"
	"github.com/ruthenian8/dream/repositories/filesystem"
	"github.com/ruthenian8/dream/repositories/postgres"
	"github.com/ruthenian8/dream/services/convert"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB // nil unless resources come from postgres
	Logger *zap.Logger

	// Pipeline
	Resources *models.Resources
	Encoder   encoder.Encoder
	Converter *convert.Service

	shutdownTracer observability.ShutdownFunc
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	shutdown, err := observability.InitTracer(ctx, observability.TracingOptions{
		Enabled:     cfg.Observability.TracingEnabled,
		Endpoint:    cfg.Observability.TracingEndpoint,
		SampleRate:  cfg.Observability.TracingSampleRate,
		ServiceName: "convert-reddit",
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	deps.shutdownTracer = shutdown

	if err := deps.initResources(ctx, cfg); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}

	deps.initEncoder(cfg)

	if err := deps.initConverter(cfg); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initResources loads the index and confidence sample from the configured
// source and the denylists from BANNED_DIR.
func (d *Dependencies) initResources(ctx context.Context, cfg *config.Config) error {
	files := filesystem.NewRepository(
		cfg.Resources.IndexPath,
		cfg.Resources.ConfidencePath,
		cfg.Resources.BannedDir,
		d.Logger,
	)

	var ranking repositories.ResourceRepository = files
	if cfg.Resources.Source == config.ResourceSourcePostgres {
		db, err := postgres.NewDB(cfg.Database, d.Logger)
		if err != nil {
			return err
		}
		d.DB = db
		ranking = postgres.NewResourceRepository(db, d.Logger)
	}

	res, err := repositories.LoadResources(ctx, ranking, files)
	if err != nil {
		return err
	}
	d.Resources = res

	d.Logger.Info("resources loaded",
		zap.String("source", cfg.Resources.Source),
		zap.Int("index_size", res.Index.Len()),
		zap.Int("dimension", res.Index.Dimension()),
		zap.String("fingerprint", res.Index.Fingerprint()),
		zap.Int("confidence_sample", len(res.Confidence)),
		zap.Any("banned_content", res.Banned.Sizes()),
	)
	return nil
}

func (d *Dependencies) initEncoder(cfg *config.Config) {
	var enc encoder.Encoder = encoder.NewHTTPClient(cfg.Encoder.URL, cfg.Encoder.Timeout, d.Logger)
	if cfg.Encoder.CacheTTL > 0 {
		enc = encoder.NewCachedEncoder(enc, cfg.Encoder.CacheTTL)
	}
	d.Encoder = enc

	d.Logger.Info("encoder client configured",
		zap.String("url", cfg.Encoder.URL),
		zap.Duration("timeout", cfg.Encoder.Timeout),
		zap.Duration("cache_ttl", cfg.Encoder.CacheTTL),
	)
}

func (d *Dependencies) initConverter(cfg *config.Config) error {
	source := sampling.RandomSource()
	if cfg.Pipeline.SamplerSeed != nil {
		source = sampling.SeededSource(*cfg.Pipeline.SamplerSeed)
		d.Logger.Info("sampler seeded", zap.Uint64("seed", *cfg.Pipeline.SamplerSeed))
	}

	svc, err := convert.NewService(d.Resources, d.Encoder, PipelineConfig(cfg), source, nil, d.Logger)
	if err != nil {
		return err
	}
	d.Converter = svc
	return nil
}

// PipelineConfig maps the environment configuration onto the pipeline settings.
func PipelineConfig(cfg *config.Config) convert.Config {
	p := cfg.Pipeline
	return convert.Config{
		TopK:                p.TopK,
		NumSample:           p.NumSample,
		Temperature:         p.SoftmaxTemperature,
		Workers:             p.Workers,
		EncoderBatchSize:    cfg.Encoder.BatchSize,
		RestrictedTopics:    p.RestrictedTopics,
		DeratingFactor:      p.DeratingFactor,
		UnanswerablePhrases: p.UnanswerablePhrases,
		GuardThreshold:      p.GuardThreshold,
		Filter:              safety.DefaultFilterConfig(),
	}
}

// SQLDB returns the database pool, or nil when resources come from files.
func (d *Dependencies) SQLDB() *sql.DB {
	if d.DB == nil {
		return nil
	}
	return d.DB.DB
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.shutdownTracer != nil {
		if err := d.shutdownTracer(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush traces: %w", err))
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %w", errors.Join(errs...))
	}

	return nil
}
