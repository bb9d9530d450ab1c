// Command index-import copies a JSON response index and confidence sample
// into postgres for the RESOURCE_SOURCE=postgres mode.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ruthenian8/dream/config"
	"github.com/ruthenian8/dream/internal/observability"
	"github.com/ruthenian8/dream/repositories"
	"github.com/ruthenian8/dream/repositories/filesystem"
	"github.com/ruthenian8/dream/repositories/postgres"
)

func main() {
	indexPath := flag.String("index", "", "path to the response index JSON")
	confidencePath := flag.String("confidence", "", "path to the confidence sample JSON")
	initSchema := flag.Bool("init-schema", true, "create the resource tables if missing")
	flag.Parse()

	if *indexPath == "" || *confidencePath == "" {
		fmt.Fprintln(os.Stderr, "usage: index-import --index path/to/index.json --confidence path/to/confidences.json")
		os.Exit(2)
	}

	logger, err := observability.NewLogger(observability.LogOptions{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_ = godotenv.Load(".env")
	db, err := postgres.NewDB(config.LoadDatabaseConfig(), logger)
	if err != nil {
		logger.Fatal("failed to connect", zap.Error(err))
	}
	defer db.Close()

	if *initSchema {
		if err := db.InitSchema(ctx); err != nil {
			logger.Fatal("failed to create schema", zap.Error(err))
		}
	}

	files := filesystem.NewRepository(*indexPath, *confidencePath, "", logger)
	if err := importResources(ctx, files, postgres.NewResourceRepository(db, logger), logger); err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
}

// importResources copies the index and sample from src to dst and checks
// that the stored index reads back with the same fingerprint.
func importResources(ctx context.Context, src repositories.ResourceRepository, dst repositories.ResourceStore, logger *zap.Logger) error {
	index, err := src.LoadIndex(ctx)
	if err != nil {
		return err
	}
	sample, err := src.LoadConfidenceSample(ctx)
	if err != nil {
		return err
	}
	if err := sample.Validate(); err != nil {
		return err
	}

	if err := dst.StoreResources(ctx, index, sample); err != nil {
		return err
	}

	stored, err := dst.LoadIndex(ctx)
	if err != nil {
		return fmt.Errorf("failed to read back index: %w", err)
	}
	if stored.Fingerprint() != index.Fingerprint() {
		return fmt.Errorf("stored index fingerprint %s does not match source %s", stored.Fingerprint(), index.Fingerprint())
	}

	logger.Info("Imported resources",
		zap.Int("responses", index.Len()),
		zap.Int("dimension", index.Dimension()),
		zap.Int("samples", len(sample)),
		zap.String("fingerprint", index.Fingerprint()),
	)
	return nil
}
