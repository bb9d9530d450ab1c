package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/ruthenian8/dream/models"
	"github.com/ruthenian8/dream/repositories"
	"go.uber.org/zap"
)

// ResourceRepository reads and writes the ranking resources in PostgreSQL
type ResourceRepository struct {
	db        *DB
	txManager repositories.TransactionManager
	logger    *zap.Logger
}

var (
	_ repositories.ResourceRepository = (*ResourceRepository)(nil)
	_ repositories.ResourceStore      = (*ResourceRepository)(nil)
)

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *DB, logger *zap.Logger) *ResourceRepository {
	return &ResourceRepository{
		db:        db,
		txManager: NewTransactionManager(db, logger),
		logger:    logger,
	}
}

// LoadIndex reads every indexed response in id order
func (r *ResourceRepository) LoadIndex(ctx context.Context) (*models.ResponseIndex, error) {
	query := `SELECT text, embedding FROM response_index ORDER BY id`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query response index: %w", err)
	}
	defer rows.Close()

	index := &models.ResponseIndex{}
	for rows.Next() {
		var (
			text      string
			embedding pgvector.Vector
		)
		if err := rows.Scan(&text, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		index.Texts = append(index.Texts, text)
		index.Vectors = append(index.Vectors, embedding.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating response index: %w", err)
	}

	r.logger.Info("Loaded response index from database",
		zap.Int("size", index.Len()),
		zap.Int("dimension", index.Dimension()),
	)
	return index, nil
}

// LoadConfidenceSample reads the raw-score sample in ascending order
func (r *ResourceRepository) LoadConfidenceSample(ctx context.Context) (models.ConfidenceSample, error) {
	query := `SELECT score FROM confidence_samples ORDER BY score`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query confidence samples: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var score float64
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("failed to scan confidence sample: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating confidence samples: %w", err)
	}

	r.logger.Info("Loaded confidence sample from database", zap.Int("size", len(scores)))
	return models.NewConfidenceSample(scores), nil
}

// StoreResources replaces the stored index and sample in one transaction
func (r *ResourceRepository) StoreResources(ctx context.Context, index *models.ResponseIndex, sample models.ConfidenceSample) error {
	if err := index.Validate(); err != nil {
		return err
	}

	return r.txManager.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		exec := GetExecutor(ctx, r.db)

		if _, err := exec.ExecContext(ctx, `DELETE FROM response_index`); err != nil {
			return fmt.Errorf("failed to clear response index: %w", err)
		}
		if _, err := exec.ExecContext(ctx, `DELETE FROM confidence_samples`); err != nil {
			return fmt.Errorf("failed to clear confidence samples: %w", err)
		}

		for i, text := range index.Texts {
			_, err := exec.ExecContext(ctx,
				`INSERT INTO response_index (text, embedding) VALUES ($1, $2)`,
				text, pgvector.NewVector(index.Vectors[i]),
			)
			if err != nil {
				return fmt.Errorf("failed to insert response %d: %w", i, err)
			}
		}
		for _, score := range sample {
			if _, err := exec.ExecContext(ctx, `INSERT INTO confidence_samples (score) VALUES ($1)`, score); err != nil {
				return fmt.Errorf("failed to insert confidence sample: %w", err)
			}
		}

		r.logger.Info("Stored resources",
			zap.Int("responses", index.Len()),
			zap.Int("samples", len(sample)),
		)
		return nil
	})
}
