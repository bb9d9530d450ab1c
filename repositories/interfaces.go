package repositories

import (
	"context"

	"github.com/ruthenian8/dream/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
	Context() context.Context
}

// IndexRepository loads the precomputed response index
type IndexRepository interface {
	LoadIndex(ctx context.Context) (*models.ResponseIndex, error)
}

// ConfidenceRepository loads the historical raw-score sample
type ConfidenceRepository interface {
	LoadConfidenceSample(ctx context.Context) (models.ConfidenceSample, error)
}

// BannedContentRepository loads the candidate denylists
type BannedContentRepository interface {
	LoadBannedContent(ctx context.Context) (models.BannedContent, error)
}

// ResourceRepository provides the ranking resources from one backing store
type ResourceRepository interface {
	IndexRepository
	ConfidenceRepository
}

// ResourceWriter stores ranking resources, replacing what is there
type ResourceWriter interface {
	StoreResources(ctx context.Context, index *models.ResponseIndex, sample models.ConfidenceSample) error
}

// ResourceStore reads and replaces ranking resources
type ResourceStore interface {
	IndexRepository
	ResourceWriter
}
