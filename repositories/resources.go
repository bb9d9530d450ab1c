package repositories

import (
	"context"
	"fmt"

	"github.com/ruthenian8/dream/models"
)

// LoadResources assembles and validates the pipeline resource bundle.
func LoadResources(ctx context.Context, ranking ResourceRepository, banned BannedContentRepository) (*models.Resources, error) {
	index, err := ranking.LoadIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load response index: %w", err)
	}

	sample, err := ranking.LoadConfidenceSample(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load confidence sample: %w", err)
	}

	bannedContent, err := banned.LoadBannedContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load banned content: %w", err)
	}

	res := &models.Resources{
		Index:      *index,
		Confidence: sample,
		Banned:     bannedContent,
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}
