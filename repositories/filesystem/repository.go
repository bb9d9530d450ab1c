// Package filesystem loads pipeline resources from JSON files on disk.
package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ruthenian8/dream/models"
	"github.com/ruthenian8/dream/repositories"
	"go.uber.org/zap"
)

// Denylist file names inside the banned directory
const (
	BannedResponsesFile         = "banned_responses.json"
	BannedPhrasesFile           = "banned_phrases.json"
	BannedWordsFile             = "banned_words.json"
	BannedWordsForQuestionsFile = "banned_words_for_questions.json"
)

// Repository reads the response index, confidence sample and denylists.
type Repository struct {
	indexPath      string
	confidencePath string
	bannedDir      string
	logger         *zap.Logger
}

var (
	_ repositories.ResourceRepository      = (*Repository)(nil)
	_ repositories.BannedContentRepository = (*Repository)(nil)
)

// NewRepository creates a file-backed resource repository
func NewRepository(indexPath, confidencePath, bannedDir string, logger *zap.Logger) *Repository {
	return &Repository{
		indexPath:      indexPath,
		confidencePath: confidencePath,
		bannedDir:      bannedDir,
		logger:         logger,
	}
}

// LoadIndex reads {"texts": [...], "vectors": [[...]]}.
func (r *Repository) LoadIndex(ctx context.Context) (*models.ResponseIndex, error) {
	var index models.ResponseIndex
	if err := readJSON(r.indexPath, &index); err != nil {
		return nil, err
	}
	r.logger.Info("Loaded response index",
		zap.String("path", r.indexPath),
		zap.Int("size", index.Len()),
		zap.Int("dimension", index.Dimension()),
	)
	return &index, nil
}

// LoadConfidenceSample reads a JSON array of raw scores and sorts it.
func (r *Repository) LoadConfidenceSample(ctx context.Context) (models.ConfidenceSample, error) {
	var scores []float64
	if err := readJSON(r.confidencePath, &scores); err != nil {
		return nil, err
	}
	r.logger.Info("Loaded confidence sample",
		zap.String("path", r.confidencePath),
		zap.Int("size", len(scores)),
	)
	return models.NewConfidenceSample(scores), nil
}

// LoadBannedContent reads the four denylists. A missing list is empty.
func (r *Repository) LoadBannedContent(ctx context.Context) (models.BannedContent, error) {
	lists := make(map[string][]string, 4)
	for _, name := range []string{BannedResponsesFile, BannedPhrasesFile, BannedWordsFile, BannedWordsForQuestionsFile} {
		var entries []string
		path := filepath.Join(r.bannedDir, name)
		if err := readJSON(path, &entries); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				r.logger.Warn("Denylist not found, using empty list", zap.String("path", path))
				continue
			}
			return models.BannedContent{}, err
		}
		lists[name] = entries
	}

	banned := models.NewBannedContent(
		lists[BannedResponsesFile],
		lists[BannedPhrasesFile],
		lists[BannedWordsFile],
		lists[BannedWordsForQuestionsFile],
	)
	r.logger.Info("Loaded banned content", zap.Any("sizes", banned.Sizes()))
	return banned, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
