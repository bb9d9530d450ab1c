package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ResponseIndex is the precomputed set of candidate responses and their
// embeddings. Texts[i] corresponds to Vectors[i].
type ResponseIndex struct {
	Texts   []string    `json:"texts"`
	Vectors [][]float32 `json:"vectors"`
}

// Len returns the number of indexed responses
func (ri *ResponseIndex) Len() int {
	return len(ri.Texts)
}

// Dimension returns the embedding dimension, or 0 for an empty index
func (ri *ResponseIndex) Dimension() int {
	if len(ri.Vectors) == 0 {
		return 0
	}
	return len(ri.Vectors[0])
}

// Validate checks that the index is non-empty, aligned and of a single dimension.
func (ri *ResponseIndex) Validate() error {
	if len(ri.Texts) == 0 {
		return errors.New("response index is empty")
	}
	if len(ri.Texts) != len(ri.Vectors) {
		return fmt.Errorf("response index has %d texts but %d vectors", len(ri.Texts), len(ri.Vectors))
	}
	dim := ri.Dimension()
	if dim == 0 {
		return errors.New("response index vectors have zero dimension")
	}
	for i, v := range ri.Vectors {
		if len(v) != dim {
			return fmt.Errorf("response index vector %d has dimension %d, expected %d", i, len(v), dim)
		}
	}
	return nil
}

// Fingerprint identifies the index contents by a short hash of its texts.
func (ri *ResponseIndex) Fingerprint() string {
	h := sha256.New()
	for _, text := range ri.Texts {
		h.Write([]byte(text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
