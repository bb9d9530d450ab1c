// Package encoder maps conversation histories into the response ranking
// vector space.
//
// The neural model runs out of process; this package holds its contract,
// an HTTP client for it, and a TTL cache in front of any implementation.
package encoder

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyHistory is returned when a history has no turns to encode.
var ErrEmptyHistory = errors.New("history must not be empty")

// Encoder encodes a batch of histories, returning one vector per history in
// input order. Implementations must be deterministic.
type Encoder interface {
	Encode(ctx context.Context, histories [][]string) ([][]float32, error)
}

// Features splits a history into the model inputs: the most recent turn,
// and all earlier turns newest first, joined by spaces.
func Features(history []string) (contextTurn, extraContext string, err error) {
	if len(history) == 0 {
		return "", "", ErrEmptyHistory
	}
	earlier := make([]string, 0, len(history)-1)
	for i := len(history) - 2; i >= 0; i-- {
		earlier = append(earlier, history[i])
	}
	return history[len(history)-1], strings.Join(earlier, " "), nil
}
