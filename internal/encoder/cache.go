package encoder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedEncoder memoizes encodings by history fingerprint. Only histories
// missing from the cache are forwarded to the wrapped encoder.
type CachedEncoder struct {
	next  Encoder
	cache *cache.Cache
}

var _ Encoder = (*CachedEncoder)(nil)

// NewCachedEncoder wraps next with a cache whose entries expire after ttl.
func NewCachedEncoder(next Encoder, ttl time.Duration) *CachedEncoder {
	return &CachedEncoder{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Encode implements Encoder.
func (c *CachedEncoder) Encode(ctx context.Context, histories [][]string) ([][]float32, error) {
	out := make([][]float32, len(histories))
	keys := make([]string, len(histories))

	var missing [][]string
	var missingPos []int
	for i, history := range histories {
		keys[i] = Fingerprint(history)
		if v, found := c.cache.Get(keys[i]); found {
			out[i] = v.([]float32)
			continue
		}
		missing = append(missing, history)
		missingPos = append(missingPos, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	encoded, err := c.next.Encode(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(encoded) != len(missing) {
		return nil, fmt.Errorf("encoder returned %d encodings for %d histories", len(encoded), len(missing))
	}
	for j, pos := range missingPos {
		out[pos] = encoded[j]
		c.cache.Set(keys[pos], encoded[j], cache.DefaultExpiration)
	}
	return out, nil
}

// Len returns the number of cached encodings, including expired ones not
// yet purged.
func (c *CachedEncoder) Len() int {
	return c.cache.ItemCount()
}

// Fingerprint hashes a history turn by turn.
func Fingerprint(history []string) string {
	h := sha256.New()
	for _, turn := range history {
		h.Write([]byte(turn))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
