package ranking

import (
	"fmt"
	"sort"
)

// DefaultTopK is the number of nearest responses handed to the filter.
const DefaultTopK = 10

// Scored is one ranked index entry.
type Scored struct {
	Index int
	Score float64
}

// Ranker scores a context vector against every vector of a static index.
// It keeps a reference to the vectors and never mutates them, so a single
// Ranker is safe for concurrent use.
type Ranker struct {
	vectors [][]float32
	dim     int
	topK    int
}

// NewRanker creates a ranker over vectors, all of which must share one
// dimension.
func NewRanker(vectors [][]float32, topK int) (*Ranker, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("ranking: empty index")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("ranking: vector %d has dimension %d, expected %d", i, len(v), dim)
		}
	}
	return &Ranker{vectors: vectors, dim: dim, topK: topK}, nil
}

// Dimension returns the vector dimension of the index.
func (r *Ranker) Dimension() int {
	return r.dim
}

// TopK returns the highest scoring entries by dot product, descending.
// Equal scores are ordered by ascending index.
func (r *Ranker) TopK(query []float32) ([]Scored, error) {
	if len(query) != r.dim {
		return nil, fmt.Errorf("ranking: query has dimension %d, expected %d", len(query), r.dim)
	}

	scored := make([]Scored, len(r.vectors))
	for i, v := range r.vectors {
		scored[i] = Scored{Index: i, Score: Dot(query, v)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > r.topK {
		scored = scored[:r.topK]
	}
	return scored, nil
}

// Dot returns the dot product of two equal-length vectors, accumulated
// left to right in float64.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
