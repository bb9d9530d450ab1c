// Package sampling draws a diverse subset of ranked candidates, weighted by
// a softmax over their confidences.
package sampling

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	DefaultSize        = 3
	DefaultTemperature = 0.08
)

// ErrDegenerate is returned when the weights cannot form a probability vector.
var ErrDegenerate = errors.New("degenerate sampling distribution")

// Rand is the random source consumed by the sampler.
type Rand interface {
	Float64() float64
}

// Source returns the random source for the batch item at the given position.
type Source func(item int) Rand

// SeededSource derives an independent PCG stream per item, so results do
// not depend on the order in which items are processed.
func SeededSource(seed uint64) Source {
	return func(item int) Rand {
		return rand.New(rand.NewPCG(seed, uint64(item)))
	}
}

// RandomSource seeds every item from the global generator.
func RandomSource() Source {
	return func(int) Rand {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

// Softmax returns exp((v - max) / temperature), normalized.
func Softmax(values []float64, temperature float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values", ErrDegenerate)
	}
	if !(temperature > 0) || math.IsInf(temperature, 0) {
		return nil, fmt.Errorf("%w: temperature %v", ErrDegenerate, temperature)
	}
	maxValue := math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value %v", ErrDegenerate, v)
		}
		maxValue = math.Max(maxValue, v)
	}

	probs := make([]float64, len(values))
	total := 0.0
	for i, v := range values {
		probs[i] = math.Exp((v - maxValue) / temperature)
		total += probs[i]
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: total mass %v", ErrDegenerate, total)
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs, nil
}

// Sampler picks up to Size distinct candidates.
type Sampler struct {
	Size        int
	Temperature float64
}

// New creates a sampler. Non-positive size selects DefaultSize.
func New(size int, temperature float64) *Sampler {
	if size <= 0 {
		size = DefaultSize
	}
	return &Sampler{Size: size, Temperature: temperature}
}

// Draw returns min(Size, len(confidences)) distinct positions drawn without
// replacement with probability softmax(confidences / Temperature).
func (s *Sampler) Draw(rng Rand, confidences []float64) ([]int, error) {
	probs, err := Softmax(confidences, s.Temperature)
	if err != nil {
		return nil, err
	}

	n := min(s.Size, len(probs))
	remaining := make([]int, len(probs))
	for i := range remaining {
		remaining[i] = i
	}

	picked := make([]int, 0, n)
	for len(picked) < n {
		mass := 0.0
		for _, idx := range remaining {
			mass += probs[idx]
		}
		if !(mass > 0) {
			return nil, fmt.Errorf("%w: fewer non-zero weights than draws", ErrDegenerate)
		}

		target := rng.Float64() * mass
		chosen := len(remaining) - 1
		cumulative := 0.0
		for pos, idx := range remaining {
			cumulative += probs[idx]
			if target < cumulative {
				chosen = pos
				break
			}
		}
		picked = append(picked, remaining[chosen])
		remaining = append(remaining[:chosen], remaining[chosen+1:]...)
	}
	return picked, nil
}

// Choose draws like Draw, falling back to the single highest-confidence
// position when the distribution is degenerate. The returned error reports
// the reason for the fallback; the positions are usable either way.
func (s *Sampler) Choose(rng Rand, confidences []float64) ([]int, error) {
	if len(confidences) == 0 {
		return nil, nil
	}
	picked, err := s.Draw(rng, confidences)
	if err != nil {
		return []int{Argmax(confidences)}, err
	}
	return picked, nil
}

// Argmax returns the position of the largest value, earliest on ties.
// NaN values are never selected unless every value is NaN.
func Argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] || (math.IsNaN(values[best]) && !math.IsNaN(v)) {
			best = i
		}
	}
	return best
}
