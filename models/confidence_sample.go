package models

import (
	"errors"
	"math"
	"sort"
)

// ConfidenceSample is a sorted sample of historical raw ranking scores used
// as the reference distribution for confidence calibration.
type ConfidenceSample []float64

// NewConfidenceSample copies and sorts the scores.
func NewConfidenceSample(scores []float64) ConfidenceSample {
	sample := make(ConfidenceSample, len(scores))
	copy(sample, scores)
	sort.Float64s(sample)
	return sample
}

// Validate checks that the sample is non-empty, finite and sorted.
func (cs ConfidenceSample) Validate() error {
	if len(cs) == 0 {
		return errors.New("confidence sample is empty")
	}
	for _, v := range cs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("confidence sample contains non-finite values")
		}
	}
	if !sort.Float64sAreSorted(cs) {
		return errors.New("confidence sample is not sorted")
	}
	return nil
}
