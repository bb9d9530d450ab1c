// Package calibration maps raw ranking scores to interpretable confidences.
//
// Calibration runs in up to three steps: the empirical CDF of the score
// against a historical sample, a piecewise-linear remap of that percentile
// into the range the skill selector expects, and a derating when the agent
// is on a topic where retrieved chit-chat is a poor fit.
package calibration

import (
	"math"
	"sort"
)

// DefaultDeratingFactor multiplies the confidence on restricted topics.
const DefaultDeratingFactor = 0.8

// DefaultRestrictedTopics are topics on which retrieved answers are derated.
var DefaultRestrictedTopics = []string{"news", "movies", "books", "weather", "games"}

// Segment linearly maps [MinX, MaxX] onto [MinY, MaxY].
type Segment struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Apply returns the mapped value, or 0 when x lies outside the segment.
func (s Segment) Apply(x float64) float64 {
	if x < s.MinX || x > s.MaxX {
		return 0
	}
	return (x-s.MinX)/(s.MaxX-s.MinX)*(s.MaxY-s.MinY) + s.MinY
}

// DefaultSegments is the percentile remap the selector thresholds were tuned on.
var DefaultSegments = []Segment{
	{MinX: 0.0, MaxX: 0.2, MinY: 0.0, MaxY: 0.85},
	{MinX: 0.2, MaxX: 0.4, MinY: 0.85, MaxY: 0.9},
	{MinX: 0.4, MaxX: 1.0, MinY: 0.9, MaxY: 0.95},
}

// Options selects the calibration stages for one request.
type Options struct {
	EmpiricalCDF    bool
	PiecewiseRemap  bool
	TopicRestricted bool
}

// DefaultOptions enables both calibration stages without derating.
func DefaultOptions() Options {
	return Options{EmpiricalCDF: true, PiecewiseRemap: true}
}

// Calibrator is immutable after construction and safe for concurrent use.
type Calibrator struct {
	sample   []float64
	segments []Segment
	derating float64
}

// New builds a calibrator over a sorted, non-empty sample. Nil segments
// select DefaultSegments; a non-positive factor selects DefaultDeratingFactor.
func New(sample []float64, segments []Segment, deratingFactor float64) *Calibrator {
	if segments == nil {
		segments = DefaultSegments
	}
	if deratingFactor <= 0 {
		deratingFactor = DefaultDeratingFactor
	}
	return &Calibrator{sample: sample, segments: segments, derating: deratingFactor}
}

// EmpiricalCDF returns the fraction of sample values less than or equal to x.
func (c *Calibrator) EmpiricalCDF(x float64) float64 {
	if len(c.sample) == 0 || math.IsNaN(x) {
		return 0
	}
	count := sort.Search(len(c.sample), func(i int) bool { return c.sample[i] > x })
	return float64(count) / float64(len(c.sample))
}

// Remap applies the piecewise-linear segments, taking the largest output.
func (c *Calibrator) Remap(p float64) float64 {
	result := 0.0
	for _, segment := range c.segments {
		result = math.Max(result, segment.Apply(p))
	}
	return result
}

// Calibrate turns a raw score into a confidence in [0, 1].
func (c *Calibrator) Calibrate(raw float64, opts Options) float64 {
	confidence := raw
	if opts.EmpiricalCDF {
		confidence = c.EmpiricalCDF(confidence)
	}
	if opts.PiecewiseRemap {
		confidence = c.Remap(confidence)
	}
	confidence = clamp01(confidence)
	if opts.TopicRestricted {
		confidence *= c.derating
	}
	return confidence
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
