package convert

import (
	"encoding/json"

	"github.com/ruthenian8/dream/internal/calibration"
	"github.com/ruthenian8/dream/internal/safety"
	"github.com/ruthenian8/dream/models"
)

// Config holds the pipeline settings
type Config struct {
	TopK                int
	NumSample           int
	Temperature         float64
	Workers             int
	EncoderBatchSize    int
	RestrictedTopics    []string
	DeratingFactor      float64
	UnanswerablePhrases []string
	GuardThreshold      float64
	Filter              safety.FilterConfig
}

// DefaultConfig returns the settings the confidence thresholds were tuned with
func DefaultConfig() Config {
	return Config{
		TopK:                10,
		NumSample:           3,
		Temperature:         0.08,
		Workers:             4,
		EncoderBatchSize:    32,
		RestrictedTopics:    calibration.DefaultRestrictedTopics,
		DeratingFactor:      calibration.DefaultDeratingFactor,
		UnanswerablePhrases: safety.DefaultUnanswerablePhrases,
		GuardThreshold:      safety.DefaultGuardThreshold,
		Filter:              safety.DefaultFilterConfig(),
	}
}

// Options are the per-request calibration switches. ApproximateConfidence
// toggles both stages; EmpiricalCDF and PiecewiseRemap, when set, override
// one stage each.
type Options struct {
	ApproximateConfidence bool
	EmpiricalCDF          *bool
	PiecewiseRemap        *bool
}

// DefaultOptions enables both calibration stages
func DefaultOptions() Options {
	return Options{ApproximateConfidence: true}
}

func (o Options) calibration(topicRestricted bool) calibration.Options {
	opts := calibration.Options{
		EmpiricalCDF:    o.ApproximateConfidence,
		PiecewiseRemap:  o.ApproximateConfidence,
		TopicRestricted: topicRestricted,
	}
	if o.EmpiricalCDF != nil {
		opts.EmpiricalCDF = *o.EmpiricalCDF
	}
	if o.PiecewiseRemap != nil {
		opts.PiecewiseRemap = *o.PiecewiseRemap
	}
	return opts
}

// Request is one batch of conversations to answer
type Request struct {
	Items   []models.BatchItem
	Options Options
}

// Candidate is a ranked response that survived filtering
type Candidate struct {
	Index      int
	Text       string
	RawScore   float64
	Confidence float64
}

// Result holds the selected answers and their confidences for one item.
// An empty result means the item has no answer.
type Result struct {
	Answers     []string
	Confidences []float64
}

// IsEmpty reports whether the result carries no answer
func (r Result) IsEmpty() bool {
	return len(r.Answers) == 0
}

var emptyResultJSON = []byte(`["",0.0]`)

// MarshalJSON encodes the result as [answers, confidences], or ["", 0.0]
// when there is no answer.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.IsEmpty() {
		return emptyResultJSON, nil
	}
	return json.Marshal([2]interface{}{r.Answers, r.Confidences})
}

// Stats describes the loaded resources and pipeline settings
type Stats struct {
	IndexSize        int            `json:"index_size"`
	Dimension        int            `json:"dimension"`
	IndexFingerprint string         `json:"index_fingerprint"`
	ConfidenceSample int            `json:"confidence_sample_size"`
	BannedContent    map[string]int `json:"banned_content"`
	NumSample        int            `json:"num_sample"`
	Temperature      float64        `json:"softmax_temperature"`
	TopK             int            `json:"top_k"`
	Workers          int            `json:"workers"`
}
