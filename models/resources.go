package models

import "fmt"

// Resources bundles the static inputs of the retrieval pipeline. It is
// built once at startup and never mutated afterwards.
type Resources struct {
	Index      ResponseIndex
	Confidence ConfidenceSample
	Banned     BannedContent
}

// Validate checks the index and the confidence sample.
func (r *Resources) Validate() error {
	if err := r.Index.Validate(); err != nil {
		return fmt.Errorf("invalid resources: %w", err)
	}
	if err := r.Confidence.Validate(); err != nil {
		return fmt.Errorf("invalid resources: %w", err)
	}
	return nil
}
