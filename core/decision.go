package core

import "fmt"

// IntentDecision is the structured routing decision produced fresh each turn
// by the intent classifier. It is consumed by the workflow dispatcher and
// never persisted.
type IntentDecision struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Validate enforces the decision contract: Intent must belong to the closed
// enumeration and Confidence must lie in [0,1]. Violations are reported as
// classification errors; values are never clamped or defaulted.
func (d IntentDecision) Validate() error {
	if !d.Intent.Valid() {
		return fmt.Errorf("%w: intent %q outside {qa, summarization, calculation}", ErrClassification, d.Intent)
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrClassification, d.Confidence)
	}
	return nil
}
