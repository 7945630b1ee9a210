package ir

import "time"

// DefaultRefresh is the tick interval used when a definition omits one.
const DefaultRefresh = 10 * time.Millisecond

// TweenSpec is a compiled, named tween definition.
// Produced by the CUE compiler and consumed by the CLI, harness and store.
type TweenSpec struct {
	Name     string        `json:"name"`
	From     ValueSet      `json:"from"`
	To       ValueSet      `json:"to"`
	Duration time.Duration `json:"duration"`
	Refresh  time.Duration `json:"refresh"`
	Easing   string        `json:"easing"`
}

// Validate checks the definition is runnable: both value sets valid and keyed
// identically, duration and refresh positive.
func (s *TweenSpec) Validate() error {
	if err := s.From.Validate(); err != nil {
		return WithField(err, "from")
	}
	if err := s.To.Validate(); err != nil {
		return WithField(err, "to")
	}
	if err := SameKeys(s.From, s.To); err != nil {
		return WithField(err, "to")
	}
	if err := ValidateDuration("duration", s.Duration); err != nil {
		return err
	}
	return ValidateDuration("refresh", s.Refresh)
}

// ValidateDuration rejects non-positive durations.
func ValidateDuration(field string, d time.Duration) error {
	if d <= 0 {
		return &ValidationError{Field: field, Reason: "must be greater than 0, got " + d.String()}
	}
	return nil
}

// Sample is one delivered update of a running tween.
// Tick 0 is the delivery made by Start; the final delivery has Final set and
// carries the exact target values.
type Sample struct {
	Tick    int           `json:"tick"`
	Elapsed time.Duration `json:"elapsed"`
	Values  ValueSet      `json:"values"`
	Final   bool          `json:"final,omitempty"`
}
