// Package modelerr defines the error taxonomy shared by the model engine.
//
// Configuration errors and invariant violations abort a run and are surfaced
// to the caller unchanged. Data quality warnings and benchmark fetch failures
// are recovered locally and only logged.
package modelerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvariant matches *InvariantViolation and *InvariantViolations.
	ErrInvariant = errors.New("invariant violation")
)

// ConfigurationError reports a missing or unusable structural input.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Missing is shorthand for a required key that was not supplied.
func Missing(key string) *ConfigurationError {
	return &ConfigurationError{Key: key, Reason: "required value is missing"}
}

// Invalid builds a ConfigurationError with a formatted reason.
func Invalid(key, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// DataQualityWarning records that an engine default replaced an absent
// ratio assumption. It is not an error.
type DataQualityWarning struct {
	Key     string  `json:"key"`
	Default float64 `json:"default"`
	Note    string  `json:"note,omitempty"`
}

func (w DataQualityWarning) String() string {
	if w.Note != "" {
		return fmt.Sprintf("%s: %s", w.Key, w.Note)
	}
	return fmt.Sprintf("%s: defaulted to %g", w.Key, w.Default)
}

// ExternalFetchFailure wraps a benchmark source failure. The resolver logs it
// and continues with an empty baseline.
type ExternalFetchFailure struct {
	Ticker string
	Err    error
}

func (e *ExternalFetchFailure) Error() string {
	return fmt.Sprintf("benchmark fetch for %q failed: %v", e.Ticker, e.Err)
}

func (e *ExternalFetchFailure) Unwrap() error { return e.Err }

// InvariantViolation is a single failed accounting check for one year.
type InvariantViolation struct {
	Year      int     `json:"year"`
	Check     string  `json:"check"`
	Gap       float64 `json:"gap"`
	Tolerance float64 `json:"tolerance"`
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s in %d: gap %.6f exceeds tolerance %.6f",
		v.Check, v.Year, v.Gap, v.Tolerance)
}

func (v *InvariantViolation) Is(target error) bool { return target == ErrInvariant }

// InvariantViolations aggregates the violations of one model run.
type InvariantViolations []InvariantViolation

func (vs InvariantViolations) Error() string {
	parts := make([]string, 0, len(vs))
	for i := range vs {
		parts = append(parts, fmt.Sprintf("%s@%d (gap %.6f)", vs[i].Check, vs[i].Year, vs[i].Gap))
	}
	return fmt.Sprintf("%d invariant violation(s): %s", len(vs), strings.Join(parts, "; "))
}

func (vs InvariantViolations) Is(target error) bool { return target == ErrInvariant }
