package domain

import (
	dErrors "masterfile/pkg/domain-errors"
)

// Confidence is the reliability score attached to a candidate or a stored
// provenance entry. Range 0.0 (no confidence) to 1.0 (authoritative).
type Confidence float64

// NewConfidence validates and returns a Confidence.
func NewConfidence(v float64) (Confidence, error) {
	if v < 0.0 || v > 1.0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "confidence must be between 0.0 and 1.0")
	}
	return Confidence(v), nil
}

// MustConfidence returns a Confidence, panicking if out of range. Use only
// with compile-time constants and in tests.
func MustConfidence(v float64) Confidence {
	c, err := NewConfidence(v)
	if err != nil {
		panic(err)
	}
	return c
}

// Float returns the raw score.
func (c Confidence) Float() float64 { return float64(c) }
