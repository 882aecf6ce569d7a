package utils

import "math"

// Monetary values cross the HTTP boundary as decimal major units (12.50)
// and are persisted as integer minor-unit cents (1250). The conversion
// must round, never truncate: 49.99 * 100 is 4998.999... in float64.

// CentsFromMajor converts a major-unit amount to integer cents.
func CentsFromMajor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// MajorFromCents converts integer cents back to a major-unit amount.
func MajorFromCents(cents int64) float64 {
	return float64(cents) / 100
}

// NewNullString is a helper for string pointers, returning nil if string is empty.
// Useful for fields that are optional and should be NULL in DB if not provided.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
