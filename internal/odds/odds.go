// Package odds provides American/decimal odds conversions and implied
// probability math.
package odds

import (
	"math"

	"github.com/yourusername/parlayscope/internal/models"
)

// MinAmericanMagnitude is the smallest legal magnitude for American odds.
// Values in (-100, 100) do not exist under the American convention.
const MinAmericanMagnitude = 100

// Valid reports whether odds are legal American odds
func Valid(american int) bool {
	if american == 0 {
		return false
	}
	abs := american
	if abs < 0 {
		abs = -abs
	}
	return abs >= MinAmericanMagnitude
}

// Canonical normalizes American odds to their canonical form. +100 and -100
// both denote even money (decimal 2.0); +100 is the canonical spelling, so
// conversions out of decimal form always round-trip against it.
func Canonical(american int) int {
	if american == -100 {
		return 100
	}
	return american
}

// AmericanToDecimal converts American odds to decimal odds
// Example: +150 → 2.5, -110 → 1.909...
func AmericanToDecimal(american int) (float64, error) {
	if !Valid(american) {
		return 0, models.ErrInvalidOdds
	}
	if american > 0 {
		return 1 + float64(american)/100.0, nil
	}
	return 1 + 100.0/math.Abs(float64(american)), nil
}

// DecimalToAmerican converts decimal odds back to American odds
// Example: 2.5 → +150, 1.909 → -110
func DecimalToAmerican(dec float64) (int, error) {
	if dec <= 1 {
		return 0, models.ErrInvalidDecimalOdds
	}
	if dec >= 2 {
		return int(math.Round((dec - 1) * 100)), nil
	}
	return int(math.Round(-100 / (dec - 1))), nil
}

// ImpliedProbability converts American odds to implied win probability
// Example: -150 → 0.6, +150 → 0.4. Always in (0, 1) for valid odds.
func ImpliedProbability(american int) (float64, error) {
	dec, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return 1 / dec, nil
}

// ImpliedProbabilityFromDecimal converts decimal odds to implied probability
func ImpliedProbabilityFromDecimal(dec float64) (float64, error) {
	if dec <= 1 {
		return 0, models.ErrInvalidDecimalOdds
	}
	return 1 / dec, nil
}
