// Package parlay builds legs and simulates parlay payouts.
package parlay

import (
	"strings"

	"github.com/yourusername/parlayscope/internal/models"
	"github.com/yourusername/parlayscope/internal/odds"
)

// NewLeg constructs a validated leg from raw user or OCR input.
// A rejected leg is reported to the caller, never silently dropped.
func NewLeg(description string, americanOdds int) (*models.Leg, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, models.ErrEmptyDescription
	}

	americanOdds = odds.Canonical(americanOdds)
	dec, err := odds.AmericanToDecimal(americanOdds)
	if err != nil {
		return nil, err
	}
	prob, err := odds.ImpliedProbability(americanOdds)
	if err != nil {
		return nil, err
	}

	return &models.Leg{
		Description:        description,
		AmericanOdds:       americanOdds,
		DecimalOdds:        dec,
		ImpliedProbability: prob,
	}, nil
}

// NewLegs constructs legs from parallel description/odds slices, collecting
// every validation failure with its input position.
func NewLegs(descriptions []string, americanOdds []int) ([]*models.Leg, []LegError) {
	legs := make([]*models.Leg, 0, len(descriptions))
	var failures []LegError

	for i, desc := range descriptions {
		if i >= len(americanOdds) {
			failures = append(failures, LegError{Index: i, Err: models.ErrInvalidOdds})
			continue
		}
		leg, err := NewLeg(desc, americanOdds[i])
		if err != nil {
			failures = append(failures, LegError{Index: i, Err: err})
			continue
		}
		legs = append(legs, leg)
	}

	return legs, failures
}

// LegError reports a rejected leg by its position in the input
type LegError struct {
	Index int
	Err   error
}

func (e LegError) Error() string {
	return e.Err.Error()
}

func (e LegError) Unwrap() error {
	return e.Err
}
