package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProbabilityBasis indicates how the combined probability was computed
type ProbabilityBasis string

const (
	// ProbabilityBasisLegs means the probability is the product of per-leg
	// implied probabilities (independence assumption).
	ProbabilityBasisLegs ProbabilityBasis = "legs"
	// ProbabilityBasisOverride means the probability was derived from an
	// externally supplied total-odds value (e.g. read off a slip photo)
	// rather than the per-leg product. The two bases generally disagree
	// for the same legs.
	ProbabilityBasisOverride ProbabilityBasis = "override"
)

// LegContribution is the per-leg breakdown of a simulation result
type LegContribution struct {
	Leg                Leg     `json:"leg"`
	DecimalOdds        float64 `json:"decimal_odds"`
	ImpliedProbability float64 `json:"implied_probability"`
	PayoutShare        float64 `json:"payout_share"` // fraction of total decimal odds this leg accounts for
}

// Simulation represents the outcome of combining N legs with a stake
type Simulation struct {
	ID                  uuid.UUID         `db:"id" json:"id"`
	SlipID              *uuid.UUID        `db:"slip_id" json:"slip_id,omitempty"`
	Legs                []Leg             `db:"legs" json:"legs" validate:"required,min=1"`
	Stake               decimal.Decimal   `db:"stake" json:"stake"`
	TotalOdds           int               `db:"total_odds" json:"total_odds"`
	TotalDecimalOdds    float64           `db:"total_decimal_odds" json:"total_decimal_odds"`
	CombinedProbability float64           `db:"combined_probability" json:"combined_probability"`
	ProbabilityBasis    ProbabilityBasis  `db:"probability_basis" json:"probability_basis"`
	Payout              decimal.Decimal   `db:"payout" json:"payout"`
	Profit              decimal.Decimal   `db:"profit" json:"profit"`
	ExpectedValue       decimal.Decimal   `db:"expected_value" json:"expected_value"`
	Contributions       []LegContribution `db:"-" json:"contributions,omitempty"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
}

// IsLongshot reports whether the combined probability is below one in ten
func (s *Simulation) IsLongshot() bool {
	return s.CombinedProbability < 0.1
}
