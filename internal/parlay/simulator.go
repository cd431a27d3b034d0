package parlay

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/parlayscope/internal/models"
	"github.com/yourusername/parlayscope/internal/odds"
)

// Simulate combines legs into a full payout/probability report.
//
// Without an override, total decimal odds are the product of per-leg decimal
// odds and the combined probability is the product of per-leg implied
// probabilities (legs treated as independent). When totalOddsOverride is set
// (the slip's stated total, which is authoritative over a derived product),
// the override's decimal form is used for both the payout and the combined
// probability; that probability generally differs from the per-leg product
// for the same legs, and the result's ProbabilityBasis records which path
// produced it so callers can surface the distinction.
//
// Pure and deterministic: identical inputs yield identical results apart
// from the generated ID and timestamp.
func Simulate(legs []*models.Leg, stake decimal.Decimal, totalOddsOverride *int) (*models.Simulation, error) {
	if len(legs) == 0 {
		return nil, models.ErrNoLegs
	}
	if !stake.IsPositive() {
		return nil, models.ErrInvalidStake
	}

	totalDecimal := 1.0
	combinedProb := 1.0
	for _, leg := range legs {
		if !odds.Valid(leg.AmericanOdds) {
			return nil, models.ErrInvalidOdds
		}
		totalDecimal *= leg.DecimalOdds
		combinedProb *= leg.ImpliedProbability
	}

	basis := models.ProbabilityBasisLegs
	if totalOddsOverride != nil {
		dec, err := odds.AmericanToDecimal(*totalOddsOverride)
		if err != nil {
			return nil, err
		}
		totalDecimal = dec
		combinedProb = 1 / dec
		basis = models.ProbabilityBasisOverride
	}

	totalAmerican, err := odds.DecimalToAmerican(totalDecimal)
	if err != nil {
		return nil, err
	}

	payout := stake.Mul(decimal.NewFromFloat(totalDecimal)).Round(2)
	profit := payout.Sub(stake)
	ev := payout.Mul(decimal.NewFromFloat(combinedProb)).Sub(stake).Round(2)

	return &models.Simulation{
		ID:                  uuid.New(),
		Legs:                copyLegs(legs),
		Stake:               stake,
		TotalOdds:           totalAmerican,
		TotalDecimalOdds:    totalDecimal,
		CombinedProbability: combinedProb,
		ProbabilityBasis:    basis,
		Payout:              payout,
		Profit:              profit,
		ExpectedValue:       ev,
		Contributions:       buildContributions(legs, totalDecimal),
		CreatedAt:           time.Now().UTC(),
	}, nil
}

// buildContributions computes the per-leg share of the total decimal odds
func buildContributions(legs []*models.Leg, totalDecimal float64) []models.LegContribution {
	contributions := make([]models.LegContribution, len(legs))
	for i, leg := range legs {
		share := 0.0
		if totalDecimal > 1 {
			share = (leg.DecimalOdds - 1) / (totalDecimal - 1)
		}
		contributions[i] = models.LegContribution{
			Leg:                *leg,
			DecimalOdds:        leg.DecimalOdds,
			ImpliedProbability: leg.ImpliedProbability,
			PayoutShare:        share,
		}
	}
	return contributions
}

func copyLegs(legs []*models.Leg) []models.Leg {
	out := make([]models.Leg, len(legs))
	for i, leg := range legs {
		out[i] = *leg
	}
	return out
}
