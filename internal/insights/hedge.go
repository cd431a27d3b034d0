package insights

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/yourusername/parlayscope/internal/odds"
)

var (
	// ErrHedgeNotProfitable indicates no hedge stake can lock a positive return
	ErrHedgeNotProfitable = errors.New("hedge cannot lock a profit at these odds")
	// ErrInvalidHedgeInput indicates a non-positive stake or payout
	ErrInvalidHedgeInput = errors.New("hedge inputs must be positive")
)

// HedgePlan describes a stake split that locks the same profit whether the
// parlay's final leg wins or loses.
type HedgePlan struct {
	ParlayStake     decimal.Decimal `json:"parlay_stake"`
	PotentialPayout decimal.Decimal `json:"potential_payout"`
	HedgeOdds       int             `json:"hedge_odds"`
	HedgeStake      decimal.Decimal `json:"hedge_stake"`
	LockedProfit    decimal.Decimal `json:"locked_profit"`
}

// BuildHedgePlan computes the stake on the opposite side of a parlay's final
// leg that equalizes profit across both outcomes. With potential payout P and
// hedge decimal odds d, the equalizing stake is P/d: the parlay branch nets
// P - stake - hedge and the hedge branch nets hedge*(d-1) - stake, which
// coincide exactly at that split.
func BuildHedgePlan(parlayStake, potentialPayout decimal.Decimal, hedgeAmericanOdds int) (*HedgePlan, error) {
	if !parlayStake.IsPositive() || !potentialPayout.IsPositive() {
		return nil, ErrInvalidHedgeInput
	}

	hedgeDecimal, err := odds.AmericanToDecimal(hedgeAmericanOdds)
	if err != nil {
		return nil, err
	}

	d := decimal.NewFromFloat(hedgeDecimal)
	hedgeStake := potentialPayout.Div(d).Round(2)
	lockedProfit := potentialPayout.Sub(parlayStake).Sub(hedgeStake).Round(2)

	if !lockedProfit.IsPositive() {
		return nil, ErrHedgeNotProfitable
	}

	return &HedgePlan{
		ParlayStake:     parlayStake,
		PotentialPayout: potentialPayout,
		HedgeOdds:       hedgeAmericanOdds,
		HedgeStake:      hedgeStake,
		LockedProfit:    lockedProfit,
	}, nil
}
