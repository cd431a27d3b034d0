package insights

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHedgePlanLocksEqualProfit(t *testing.T) {
	stake := decimal.NewFromInt(10)
	payout := decimal.NewFromInt(100)

	plan, err := BuildHedgePlan(stake, payout, -120)
	require.NoError(t, err)

	// Both branches should settle to the same profit (within rounding)
	parlayBranch := payout.Sub(stake).Sub(plan.HedgeStake)
	hedgeReturn := plan.HedgeStake.Mul(decimal.NewFromFloat(100.0 / 120.0))
	hedgeBranch := hedgeReturn.Sub(stake)

	diff := parlayBranch.Sub(hedgeBranch).Abs()
	assert.True(t, diff.LessThan(decimal.NewFromFloat(0.02)),
		"branch profits differ by %s", diff)
	assert.True(t, plan.LockedProfit.IsPositive())
}

func TestBuildHedgePlanNotProfitable(t *testing.T) {
	stake := decimal.NewFromInt(10)
	payout := decimal.NewFromInt(20)

	_, err := BuildHedgePlan(stake, payout, -400)
	assert.ErrorIs(t, err, ErrHedgeNotProfitable)
}

func TestBuildHedgePlanInvalidInputs(t *testing.T) {
	_, err := BuildHedgePlan(decimal.Zero, decimal.NewFromInt(100), 150)
	assert.ErrorIs(t, err, ErrInvalidHedgeInput)

	_, err = BuildHedgePlan(decimal.NewFromInt(10), decimal.NewFromInt(-5), 150)
	assert.ErrorIs(t, err, ErrInvalidHedgeInput)
}

func TestBuildHedgePlanRejectsBadOdds(t *testing.T) {
	_, err := BuildHedgePlan(decimal.NewFromInt(10), decimal.NewFromInt(100), 50)
	assert.Error(t, err)
}
