package parlay

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/parlayscope/internal/models"
)

func mustLeg(t *testing.T, description string, americanOdds int) *models.Leg {
	t.Helper()
	leg, err := NewLeg(description, americanOdds)
	require.NoError(t, err)
	return leg
}

func TestSimulateTwoLegParlay(t *testing.T) {
	legs := []*models.Leg{
		mustLeg(t, "Lakers ML", 150),
		mustLeg(t, "Celtics -3.5", -110),
	}
	stake := decimal.NewFromInt(10)

	sim, err := Simulate(legs, stake, nil)
	require.NoError(t, err)

	// 2.5 * 1.909... = 4.7727...
	assert.InDelta(t, 4.7727, sim.TotalDecimalOdds, 0.001)
	assert.Equal(t, "47.73", sim.Payout.StringFixed(2))
	assert.Equal(t, "37.73", sim.Profit.StringFixed(2))
	// 0.4 * 0.5238... = 0.2095...
	assert.InDelta(t, 0.2095, sim.CombinedProbability, 0.001)
	assert.Equal(t, models.ProbabilityBasisLegs, sim.ProbabilityBasis)
	assert.Len(t, sim.Contributions, 2)
}

func TestSimulateOverrideDivergesFromLegProduct(t *testing.T) {
	legs := []*models.Leg{
		mustLeg(t, "Lakers ML", 150),
		mustLeg(t, "Celtics -3.5", -110),
	}
	stake := decimal.NewFromInt(10)

	derived, err := Simulate(legs, stake, nil)
	require.NoError(t, err)

	override := 300
	stated, err := Simulate(legs, stake, &override)
	require.NoError(t, err)

	assert.Equal(t, "40.00", stated.Payout.StringFixed(2))
	assert.Equal(t, 300, stated.TotalOdds)
	assert.InDelta(t, 0.25, stated.CombinedProbability, 1e-9)
	assert.Equal(t, models.ProbabilityBasisOverride, stated.ProbabilityBasis)

	// The override probability comes from the stated total alone, not the
	// per-leg product. The two estimates must actually differ.
	assert.NotEqual(t, derived.CombinedProbability, stated.CombinedProbability)
	assert.Greater(t, math.Abs(derived.CombinedProbability-stated.CombinedProbability), 0.01)
}

func TestSimulateIsDeterministic(t *testing.T) {
	legs := []*models.Leg{
		mustLeg(t, "Over 215.5", -105),
		mustLeg(t, "Jokic 25+ pts", -140),
		mustLeg(t, "Warriors ML", 120),
	}
	stake := decimal.NewFromFloat(25.50)

	first, err := Simulate(legs, stake, nil)
	require.NoError(t, err)
	second, err := Simulate(legs, stake, nil)
	require.NoError(t, err)

	assert.Equal(t, first.TotalOdds, second.TotalOdds)
	assert.Equal(t, first.CombinedProbability, second.CombinedProbability)
	assert.True(t, first.Payout.Equal(second.Payout))
	assert.True(t, first.Profit.Equal(second.Profit))
}

func TestSimulateRejectsBadInput(t *testing.T) {
	leg := mustLeg(t, "Lakers ML", 150)

	_, err := Simulate(nil, decimal.NewFromInt(10), nil)
	assert.ErrorIs(t, err, models.ErrNoLegs)

	_, err = Simulate([]*models.Leg{leg}, decimal.Zero, nil)
	assert.ErrorIs(t, err, models.ErrInvalidStake)

	_, err = Simulate([]*models.Leg{leg}, decimal.NewFromInt(-5), nil)
	assert.ErrorIs(t, err, models.ErrInvalidStake)

	bad := 0
	_, err = Simulate([]*models.Leg{leg}, decimal.NewFromInt(10), &bad)
	assert.ErrorIs(t, err, models.ErrInvalidOdds)
}

func TestSimulateSingleLegMatchesStraightBet(t *testing.T) {
	leg := mustLeg(t, "Lakers ML", 150)
	sim, err := Simulate([]*models.Leg{leg}, decimal.NewFromInt(100), nil)
	require.NoError(t, err)

	assert.Equal(t, 150, sim.TotalOdds)
	assert.Equal(t, "250.00", sim.Payout.StringFixed(2))
	assert.InDelta(t, 0.4, sim.CombinedProbability, 1e-9)
}

func TestSimulateContributionShares(t *testing.T) {
	legs := []*models.Leg{
		mustLeg(t, "A", 150),
		mustLeg(t, "B", -110),
		mustLeg(t, "C", 200),
	}
	sim, err := Simulate(legs, decimal.NewFromInt(10), nil)
	require.NoError(t, err)

	for _, c := range sim.Contributions {
		assert.Greater(t, c.PayoutShare, 0.0)
		assert.Less(t, c.PayoutShare, 1.0)
	}
	// Longer prices account for a larger slice of the net odds.
	assert.Greater(t, sim.Contributions[2].PayoutShare, sim.Contributions[1].PayoutShare)
}
