package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/parlayscope/internal/config"
	"github.com/yourusername/parlayscope/internal/models"
)

func newTestSimulationService(repo *fakeSimulationRepo) *SimulationService {
	cfg := &config.SimulatorConfig{MinLegs: 2, MaxLegs: 12, MaxStake: 10000}
	return NewSimulationService(repo, cfg, testAudit(), testLogger())
}

func TestSimulationServiceRun(t *testing.T) {
	repo := &fakeSimulationRepo{}
	svc := newTestSimulationService(repo)

	sim, rejected, err := svc.Run(context.Background(), SimulationRequest{
		Descriptions: []string{"Chiefs ML", "Over 47.5"},
		AmericanOdds: []int{150, -110},
		Stake:        decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	require.Empty(t, rejected)

	assert.Equal(t, models.ProbabilityBasisLegs, sim.ProbabilityBasis)
	assert.Len(t, repo.created, 1)
}

func TestSimulationServiceRunWithOverride(t *testing.T) {
	override := 450
	svc := newTestSimulationService(&fakeSimulationRepo{})

	sim, _, err := svc.Run(context.Background(), SimulationRequest{
		Descriptions:      []string{"Chiefs ML", "Over 47.5"},
		AmericanOdds:      []int{150, -110},
		Stake:             decimal.NewFromInt(10),
		TotalOddsOverride: &override,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ProbabilityBasisOverride, sim.ProbabilityBasis)
	assert.Equal(t, 450, sim.TotalOdds)
}

func TestSimulationServiceLegLimits(t *testing.T) {
	svc := newTestSimulationService(&fakeSimulationRepo{})

	_, _, err := svc.Run(context.Background(), SimulationRequest{
		Descriptions: []string{"lonely leg"},
		AmericanOdds: []int{150},
		Stake:        decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, ErrTooFewLegs)

	descs := make([]string, 13)
	oddsIn := make([]int, 13)
	for i := range descs {
		descs[i] = "leg"
		oddsIn[i] = 110
	}
	_, _, err = svc.Run(context.Background(), SimulationRequest{
		Descriptions: descs,
		AmericanOdds: oddsIn,
		Stake:        decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, ErrTooManyLegs)
}

func TestSimulationServiceStakeCeiling(t *testing.T) {
	svc := newTestSimulationService(&fakeSimulationRepo{})

	_, _, err := svc.Run(context.Background(), SimulationRequest{
		Descriptions: []string{"Chiefs ML", "Over 47.5"},
		AmericanOdds: []int{150, -110},
		Stake:        decimal.NewFromInt(50000),
	})
	assert.ErrorIs(t, err, ErrStakeTooLarge)
}

func TestSimulationServiceReportsRejectedLegs(t *testing.T) {
	repo := &fakeSimulationRepo{}
	svc := newTestSimulationService(repo)

	_, rejected, err := svc.Run(context.Background(), SimulationRequest{
		Descriptions: []string{"Chiefs ML", "", "Over 47.5"},
		AmericanOdds: []int{150, -110, 50},
		Stake:        decimal.NewFromInt(10),
	})
	require.Error(t, err)
	require.Len(t, rejected, 2)

	assert.Equal(t, 1, rejected[0].Index)
	assert.ErrorIs(t, rejected[0], models.ErrEmptyDescription)
	assert.Equal(t, 2, rejected[1].Index)
	assert.ErrorIs(t, rejected[1], models.ErrInvalidOdds)
	assert.Empty(t, repo.created, "nothing persists when any leg is rejected")
}

func TestSimulationServiceGetRecentClampsLimit(t *testing.T) {
	repo := &fakeSimulationRepo{}
	svc := newTestSimulationService(repo)

	_, err := svc.Get(context.Background(), "garbage")
	assert.ErrorIs(t, err, models.ErrInvalidID)

	sims, err := svc.GetRecent(context.Background(), -5)
	require.NoError(t, err)
	assert.Empty(t, sims)
}
