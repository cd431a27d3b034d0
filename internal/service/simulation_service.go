// Package service orchestrates simulation and slip processing workflows.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/parlayscope/internal/config"
	"github.com/yourusername/parlayscope/internal/logger"
	"github.com/yourusername/parlayscope/internal/metrics"
	"github.com/yourusername/parlayscope/internal/models"
	"github.com/yourusername/parlayscope/internal/parlay"
	"github.com/yourusername/parlayscope/internal/repository"
)

var (
	// ErrTooFewLegs indicates the request carries fewer legs than the configured minimum
	ErrTooFewLegs = errors.New("not enough legs for a parlay")
	// ErrTooManyLegs indicates the request exceeds the configured leg cap
	ErrTooManyLegs = errors.New("too many legs for a parlay")
	// ErrStakeTooLarge indicates the stake exceeds the configured ceiling
	ErrStakeTooLarge = errors.New("stake exceeds the configured maximum")
)

// SimulationRequest is a manual simulation submission
type SimulationRequest struct {
	Descriptions      []string
	AmericanOdds      []int
	Stake             decimal.Decimal
	TotalOddsOverride *int
}

// SimulationService runs and records parlay simulations
type SimulationService struct {
	simulationRepo repository.SimulationRepository
	cfg            *config.SimulatorConfig
	audit          *logger.AuditLogger
	logger         *logrus.Logger
}

// NewSimulationService creates a simulation service
func NewSimulationService(simulationRepo repository.SimulationRepository, cfg *config.SimulatorConfig, audit *logger.AuditLogger, log *logrus.Logger) *SimulationService {
	return &SimulationService{
		simulationRepo: simulationRepo,
		cfg:            cfg,
		audit:          audit,
		logger:         log,
	}
}

// Run validates, simulates and persists a manual parlay submission.
// Leg validation failures are returned alongside the error so the caller can
// report which inputs were rejected.
func (s *SimulationService) Run(ctx context.Context, req SimulationRequest) (*models.Simulation, []parlay.LegError, error) {
	start := time.Now()

	if err := s.checkLimits(len(req.Descriptions), req.Stake); err != nil {
		metrics.RecordSimulationError()
		return nil, nil, err
	}

	legs, failures := parlay.NewLegs(req.Descriptions, req.AmericanOdds)
	if len(failures) > 0 {
		metrics.LegsRejectedTotal.Add(float64(len(failures)))
		metrics.RecordSimulationError()
		return nil, failures, fmt.Errorf("rejected %d of %d legs", len(failures), len(req.Descriptions))
	}

	sim, err := parlay.Simulate(legs, req.Stake, req.TotalOddsOverride)
	if err != nil {
		metrics.RecordSimulationError()
		return nil, nil, err
	}

	if err := s.simulationRepo.Create(ctx, sim); err != nil {
		return nil, nil, fmt.Errorf("failed to persist simulation: %w", err)
	}

	metrics.RecordSimulation(string(sim.ProbabilityBasis), time.Since(start).Seconds())
	s.audit.LogSimulationRun(sim.ID.String(), len(sim.Legs), sim.Stake.String(), sim.Payout.String(), string(sim.ProbabilityBasis), sim.CreatedAt)

	return sim, nil, nil
}

// GetRecent returns the most recent simulations for the dashboard
func (s *SimulationService) GetRecent(ctx context.Context, limit int) ([]*models.Simulation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.simulationRepo.ListRecent(ctx, limit)
}

// Get returns a simulation by ID
func (s *SimulationService) Get(ctx context.Context, id string) (*models.Simulation, error) {
	simID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.simulationRepo.GetByID(ctx, simID)
}

func (s *SimulationService) checkLimits(legCount int, stake decimal.Decimal) error {
	if legCount < s.cfg.MinLegs {
		return fmt.Errorf("%w: got %d, need at least %d", ErrTooFewLegs, legCount, s.cfg.MinLegs)
	}
	if legCount > s.cfg.MaxLegs {
		return fmt.Errorf("%w: got %d, cap is %d", ErrTooManyLegs, legCount, s.cfg.MaxLegs)
	}
	if stake.GreaterThan(decimal.NewFromFloat(s.cfg.MaxStake)) {
		return fmt.Errorf("%w: %s over %v", ErrStakeTooLarge, stake, s.cfg.MaxStake)
	}
	return nil
}
