package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/parlayscope/internal/database"
	"github.com/yourusername/parlayscope/internal/models"
)

// PostgresSimulationRepository implements SimulationRepository for PostgreSQL
type PostgresSimulationRepository struct {
	db *database.DB
}

// NewPostgresSimulationRepository creates a new simulation repository
func NewPostgresSimulationRepository(db *database.DB) SimulationRepository {
	return &PostgresSimulationRepository{db: db}
}

// Create inserts a simulation history row. Legs are stored as JSONB.
func (r *PostgresSimulationRepository) Create(ctx context.Context, sim *models.Simulation) error {
	legs, err := json.Marshal(sim.Legs)
	if err != nil {
		return fmt.Errorf("failed to marshal legs: %w", err)
	}

	query := `
		INSERT INTO simulations (id, slip_id, legs, stake, total_odds, total_decimal_odds,
		                         combined_probability, probability_basis, payout, profit,
		                         expected_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.Querier(ctx).Exec(ctx, query,
		sim.ID, sim.SlipID, legs, sim.Stake, sim.TotalOdds, sim.TotalDecimalOdds,
		sim.CombinedProbability, sim.ProbabilityBasis, sim.Payout, sim.Profit,
		sim.ExpectedValue, sim.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create simulation: %w", err)
	}

	return nil
}

// GetByID retrieves a simulation by ID
func (r *PostgresSimulationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Simulation, error) {
	query := `
		SELECT id, slip_id, legs, stake, total_odds, total_decimal_odds,
		       combined_probability, probability_basis, payout, profit,
		       expected_value, created_at
		FROM simulations WHERE id = $1
	`

	sim, err := scanSimulation(r.db.Querier(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get simulation: %w", err)
	}

	return sim, nil
}

// ListRecent retrieves the most recent simulations for the dashboard
func (r *PostgresSimulationRepository) ListRecent(ctx context.Context, limit int) ([]*models.Simulation, error) {
	query := `
		SELECT id, slip_id, legs, stake, total_odds, total_decimal_odds,
		       combined_probability, probability_basis, payout, profit,
		       expected_value, created_at
		FROM simulations
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulations: %w", err)
	}
	defer rows.Close()

	return collectSimulations(rows)
}

// ListBySlipID retrieves all simulations run against one slip
func (r *PostgresSimulationRepository) ListBySlipID(ctx context.Context, slipID uuid.UUID) ([]*models.Simulation, error) {
	query := `
		SELECT id, slip_id, legs, stake, total_odds, total_decimal_odds,
		       combined_probability, probability_basis, payout, profit,
		       expected_value, created_at
		FROM simulations
		WHERE slip_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, slipID)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulations by slip: %w", err)
	}
	defer rows.Close()

	return collectSimulations(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSimulation(row rowScanner) (*models.Simulation, error) {
	sim := &models.Simulation{}
	var legs []byte

	err := row.Scan(
		&sim.ID, &sim.SlipID, &legs, &sim.Stake, &sim.TotalOdds, &sim.TotalDecimalOdds,
		&sim.CombinedProbability, &sim.ProbabilityBasis, &sim.Payout, &sim.Profit,
		&sim.ExpectedValue, &sim.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(legs, &sim.Legs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal legs: %w", err)
	}

	return sim, nil
}

func collectSimulations(rows pgx.Rows) ([]*models.Simulation, error) {
	var sims []*models.Simulation
	for rows.Next() {
		sim, err := scanSimulation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan simulation: %w", err)
		}
		sims = append(sims, sim)
	}
	return sims, rows.Err()
}
