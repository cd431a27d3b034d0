// Package repository provides data access for slips, simulations and insights.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/parlayscope/internal/models"
)

// SlipRepository defines data access for uploaded slips
type SlipRepository interface {
	Create(ctx context.Context, slip *models.Slip) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Slip, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.SlipStatus, frameCount int, statedOdds *int, failureReason *string) error
	ListRecent(ctx context.Context, limit int) ([]*models.Slip, error)
}

// SimulationRepository defines data access for simulation history
type SimulationRepository interface {
	Create(ctx context.Context, sim *models.Simulation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Simulation, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Simulation, error)
	ListBySlipID(ctx context.Context, slipID uuid.UUID) ([]*models.Simulation, error)
}

// InsightRepository defines data access for cached analytics reports
type InsightRepository interface {
	Upsert(ctx context.Context, insight *models.Insight) error
	GetLatest(ctx context.Context, kind models.InsightKind) (*models.Insight, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
