package repository

import (
	"fmt"

	"github.com/yourusername/parlayscope/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Slip       SlipRepository
	Simulation SimulationRepository
	Insight    InsightRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Slip:       NewPostgresSlipRepository(db),
		Simulation: NewPostgresSimulationRepository(db),
		Insight:    NewPostgresInsightRepository(db),
	}, nil
}
