package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/parlayscope/internal/database"
	"github.com/yourusername/parlayscope/internal/models"
)

// PostgresSlipRepository implements SlipRepository for PostgreSQL
type PostgresSlipRepository struct {
	db *database.DB
}

// NewPostgresSlipRepository creates a new slip repository
func NewPostgresSlipRepository(db *database.DB) SlipRepository {
	return &PostgresSlipRepository{db: db}
}

// Create inserts a new slip record
func (r *PostgresSlipRepository) Create(ctx context.Context, slip *models.Slip) error {
	query := `
		INSERT INTO slips (id, source, status, frame_count, stated_odds, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query,
		slip.ID, slip.Source, slip.Status, slip.FrameCount, slip.StatedOdds, slip.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create slip: %w", err)
	}

	return nil
}

// GetByID retrieves a slip by ID
func (r *PostgresSlipRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Slip, error) {
	query := `
		SELECT id, source, status, frame_count, stated_odds, failure_reason, uploaded_at, processed_at
		FROM slips WHERE id = $1
	`

	slip := &models.Slip{}
	err := r.db.Querier(ctx).QueryRow(ctx, query, id).Scan(
		&slip.ID, &slip.Source, &slip.Status, &slip.FrameCount,
		&slip.StatedOdds, &slip.FailureReason, &slip.UploadedAt, &slip.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slip: %w", err)
	}

	return slip, nil
}

// UpdateStatus transitions a slip's processing state
func (r *PostgresSlipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SlipStatus, frameCount int, statedOdds *int, failureReason *string) error {
	query := `
		UPDATE slips
		SET status = $2, frame_count = $3, stated_odds = $4, failure_reason = $5, processed_at = $6
		WHERE id = $1
	`

	tag, err := r.db.Querier(ctx).Exec(ctx, query, id, status, frameCount, statedOdds, failureReason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update slip status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ListRecent retrieves the most recently uploaded slips
func (r *PostgresSlipRepository) ListRecent(ctx context.Context, limit int) ([]*models.Slip, error) {
	query := `
		SELECT id, source, status, frame_count, stated_odds, failure_reason, uploaded_at, processed_at
		FROM slips
		ORDER BY uploaded_at DESC
		LIMIT $1
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query slips: %w", err)
	}
	defer rows.Close()

	var slips []*models.Slip
	for rows.Next() {
		slip := &models.Slip{}
		err := rows.Scan(
			&slip.ID, &slip.Source, &slip.Status, &slip.FrameCount,
			&slip.StatedOdds, &slip.FailureReason, &slip.UploadedAt, &slip.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slip: %w", err)
		}
		slips = append(slips, slip)
	}

	return slips, rows.Err()
}
