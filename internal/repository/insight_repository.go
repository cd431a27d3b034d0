package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/parlayscope/internal/database"
	"github.com/yourusername/parlayscope/internal/models"
)

// PostgresInsightRepository implements InsightRepository for PostgreSQL
type PostgresInsightRepository struct {
	db *database.DB
}

// NewPostgresInsightRepository creates a new insight repository
func NewPostgresInsightRepository(db *database.DB) InsightRepository {
	return &PostgresInsightRepository{db: db}
}

// Upsert stores the latest report of a kind, replacing any previous one
func (r *PostgresInsightRepository) Upsert(ctx context.Context, insight *models.Insight) error {
	query := `
		INSERT INTO insights (id, kind, payload, generated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (kind) DO UPDATE
		SET id = EXCLUDED.id,
		    payload = EXCLUDED.payload,
		    generated_at = EXCLUDED.generated_at,
		    expires_at = EXCLUDED.expires_at
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query,
		insight.ID, insight.Kind, insight.Payload, insight.GeneratedAt, insight.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert insight: %w", err)
	}

	return nil
}

// GetLatest retrieves the current report of a kind
func (r *PostgresInsightRepository) GetLatest(ctx context.Context, kind models.InsightKind) (*models.Insight, error) {
	query := `
		SELECT id, kind, payload, generated_at, expires_at
		FROM insights WHERE kind = $1
	`

	insight := &models.Insight{}
	err := r.db.Querier(ctx).QueryRow(ctx, query, kind).Scan(
		&insight.ID, &insight.Kind, &insight.Payload, &insight.GeneratedAt, &insight.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}

	return insight, nil
}

// DeleteExpired removes reports past their freshness window
func (r *PostgresInsightRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM insights WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired insights: %w", err)
	}
	return tag.RowsAffected(), nil
}
