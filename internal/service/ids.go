package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/parlayscope/internal/models"
)

// parseID converts a path parameter into a UUID with a typed error
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", models.ErrInvalidID, raw)
	}
	return id, nil
}
