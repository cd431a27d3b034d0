package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// InsightKind identifies the flavor of an analytics report
type InsightKind string

const (
	InsightKindSharpMoney InsightKind = "sharp_money"
	InsightKindHitRate    InsightKind = "hit_rate"
	InsightKindHedge      InsightKind = "hedge"
	InsightKindFatigue    InsightKind = "fatigue"
)

// Insight is a persisted analytics report produced by a scheduled refresh
// or an on-demand request against the analytics backend.
type Insight struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Kind        InsightKind     `db:"kind" json:"kind" validate:"required,oneof=sharp_money hit_rate hedge fatigue"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	GeneratedAt time.Time       `db:"generated_at" json:"generated_at"`
	ExpiresAt   time.Time       `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the insight is past its freshness window
func (i *Insight) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
