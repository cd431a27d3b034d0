package models

import (
	"time"

	"github.com/google/uuid"
)

// SlipSource represents how a slip entered the system
type SlipSource string

const (
	SlipSourceManual SlipSource = "manual"
	SlipSourceImage  SlipSource = "image"
	SlipSourceVideo  SlipSource = "video"
)

// SlipStatus represents the processing state of an uploaded slip
type SlipStatus string

const (
	SlipStatusPending    SlipStatus = "pending"
	SlipStatusExtracting SlipStatus = "extracting"
	SlipStatusExtracted  SlipStatus = "extracted"
	SlipStatusFailed     SlipStatus = "failed"
)

// Slip represents an uploaded betting slip and its extraction state
type Slip struct {
	ID             uuid.UUID  `db:"id" json:"id" validate:"required,uuid4"`
	Source         SlipSource `db:"source" json:"source" validate:"required,oneof=manual image video"`
	Status         SlipStatus `db:"status" json:"status" validate:"required"`
	FrameCount     int        `db:"frame_count" json:"frame_count"`
	StatedOdds     *int       `db:"stated_odds" json:"stated_odds,omitempty"` // total odds read off the slip, when legible
	FailureReason  *string    `db:"failure_reason" json:"failure_reason,omitempty"`
	UploadedAt     time.Time  `db:"uploaded_at" json:"uploaded_at"`
	ProcessedAt    *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}
