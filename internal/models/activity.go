package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActivityKind string

const (
	ActivityStart              ActivityKind = "start"
	ActivityPause              ActivityKind = "pause"
	ActivityResume             ActivityKind = "resume"
	ActivitySubmit             ActivityKind = "submit"
	ActivityCategoryCorrection ActivityKind = "category_correction"
)

// ActivityEvent is an append-only audit entry. The core session logic only
// writes these; they are read by auditing and offline analytics, and the
// engine behaves identically when event emission is disabled.
type ActivityEvent struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	SessionID uuid.UUID    `json:"session_id" gorm:"type:uuid;not null;index"`
	Kind      ActivityKind `json:"kind" gorm:"not null;size:30;index"`
	Timestamp time.Time    `json:"timestamp" gorm:"not null;index"`

	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
}

func (ActivityEvent) TableName() string {
	return "session_activities"
}
