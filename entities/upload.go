package entities

import (
	"time"

	"github.com/google/uuid"

	"filmroom/constant"
)

// Upload is a raw, full-length game film awaiting or having completed
// out-of-process analysis. Status is mutated only by pipeline reports.
type Upload struct {
	ID              uuid.UUID             `json:"id" gorm:"type:uuid;primaryKey"`
	TeamID          uuid.UUID             `json:"team_id"`
	UploadedById    *uuid.UUID            `json:"uploaded_by_id,omitempty"`
	GameID          *uuid.UUID            `json:"game_id,omitempty"`
	Title           string                `json:"title"`
	Notes           *string               `json:"notes,omitempty"`
	Status          constant.UploadStatus `json:"status"`
	StorageKey      string                `json:"storage_key"`
	ContentType     string                `json:"content_type"`
	DurationSeconds *int                  `json:"duration_seconds,omitempty"`
	UploadedAt      time.Time             `json:"uploaded_at"`
}

func (Upload) TableName() string {
	return "game_uploads"
}
