package entities

import (
	"time"

	"github.com/google/uuid"

	"filmroom/constant"
)

// Clip is a published, independently addressable artifact. When created by
// publishing a segment, the source fields record the window into the parent
// upload and the clip streams the parent's bytes.
type Clip struct {
	ID                uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	TeamID            *uuid.UUID          `json:"team_id,omitempty"`
	GameID            *uuid.UUID          `json:"game_id,omitempty"`
	UploadedById      *uuid.UUID          `json:"uploaded_by_id,omitempty"`
	Title             string              `json:"title"`
	Notes             *string             `json:"notes,omitempty"`
	Status            constant.ClipStatus `json:"status"`
	StorageKey        string              `json:"storage_key"`
	ContentType       string              `json:"content_type"`
	UploadedAt        time.Time           `json:"uploaded_at"`
	SourceUploadID    *uuid.UUID          `json:"source_upload_id,omitempty"`
	SourceStartSecond *int                `json:"source_start_second,omitempty"`
	SourceEndSecond   *int                `json:"source_end_second,omitempty"`
}

func (Clip) TableName() string {
	return "clips"
}
