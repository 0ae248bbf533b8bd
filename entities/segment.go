package entities

import (
	"time"

	"github.com/google/uuid"
)

// Segment is a [start,end) sub-interval of an Upload. Segments are immutable
// once created. Confidence is set only on pipeline-suggested segments;
// user-authored ones carry none.
type Segment struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UploadID    uuid.UUID  `json:"upload_id"`
	StartSecond int        `json:"start_second"`
	EndSecond   int        `json:"end_second"`
	Label       *string    `json:"label,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Confidence  *int       `json:"confidence,omitempty"`
	CreatedById *uuid.UUID `json:"created_by_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Segment) TableName() string {
	return "film_segments"
}
