package dto

import "github.com/google/uuid"

// ProcessFilmMessage asks the out-of-process analysis pipeline to pick up a
// freshly stored upload.
type ProcessFilmMessage struct {
	UploadId   uuid.UUID `json:"uploadId"`
	StorageKey string    `json:"storageKey"`
	FileName   string    `json:"fileName"`
}

// FilmStatusMessage is the pipeline's report back: a terminal status plus
// whatever it derived from the file.
type FilmStatusMessage struct {
	UploadId        uuid.UUID          `json:"uploadId"`
	Status          string             `json:"status"`
	DurationSeconds *int               `json:"durationSeconds,omitempty"`
	Segments        []SuggestedSegment `json:"segments,omitempty"`
}

// SuggestedSegment is a pipeline-proposed window into the upload.
type SuggestedSegment struct {
	StartSecond int     `json:"startSecond"`
	EndSecond   int     `json:"endSecond"`
	Label       *string `json:"label,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Confidence  *int    `json:"confidence,omitempty"`
}

// CreateSegmentRequest is the user-authored segment payload. Confidence is
// deliberately absent: only the pipeline attaches scores.
type CreateSegmentRequest struct {
	StartSecond int     `json:"start_second" binding:"min=0"`
	EndSecond   int     `json:"end_second" binding:"required,gtfield=StartSecond"`
	Label       *string `json:"label,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}
